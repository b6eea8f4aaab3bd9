package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file...]",
	Short: "Convert downloaded specifications to Markdown",
	Long: `Renders OpenAPI specification files to Markdown. With no
arguments, every spec file in the swagger output directory is
converted.`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := ensureServices("convert"); err != nil {
		return err
	}
	if converter == nil {
		return errors.New("convert service not configured")
	}

	result, err := converter.ConvertAll(cmd.Context(), args)
	if err != nil {
		return err
	}

	cmd.Printf("Converted %d files to markdown\n", result.SucceededCount())
	if result.FailedCount() > 0 {
		cmd.Printf("%d conversions failed\n", result.FailedCount())
	}
	return nil
}
