package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full documentation pipeline",
	Long: `Downloads every matching API specification, converts them to
Markdown, fuses wiki documentation and publishes the results to the
search index. Stages can be disabled in the processing section of the
config file.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().BoolVar(&noManifest, "no-manifest", false, "do not record this run in the manifest")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	if err := ensureServices("run"); err != nil {
		return err
	}
	if pipeline == nil {
		return errors.New("pipeline service not configured")
	}

	summary, err := pipeline.Run(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Downloaded %d, converted %d, wiki %d, indexed %d\n",
		summary.Downloaded, summary.Converted, summary.WikiDocs, summary.Indexed)
	return nil
}
