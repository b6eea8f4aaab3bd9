package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download API specifications from APIM",
	Long: `Exports the OpenAPI specification of every API matching the
configured filter and writes them, provenance-annotated, to the
swagger output directory.`,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	if err := ensureServices("download"); err != nil {
		return err
	}
	if downloader == nil {
		return errors.New("download service not configured")
	}

	result, err := downloader.DownloadAll(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Downloaded %d specification files\n", result.SucceededCount())
	for _, path := range result.Succeeded {
		cmd.Printf("  - %s\n", path)
	}
	if result.FailedCount() > 0 {
		cmd.Printf("%d downloads failed\n", result.FailedCount())
	}
	return nil
}
