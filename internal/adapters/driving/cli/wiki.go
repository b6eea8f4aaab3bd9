package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var wikiCmd = &cobra.Command{
	Use:   "wiki",
	Short: "Fuse wiki documentation and publish it to search",
	Long: `Walks the configured wiki directory, fuses design and build
pages into one document per service and uploads them to the search
index. Unlike a full run, a wiki failure here is fatal.`,
	RunE: runWiki,
}

func init() {
	rootCmd.AddCommand(wikiCmd)
}

func runWiki(cmd *cobra.Command, _ []string) error {
	if err := ensureServices("wiki"); err != nil {
		return err
	}
	if wikiPublisher == nil {
		return errors.New("wiki service not configured")
	}

	result, err := wikiPublisher.Publish(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Processed %d wiki documents\n", result.SucceededCount())
	if result.FailedCount() > 0 {
		cmd.Printf("%d wiki documents failed\n", result.FailedCount())
	}
	return nil
}
