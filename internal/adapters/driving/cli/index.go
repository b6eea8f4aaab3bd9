package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
)

var indexUseLLM bool

var indexCmd = &cobra.Command{
	Use:   "index [file...]",
	Short: "Publish documents to the search index",
	Long: `Indexes rendered Markdown files into Azure AI Search. With no
arguments, every file in the markdown output directory is indexed.
With --llm, raw specification files are summarised by the configured
language model and the summaries are indexed instead.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexUseLLM, "llm", false, "index LLM extractions of spec files instead of markdown")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := ensureServices("index"); err != nil {
		return err
	}
	if indexer == nil {
		return errors.New("index service not configured")
	}

	var result domain.BatchResult
	var err error
	if indexUseLLM {
		result, err = indexer.IndexSpecs(cmd.Context(), args)
	} else {
		result, err = indexer.IndexMarkdown(cmd.Context(), args)
	}
	if err != nil {
		return err
	}

	cmd.Printf("Indexed %d files\n", result.SucceededCount())
	if result.FailedCount() > 0 {
		cmd.Printf("%d files failed to index\n", result.FailedCount())
	}
	return nil
}
