// Package driving defines the ports through which the CLI drives the
// application core. Each stage of the pipeline is exposed on its own
// interface so commands can run stages in isolation.
package driving

import (
	"context"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
)

// Downloader fetches API specifications and writes them to disk.
type Downloader interface {
	// DownloadAll exports every matching API. The result lists the
	// written file paths; individual failures do not stop the batch.
	DownloadAll(ctx context.Context) (domain.BatchResult, error)
}

// Converter renders downloaded specifications to Markdown.
type Converter interface {
	// ConvertAll renders the given spec files, or every spec in the
	// configured directory when files is empty.
	ConvertAll(ctx context.Context, files []string) (domain.BatchResult, error)
}

// WikiPublisher fuses wiki documentation and pushes it to search.
type WikiPublisher interface {
	Publish(ctx context.Context) (domain.BatchResult, error)
}

// Indexer publishes rendered documents to the search index.
type Indexer interface {
	// IndexMarkdown indexes the given Markdown files, or every file in
	// the configured directory when files is empty.
	IndexMarkdown(ctx context.Context, files []string) (domain.BatchResult, error)

	// IndexSpecs runs LLM extraction over the given spec files, or
	// every spec in the configured directory when files is empty, and
	// indexes the extractions. Requires a configured LLM service.
	IndexSpecs(ctx context.Context, files []string) (domain.BatchResult, error)
}

// Pipeline runs the full download, convert, wiki and index sequence.
type Pipeline interface {
	Run(ctx context.Context) (domain.RunSummary, error)
}
