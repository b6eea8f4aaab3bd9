package driven

import (
	"context"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
)

// SearchEngine publishes documents to the full-text/vector search index.
type SearchEngine interface {
	// EnsureIndex creates or updates the index definition.
	// Safe to call repeatedly.
	EnsureIndex(ctx context.Context) error

	// Upload adds or overwrites the given documents in one call.
	// Callers batch; the engine does not split large uploads.
	Upload(ctx context.Context, docs []domain.SearchDocument) error
}
