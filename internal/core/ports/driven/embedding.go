package driven

import "context"

// EmbeddingService turns text into a dense vector. Optional: documents
// are indexed without a content vector when no service is configured.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
