package driven

import (
	"context"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
)

// RunStore records pipeline runs and their per-item outcomes. Optional:
// the pipeline runs without a manifest when no store is configured.
type RunStore interface {
	StartRun(ctx context.Context, run domain.Run) error
	RecordItem(ctx context.Context, runID string, item domain.RunItem) error
	FinishRun(ctx context.Context, runID string, summary domain.RunSummary) error
	Close() error
}
