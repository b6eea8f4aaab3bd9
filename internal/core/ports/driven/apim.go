package driven

import (
	"context"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
)

// APIManagementClient talks to the cloud API management service.
type APIManagementClient interface {
	// ListAPIs returns the APIs matching the filter.
	// An empty filter returns all APIs.
	ListAPIs(ctx context.Context, filter domain.APIFilter) ([]domain.APIHandle, error)

	// ExportAPI exports one API as a raw OpenAPI JSON document.
	ExportAPI(ctx context.Context, api domain.APIHandle) ([]byte, error)
}
