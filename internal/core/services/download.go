// Package services implements the pipeline stages behind the driving
// ports. Each service holds its driven-port dependencies and reports
// per-item outcomes through domain.BatchResult.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/apidocs-cli/internal/logger"
	"github.com/custodia-labs/apidocs-cli/internal/specjson"
)

// DownloadService exports API specifications from the management
// service and writes them, provenance-annotated, to the swagger
// directory.
type DownloadService struct {
	apim       driven.APIManagementClient
	filter     domain.APIFilter
	swaggerDir string
	log        logger.Logger
	now        func() time.Time
}

var _ driving.Downloader = (*DownloadService)(nil)

// NewDownloadService creates a DownloadService.
func NewDownloadService(apim driven.APIManagementClient, filter domain.APIFilter, swaggerDir string, log logger.Logger) *DownloadService {
	return &DownloadService{
		apim:       apim,
		filter:     filter,
		swaggerDir: swaggerDir,
		log:        log,
		now:        time.Now,
	}
}

// DownloadAll exports every matching API. One failed export is
// recorded and skipped; the batch continues.
func (s *DownloadService) DownloadAll(ctx context.Context) (domain.BatchResult, error) {
	if err := os.MkdirAll(s.swaggerDir, 0o755); err != nil {
		return domain.BatchResult{}, fmt.Errorf("creating swagger directory: %w", err)
	}

	apis, err := s.apim.ListAPIs(ctx, s.filter)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("listing apis: %w", err)
	}

	var result domain.BatchResult
	for _, api := range apis {
		path, err := s.download(ctx, api)
		if err != nil {
			s.log.Error("Error downloading swagger for API %s: %v", api.Name(), err)
			result.Fail(api.Name(), err)
			continue
		}
		result.Ok(path)
	}
	s.log.Info("Downloaded %d swagger files", result.SucceededCount())
	return result, nil
}

func (s *DownloadService) download(ctx context.Context, api domain.APIHandle) (string, error) {
	raw, err := s.apim.ExportAPI(ctx, api)
	if err != nil {
		return "", err
	}

	annotated, err := specjson.InjectProvenance(raw, domain.Provenance{
		APIID:        api.ID,
		APIName:      api.Name(),
		DownloadedAt: s.now(),
		ServiceURL:   api.ServiceURL,
		Description:  api.Description,
	})
	if err != nil {
		return "", fmt.Errorf("annotating spec for api %s: %w", api.ID, err)
	}

	path := filepath.Join(s.swaggerDir, domain.SpecFileName(api))
	if err := os.WriteFile(path, annotated, 0o644); err != nil {
		return "", fmt.Errorf("writing spec file: %w", err)
	}
	s.log.Info("Saved swagger to %s", path)
	return path, nil
}
