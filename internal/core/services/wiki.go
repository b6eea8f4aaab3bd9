package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/apidocs-cli/internal/logger"
)

// uploadBatchSize is how many documents go to the search service per
// request.
const uploadBatchSize = 10

// Fuser groups wiki pages into per-service bundles.
type Fuser interface {
	Fuse() ([]domain.WikiBundle, error)
}

// WikiService fuses wiki documentation and publishes the bundles to
// the search index.
type WikiService struct {
	fuser  Fuser
	search driven.SearchEngine
	log    logger.Logger
	now    func() time.Time
}

var _ driving.WikiPublisher = (*WikiService)(nil)

// NewWikiService creates a WikiService.
func NewWikiService(fuser Fuser, search driven.SearchEngine, log logger.Logger) *WikiService {
	return &WikiService{
		fuser:  fuser,
		search: search,
		log:    log,
		now:    time.Now,
	}
}

// Publish fuses the wiki tree and uploads one document per service.
// Fusion and index failures are stage-level errors; a rejected batch
// records its members as failed and continues.
func (s *WikiService) Publish(ctx context.Context) (domain.BatchResult, error) {
	bundles, err := s.fuser.Fuse()
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("fusing wiki documents: %w", err)
	}
	if len(bundles) == 0 {
		s.log.Info("No wiki documents found")
		return domain.BatchResult{}, nil
	}

	if err := s.search.EnsureIndex(ctx); err != nil {
		return domain.BatchResult{}, fmt.Errorf("preparing search index: %w", err)
	}

	now := s.now().UTC().Format(time.RFC3339)
	docs := make([]domain.SearchDocument, 0, len(bundles))
	for _, bundle := range bundles {
		s.log.Info("Processing documents for service: %s", bundle.ServiceName)
		docs = append(docs, domain.SearchDocument{
			ID:           domain.WikiDocumentID(bundle.ServiceName),
			Title:        bundle.ServiceName,
			Content:      bundle.Content,
			APIName:      bundle.ServiceName,
			DocumentType: domain.DocumentTypeWiki,
			LastUpdated:  now,
			DocumentURL:  bundle.DocumentURL,
		})
	}

	var result domain.BatchResult
	for start := 0; start < len(docs); start += uploadBatchSize {
		end := start + uploadBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]
		if err := s.search.Upload(ctx, batch); err != nil {
			s.log.Error("Error uploading documents to search index: %v", err)
			for _, doc := range batch {
				result.Fail(doc.Title, err)
			}
			continue
		}
		for _, doc := range batch {
			result.Ok(doc.Title)
		}
	}
	s.log.Info("Processed %d wiki documents", result.SucceededCount())
	return result, nil
}
