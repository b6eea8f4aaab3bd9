package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/logger"
)

func wikiBundles(n int) []domain.WikiBundle {
	bundles := make([]domain.WikiBundle, n)
	for i := range bundles {
		bundles[i] = domain.WikiBundle{
			ServiceName: fmt.Sprintf("service-%02d", i),
			Content:     fmt.Sprintf("# service-%02d\n\ncontent", i),
			DocumentURL: fmt.Sprintf("wiki/service-%02d/design.md", i),
		}
	}
	return bundles
}

func TestPublishUploadsOneDocumentPerService(t *testing.T) {
	search := &fakeSearch{}
	svc := NewWikiService(&fakeFuser{bundles: wikiBundles(2)}, search, logger.Nop())
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

	result, err := svc.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.SucceededCount())
	assert.Equal(t, 1, search.ensureCalls)

	docs := search.allDocs()
	require.Len(t, docs, 2)
	doc := docs[0]
	assert.Equal(t, domain.WikiDocumentID("service-00"), doc.ID)
	assert.Equal(t, "service-00", doc.Title)
	assert.Equal(t, "service-00", doc.APIName)
	assert.Equal(t, domain.DocumentTypeWiki, doc.DocumentType)
	assert.Equal(t, "2026-03-14T09:30:00Z", doc.LastUpdated)
	assert.Equal(t, "wiki/service-00/design.md", doc.DocumentURL)
	assert.Contains(t, doc.Content, "content")
}

func TestPublishBatchesUploads(t *testing.T) {
	search := &fakeSearch{}
	svc := NewWikiService(&fakeFuser{bundles: wikiBundles(12)}, search, logger.Nop())

	result, err := svc.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, result.SucceededCount())

	require.Len(t, search.batches, 2)
	assert.Len(t, search.batches[0], 10)
	assert.Len(t, search.batches[1], 2)
}

func TestPublishNoBundlesIsANoOp(t *testing.T) {
	search := &fakeSearch{}
	svc := NewWikiService(&fakeFuser{}, search, logger.Nop())

	result, err := svc.Publish(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.SucceededCount())
	assert.Zero(t, search.ensureCalls)
}

func TestPublishFusionFailureIsFatal(t *testing.T) {
	fuseErr := errors.New("unreadable wiki root")
	svc := NewWikiService(&fakeFuser{err: fuseErr}, &fakeSearch{}, logger.Nop())

	_, err := svc.Publish(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fuseErr)
}

func TestPublishIndexFailureIsFatal(t *testing.T) {
	ensureErr := errors.New("index rejected")
	search := &fakeSearch{ensureErr: ensureErr}
	svc := NewWikiService(&fakeFuser{bundles: wikiBundles(1)}, search, logger.Nop())

	_, err := svc.Publish(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ensureErr)
	assert.Empty(t, search.batches)
}

func TestPublishRejectedBatchFailsItsMembersOnly(t *testing.T) {
	uploadErr := errors.New("throttled")
	search := &fakeSearch{uploadErr: uploadErr, failBatchNum: 1}
	svc := NewWikiService(&fakeFuser{bundles: wikiBundles(12)}, search, logger.Nop())

	result, err := svc.Publish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.SucceededCount())
	require.Len(t, result.Failed, 10)
	assert.Equal(t, "service-00", result.Failed[0].Name)
	assert.ErrorIs(t, result.Failed[0].Err, uploadErr)
}
