package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStoreRequiresPath(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}

func TestNewStoreCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "runs.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, path, store.Path())
}

func TestRunLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := domain.Run{ID: "run-1", Mode: "run", StartedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
	require.NoError(t, store.StartRun(ctx, run))

	require.NoError(t, store.RecordItem(ctx, run.ID, domain.RunItem{
		Stage: domain.StageDownload, Name: "Orders API", OK: true,
	}))
	require.NoError(t, store.RecordItem(ctx, run.ID, domain.RunItem{
		Stage: domain.StageDownload, Name: "Billing API", Error: "export rejected",
	}))

	summary := domain.RunSummary{
		Downloaded: 1,
		Converted:  1,
		WikiDocs:   2,
		Indexed:    1,
		FinishedAt: run.StartedAt.Add(time.Minute),
	}
	require.NoError(t, store.FinishRun(ctx, run.ID, summary))

	var downloaded, wikiDocs int
	row := store.db.QueryRow("SELECT downloaded, wiki_docs FROM runs WHERE id = ?", run.ID)
	require.NoError(t, row.Scan(&downloaded, &wikiDocs))
	assert.Equal(t, 1, downloaded)
	assert.Equal(t, 2, wikiDocs)

	var items int
	row = store.db.QueryRow("SELECT COUNT(*) FROM run_items WHERE run_id = ?", run.ID)
	require.NoError(t, row.Scan(&items))
	assert.Equal(t, 2, items)

	var failures int
	row = store.db.QueryRow("SELECT COUNT(*) FROM run_items WHERE run_id = ? AND ok = 0", run.ID)
	require.NoError(t, row.Scan(&failures))
	assert.Equal(t, 1, failures)
}

func TestFinishRunUnknownID(t *testing.T) {
	store := newTestStore(t)

	err := store.FinishRun(context.Background(), "no-such-run", domain.RunSummary{FinishedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDuplicateRunIDFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := domain.Run{ID: "run-1", Mode: "run", StartedAt: time.Now()}
	require.NoError(t, store.StartRun(ctx, run))
	assert.Error(t, store.StartRun(ctx, run))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.StartRun(context.Background(), domain.Run{ID: "run-1", Mode: "run", StartedAt: time.Now()}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	var count int
	row := reopened.db.QueryRow("SELECT COUNT(*) FROM runs")
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count)
}
