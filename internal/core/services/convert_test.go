package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/apidocs-cli/internal/logger"
)

func TestConvertAllRendersExplicitFiles(t *testing.T) {
	swaggerDir := t.TempDir()
	markdownDir := t.TempDir()
	spec := filepath.Join(swaggerDir, "Orders_API_orders-v1.json")
	require.NoError(t, os.WriteFile(spec, []byte(`{"openapi":"3.0.1"}`), 0o644))

	svc := NewConvertService(&fakeRenderer{}, swaggerDir, markdownDir, logger.Nop())
	result, err := svc.ConvertAll(context.Background(), []string{spec})
	require.NoError(t, err)

	require.Equal(t, 1, result.SucceededCount())
	out := filepath.Join(markdownDir, "Orders_API_orders-v1.md")
	assert.Equal(t, out, result.Succeeded[0])

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "rendered 19 bytes", string(content))
}

func TestConvertAllScansSwaggerDirWhenNoFilesGiven(t *testing.T) {
	swaggerDir := t.TempDir()
	markdownDir := t.TempDir()
	for _, name := range []string{"a.json", "b.yaml", "c.yml", "ignore.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(swaggerDir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(swaggerDir, "nested"), 0o755))

	svc := NewConvertService(&fakeRenderer{}, swaggerDir, markdownDir, logger.Nop())
	result, err := svc.ConvertAll(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.SucceededCount())
	assert.Contains(t, result.Succeeded, filepath.Join(markdownDir, "a.md"))
	assert.Contains(t, result.Succeeded, filepath.Join(markdownDir, "b.md"))
	assert.Contains(t, result.Succeeded, filepath.Join(markdownDir, "c.md"))
}

func TestConvertAllContinuesPastRenderFailure(t *testing.T) {
	swaggerDir := t.TempDir()
	markdownDir := t.TempDir()
	good := filepath.Join(swaggerDir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte("{}"), 0o644))
	missing := filepath.Join(swaggerDir, "missing.json")

	svc := NewConvertService(&fakeRenderer{}, swaggerDir, markdownDir, logger.Nop())
	result, err := svc.ConvertAll(context.Background(), []string{missing, good})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SucceededCount())
	require.Len(t, result.Failed, 1)
	assert.Equal(t, missing, result.Failed[0].Name)
}

func TestConvertAllRendererErrorRecordedPerFile(t *testing.T) {
	swaggerDir := t.TempDir()
	spec := filepath.Join(swaggerDir, "bad.json")
	require.NoError(t, os.WriteFile(spec, []byte("{}"), 0o644))

	renderErr := errors.New("unparseable document")
	svc := NewConvertService(&fakeRenderer{err: renderErr}, swaggerDir, t.TempDir(), logger.Nop())
	result, err := svc.ConvertAll(context.Background(), []string{spec})
	require.NoError(t, err)

	assert.Zero(t, result.SucceededCount())
	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0].Err, renderErr)
}

func TestConvertAllStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewConvertService(&fakeRenderer{}, t.TempDir(), t.TempDir(), logger.Nop())
	_, err := svc.ConvertAll(ctx, []string{"anything.json"})
	assert.ErrorIs(t, err, context.Canceled)
}
