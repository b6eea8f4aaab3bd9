package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
)

type stubDownloader struct {
	result domain.BatchResult
	err    error
}

func (s *stubDownloader) DownloadAll(context.Context) (domain.BatchResult, error) {
	return s.result, s.err
}

type stubConverter struct {
	result domain.BatchResult
	files  []string
}

func (s *stubConverter) ConvertAll(_ context.Context, files []string) (domain.BatchResult, error) {
	s.files = files
	return s.result, nil
}

type stubWikiPublisher struct {
	result domain.BatchResult
	err    error
}

func (s *stubWikiPublisher) Publish(context.Context) (domain.BatchResult, error) {
	return s.result, s.err
}

type stubIndexer struct {
	result       domain.BatchResult
	markdownRuns int
	specRuns     int
}

func (s *stubIndexer) IndexMarkdown(context.Context, []string) (domain.BatchResult, error) {
	s.markdownRuns++
	return s.result, nil
}

func (s *stubIndexer) IndexSpecs(context.Context, []string) (domain.BatchResult, error) {
	s.specRuns++
	return s.result, nil
}

type stubPipeline struct {
	summary domain.RunSummary
	err     error
}

func (s *stubPipeline) Run(context.Context) (domain.RunSummary, error) {
	return s.summary, s.err
}

func resultOf(names ...string) domain.BatchResult {
	var b domain.BatchResult
	for _, name := range names {
		b.Ok(name)
	}
	return b
}

// execute runs the root command with args and captures its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetServices(t *testing.T) {
	t.Helper()
	SetServices(nil, nil, nil, nil, nil)
	SetBootstrap(nil)
	indexUseLLM = false
}

func TestDownloadCommand(t *testing.T) {
	resetServices(t)
	SetServices(&stubDownloader{result: resultOf("output/swagger/Orders_API_orders-v1.json")}, nil, nil, nil, nil)

	out, err := execute(t, "download")
	require.NoError(t, err)
	assert.Contains(t, out, "Downloaded 1 specification files")
	assert.Contains(t, out, "Orders_API_orders-v1.json")
}

func TestDownloadCommandReportsFailures(t *testing.T) {
	resetServices(t)
	result := resultOf("a.json")
	result.Fail("Bad API", errors.New("export rejected"))
	SetServices(&stubDownloader{result: result}, nil, nil, nil, nil)

	out, err := execute(t, "download")
	require.NoError(t, err)
	assert.Contains(t, out, "1 downloads failed")
}

func TestDownloadCommandNotConfigured(t *testing.T) {
	resetServices(t)

	_, err := execute(t, "download")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download service not configured")
}

func TestConvertCommandPassesFileArguments(t *testing.T) {
	resetServices(t)
	converter := &stubConverter{result: resultOf("a.md", "b.md")}
	SetServices(nil, converter, nil, nil, nil)

	out, err := execute(t, "convert", "a.json", "b.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Converted 2 files to markdown")
	assert.Equal(t, []string{"a.json", "b.json"}, converter.files)
}

func TestWikiCommandFailureIsFatal(t *testing.T) {
	resetServices(t)
	wikiErr := errors.New("fusing wiki documents: unreadable root")
	SetServices(nil, nil, &stubWikiPublisher{err: wikiErr}, nil, nil)

	_, err := execute(t, "wiki")
	assert.ErrorIs(t, err, wikiErr)
}

func TestWikiCommandReportsCount(t *testing.T) {
	resetServices(t)
	SetServices(nil, nil, &stubWikiPublisher{result: resultOf("orders", "billing")}, nil, nil)

	out, err := execute(t, "wiki")
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 2 wiki documents")
}

func TestIndexCommandDefaultsToMarkdown(t *testing.T) {
	resetServices(t)
	indexer := &stubIndexer{result: resultOf("a.md")}
	SetServices(nil, nil, nil, indexer, nil)

	out, err := execute(t, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 1 files")
	assert.Equal(t, 1, indexer.markdownRuns)
	assert.Zero(t, indexer.specRuns)
}

func TestIndexCommandLLMFlag(t *testing.T) {
	resetServices(t)
	indexer := &stubIndexer{result: resultOf("a.json")}
	SetServices(nil, nil, nil, indexer, nil)

	_, err := execute(t, "index", "--llm")
	require.NoError(t, err)
	assert.Zero(t, indexer.markdownRuns)
	assert.Equal(t, 1, indexer.specRuns)
}

func TestRunCommandPrintsSummary(t *testing.T) {
	resetServices(t)
	SetServices(nil, nil, nil, nil, &stubPipeline{summary: domain.RunSummary{
		Downloaded: 3, Converted: 3, WikiDocs: 2, Indexed: 5,
	}})

	out, err := execute(t, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "Downloaded 3, converted 3, wiki 2, indexed 5")
}

func TestRunCommandPropagatesPipelineError(t *testing.T) {
	resetServices(t)
	pipelineErr := errors.New("downloading specifications: unauthorised")
	SetServices(nil, nil, nil, nil, &stubPipeline{err: pipelineErr})

	_, err := execute(t, "run")
	assert.ErrorIs(t, err, pipelineErr)
}

func TestVersionCommand(t *testing.T) {
	resetServices(t)
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "apidocs version 1.2.3")
}

func TestBootstrapFailureSurfaces(t *testing.T) {
	resetServices(t)
	SetBootstrap(func(cfgPath string, verbose, noManifest bool, mode string) error {
		assert.Equal(t, "download", mode)
		return errors.New("azure.subscription_id is required")
	})

	_, err := execute(t, "download")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")
	assert.Contains(t, err.Error(), "azure.subscription_id is required")
}

func TestRunCommandNoManifestFlag(t *testing.T) {
	resetServices(t)
	var sawNoManifest bool
	SetBootstrap(func(cfgPath string, verbose, noManifest bool, mode string) error {
		sawNoManifest = noManifest
		return nil
	})
	SetServices(nil, nil, nil, nil, &stubPipeline{})

	_, err := execute(t, "run", "--no-manifest")
	require.NoError(t, err)
	assert.True(t, sawNoManifest)
	noManifest = false
}
