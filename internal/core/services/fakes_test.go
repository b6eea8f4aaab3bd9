package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
)

// fakeAPIM is an in-memory APIManagementClient.
type fakeAPIM struct {
	apis      []domain.APIHandle
	specs     map[string][]byte
	listErr   error
	exportErr map[string]error
}

var _ driven.APIManagementClient = (*fakeAPIM)(nil)

func (f *fakeAPIM) ListAPIs(_ context.Context, filter domain.APIFilter) ([]domain.APIHandle, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.APIHandle
	for _, api := range f.apis {
		if filter.Matches(api) {
			out = append(out, api)
		}
	}
	return out, nil
}

func (f *fakeAPIM) ExportAPI(_ context.Context, api domain.APIHandle) ([]byte, error) {
	if err := f.exportErr[api.ID]; err != nil {
		return nil, err
	}
	spec, ok := f.specs[api.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return spec, nil
}

// fakeSearch records uploads and can fail selected calls.
type fakeSearch struct {
	batches      [][]domain.SearchDocument
	ensureCalls  int
	ensureErr    error
	uploadErr    error
	failBatchNum int // 1-based; 0 means never fail
}

var _ driven.SearchEngine = (*fakeSearch)(nil)

func (f *fakeSearch) EnsureIndex(context.Context) error {
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeSearch) Upload(_ context.Context, docs []domain.SearchDocument) error {
	f.batches = append(f.batches, docs)
	if f.uploadErr != nil && (f.failBatchNum == 0 || f.failBatchNum == len(f.batches)) {
		return f.uploadErr
	}
	return nil
}

func (f *fakeSearch) allDocs() []domain.SearchDocument {
	var all []domain.SearchDocument
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all
}

// fakeLLM returns a canned response.
type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

var _ driven.LLMService = (*fakeLLM)(nil)

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) ModelName() string { return "fake-model" }

// fakeEmbedder returns a fixed vector.
type fakeEmbedder struct {
	vector []float32
	err    error
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

// fakeFuser returns canned bundles.
type fakeFuser struct {
	bundles []domain.WikiBundle
	err     error
}

func (f *fakeFuser) Fuse() ([]domain.WikiBundle, error) {
	return f.bundles, f.err
}

// fakeRunStore records manifest calls in memory.
type fakeRunStore struct {
	runs     []domain.Run
	items    []domain.RunItem
	finished map[string]domain.RunSummary
}

var _ driven.RunStore = (*fakeRunStore)(nil)

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{finished: map[string]domain.RunSummary{}}
}

func (f *fakeRunStore) StartRun(_ context.Context, run domain.Run) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRunStore) RecordItem(_ context.Context, runID string, item domain.RunItem) error {
	f.items = append(f.items, item)
	return nil
}

func (f *fakeRunStore) FinishRun(_ context.Context, runID string, summary domain.RunSummary) error {
	if f.finished == nil {
		f.finished = map[string]domain.RunSummary{}
	}
	f.finished[runID] = summary
	return nil
}

func (f *fakeRunStore) Close() error { return nil }

// fakeRenderer renders a marker string.
type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(raw []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("rendered %d bytes", len(raw)), nil
}
