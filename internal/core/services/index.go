package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/apidocs-cli/internal/logger"
	"github.com/custodia-labs/apidocs-cli/internal/specjson"
)

var (
	titlePattern     = regexp.MustCompile(`(?m)^# (.+)$`)
	versionPattern   = regexp.MustCompile(`\*\*Version[:\s]*\*\*\s*(.+)`)
	timestampPattern = regexp.MustCompile(`\*Last updated: ([^*]+)\*`)
	isoPattern       = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?`)
	filenameVersion  = regexp.MustCompile(`v\d+(\.\d+)*`)
)

// Token budget for one extraction call, estimated at 4 characters per
// token. Larger inputs are trimmed before prompting.
const maxExtractionTokens = 80000

const extractionPrompt = `Analyze the following OpenAPI definition (which may be truncated) and extract the following information:
1. The API name
2. The purpose and description of the API
3. The business context in which this API is used
4. A list of all operations with their names and descriptions

Format your response as a JSON object with the following structure:
{
    "apiName": "Name of the API",
    "apiPurpose": "Detailed purpose and description of the API",
    "apiDescription": "A brief description of the API",
    "apiContext": "The business context where this API is used",
    "operations": [
        {
            "operationName": "Name of operation 1",
            "operationDescription": "Description of operation 1"
        }
    ]
}

Only return the valid JSON object, nothing else.

Here's the OpenAPI definition (possibly truncated):
%s`

// IndexService publishes documents into the search index, either by
// parsing rendered Markdown or by extracting structured summaries
// from raw specifications with the LLM.
type IndexService struct {
	search      driven.SearchEngine
	llm         driven.LLMService
	embedder    driven.EmbeddingService
	markdownDir string
	swaggerDir  string
	llmDir      string
	log         logger.Logger
	now         func() time.Time
}

var _ driving.Indexer = (*IndexService)(nil)

// IndexOption customises an IndexService.
type IndexOption func(*IndexService)

// WithLLM enables the extraction-based indexing path.
func WithLLM(llm driven.LLMService) IndexOption {
	return func(s *IndexService) { s.llm = llm }
}

// WithEmbedder enables client-side content vectors.
func WithEmbedder(e driven.EmbeddingService) IndexOption {
	return func(s *IndexService) { s.embedder = e }
}

// NewIndexService creates an IndexService.
func NewIndexService(search driven.SearchEngine, markdownDir, swaggerDir, llmDir string, log logger.Logger, opts ...IndexOption) *IndexService {
	s := &IndexService{
		search:      search,
		markdownDir: markdownDir,
		swaggerDir:  swaggerDir,
		llmDir:      llmDir,
		log:         log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexMarkdown parses and indexes rendered Markdown files in batches
// of ten. When files is empty, the markdown directory is scanned.
func (s *IndexService) IndexMarkdown(ctx context.Context, files []string) (domain.BatchResult, error) {
	if err := s.search.EnsureIndex(ctx); err != nil {
		return domain.BatchResult{}, fmt.Errorf("preparing search index: %w", err)
	}

	if len(files) == 0 {
		var err error
		files, err = markdownFiles(s.markdownDir)
		if err != nil {
			return domain.BatchResult{}, err
		}
	}

	var result domain.BatchResult
	var pending []domain.SearchDocument
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		doc, err := s.parseMarkdown(ctx, file)
		if err != nil {
			s.log.Error("Error indexing %s: %v", filepath.Base(file), err)
			result.Fail(file, err)
			continue
		}
		pending = append(pending, doc)
		if len(pending) >= uploadBatchSize {
			s.flush(ctx, pending, &result)
			pending = nil
		}
	}
	if len(pending) > 0 {
		s.flush(ctx, pending, &result)
	}
	s.log.Info("Indexed %d markdown files", result.SucceededCount())
	return result, nil
}

// IndexSpecs extracts a structured summary from each specification
// with the LLM and indexes the summaries. A failed or empty
// extraction aborts that document.
func (s *IndexService) IndexSpecs(ctx context.Context, files []string) (domain.BatchResult, error) {
	if s.llm == nil {
		return domain.BatchResult{}, domain.ErrLLMUnavailable
	}
	if err := s.search.EnsureIndex(ctx); err != nil {
		return domain.BatchResult{}, fmt.Errorf("preparing search index: %w", err)
	}

	if len(files) == 0 {
		var err error
		files, err = walkSpecFiles(s.swaggerDir)
		if err != nil {
			return domain.BatchResult{}, err
		}
	}
	s.log.Info("Found %d spec files to process", len(files))

	var result domain.BatchResult
	var pending []domain.SearchDocument
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		doc, err := s.processSpec(ctx, file)
		if err != nil {
			s.log.Error("Error processing %s: %v", filepath.Base(file), err)
			result.Fail(file, err)
			continue
		}
		pending = append(pending, doc)
		if len(pending) >= uploadBatchSize {
			s.flush(ctx, pending, &result)
			pending = nil
		}
	}
	if len(pending) > 0 {
		s.flush(ctx, pending, &result)
	}
	s.log.Info("Indexed %d spec files", result.SucceededCount())
	return result, nil
}

// flush uploads one batch, recording each member as succeeded or
// failed. A rejected batch does not block later batches.
func (s *IndexService) flush(ctx context.Context, batch []domain.SearchDocument, result *domain.BatchResult) {
	if err := s.search.Upload(ctx, batch); err != nil {
		s.log.Error("Error uploading batch: %v", err)
		for _, doc := range batch {
			result.Fail(doc.FileName, err)
		}
		return
	}
	s.log.Info("Indexed batch of %d documents", len(batch))
	for _, doc := range batch {
		result.Ok(doc.FileName)
	}
}

// parseMarkdown derives a search document from one rendered file.
func (s *IndexService) parseMarkdown(ctx context.Context, file string) (domain.SearchDocument, error) {
	s.log.Info("Parsing markdown file: %s", filepath.Base(file))

	raw, err := os.ReadFile(file)
	if err != nil {
		return domain.SearchDocument{}, fmt.Errorf("reading markdown file: %w", err)
	}
	content := string(raw)

	title := filepath.Base(file)
	if m := titlePattern.FindStringSubmatch(content); m != nil {
		title = strings.TrimRight(m[1], "\r")
	}
	version := ""
	if m := versionPattern.FindStringSubmatch(content); m != nil {
		version = strings.TrimSpace(m[1])
	}

	lastUpdated := s.now().UTC().Format(time.RFC3339)
	if m := timestampPattern.FindStringSubmatch(content); m != nil {
		if iso := isoPattern.FindString(m[1]); iso != "" {
			lastUpdated = iso + "Z"
		}
	}

	doc := domain.SearchDocument{
		ID:           domain.ContentID(raw),
		Title:        title,
		Content:      content,
		APIName:      title,
		APIVersion:   version,
		DocumentType: domain.DocumentTypeAPI,
		LastUpdated:  lastUpdated,
		FileName:     filepath.Base(file),
		DocumentURL:  "/" + filepath.ToSlash(file),
	}
	s.embed(ctx, &doc)
	return doc, nil
}

// processSpec runs LLM extraction over one specification file.
func (s *IndexService) processSpec(ctx context.Context, file string) (domain.SearchDocument, error) {
	s.log.Info("Processing spec file: %s", filepath.Base(file))

	raw, err := os.ReadFile(file)
	if err != nil {
		return domain.SearchDocument{}, fmt.Errorf("reading spec file: %w", err)
	}

	extractJSON, err := s.extract(ctx, raw, filepath.Base(file))
	if err != nil {
		return domain.SearchDocument{}, err
	}
	s.persistExtraction(filepath.Base(file), extractJSON)

	var extract domain.APIExtract
	if err := json.Unmarshal(extractJSON, &extract); err != nil {
		return domain.SearchDocument{}, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if extract.APIName == "" {
		return domain.SearchDocument{}, fmt.Errorf("%w: no apiName for %s", domain.ErrExtractionFailed, filepath.Base(file))
	}

	compact, err := json.Marshal(extract)
	if err != nil {
		return domain.SearchDocument{}, fmt.Errorf("encoding extraction: %w", err)
	}

	doc := domain.SearchDocument{
		ID:           domain.ContentID(raw),
		Title:        extract.APIName,
		Content:      string(compact),
		APIName:      extract.APIName,
		APIVersion:   filenameVersion.FindString(filepath.Base(file)),
		DocumentType: domain.DocumentTypeAPI,
		LastUpdated:  s.now().UTC().Format(time.RFC3339),
		FileName:     filepath.Base(file),
		DocumentURL:  "/" + filepath.ToSlash(file),
	}
	s.embed(ctx, &doc)
	return doc, nil
}

// extract prompts the LLM, trimming oversized inputs first.
func (s *IndexService) extract(ctx context.Context, raw []byte, name string) (json.RawMessage, error) {
	content := raw
	if len(content)/4 > maxExtractionTokens {
		s.log.Warn("Spec file %s is too large (~%d estimated tokens). Truncating content.", name, len(content)/4)
		trimmed, err := specjson.TrimForExtraction(content)
		if err != nil {
			// Not parseable as JSON; keep the head of the file.
			content = content[:maxExtractionTokens*4]
		} else {
			content = trimmed
		}
	}

	response, err := s.llm.Generate(ctx, fmt.Sprintf(extractionPrompt, content), driven.GenerateOptions{
		Temperature: 0.1,
		JSONOutput:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if !json.Valid([]byte(response)) {
		return nil, fmt.Errorf("%w: response is not valid JSON", domain.ErrExtractionFailed)
	}
	s.log.Info("Successfully extracted API information from %s", name)
	return json.RawMessage(response), nil
}

// persistExtraction writes the raw extraction next to the other
// pipeline outputs. Failures here are logged, not fatal.
func (s *IndexService) persistExtraction(name string, extract json.RawMessage) {
	if s.llmDir == "" {
		return
	}
	if err := os.MkdirAll(s.llmDir, 0o755); err != nil {
		s.log.Error("Error creating LLM output directory: %v", err)
		return
	}
	path := filepath.Join(s.llmDir, name)
	var indented []byte
	if pretty, err := json.MarshalIndent(json.RawMessage(extract), "", "  "); err == nil {
		indented = pretty
	} else {
		indented = extract
	}
	if err := os.WriteFile(path, indented, 0o644); err != nil {
		s.log.Error("Error saving API information to %s: %v", path, err)
		return
	}
	s.log.Info("Saved extracted API information to %s", path)
}

// embed attaches a content vector when an embedder is configured.
// Embedding failures downgrade to a warning; the document still
// indexes without a vector.
func (s *IndexService) embed(ctx context.Context, doc *domain.SearchDocument) {
	if s.embedder == nil {
		return
	}
	vector, err := s.embedder.Embed(ctx, doc.Content)
	if err != nil {
		s.log.Warn("Error embedding content for %s: %v", doc.FileName, err)
		return
	}
	doc.ContentVector = vector
}

// markdownFiles lists the .md files directly under dir.
func markdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading markdown directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// walkSpecFiles lists spec files anywhere under dir.
func walkSpecFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(d.Name()) {
		case ".json", ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking swagger directory: %w", err)
	}
	return files, nil
}
