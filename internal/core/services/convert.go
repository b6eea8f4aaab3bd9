package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/apidocs-cli/internal/logger"
)

// Renderer turns one raw OpenAPI document into Markdown.
type Renderer interface {
	Render(raw []byte) (string, error)
}

// ConvertService renders downloaded specifications to Markdown files.
type ConvertService struct {
	renderer    Renderer
	swaggerDir  string
	markdownDir string
	log         logger.Logger
}

var _ driving.Converter = (*ConvertService)(nil)

// NewConvertService creates a ConvertService.
func NewConvertService(renderer Renderer, swaggerDir, markdownDir string, log logger.Logger) *ConvertService {
	return &ConvertService{
		renderer:    renderer,
		swaggerDir:  swaggerDir,
		markdownDir: markdownDir,
		log:         log,
	}
}

// ConvertAll renders each input file to `<basename>.md` in the
// markdown directory, overwriting silently on name collisions. When
// files is empty, the swagger directory is scanned.
func (s *ConvertService) ConvertAll(ctx context.Context, files []string) (domain.BatchResult, error) {
	if err := os.MkdirAll(s.markdownDir, 0o755); err != nil {
		return domain.BatchResult{}, fmt.Errorf("creating markdown directory: %w", err)
	}

	if len(files) == 0 {
		var err error
		files, err = specFiles(s.swaggerDir)
		if err != nil {
			return domain.BatchResult{}, err
		}
	}

	var result domain.BatchResult
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		path, err := s.convert(file)
		if err != nil {
			s.log.Error("Error converting %s to markdown: %v", filepath.Base(file), err)
			result.Fail(file, err)
			continue
		}
		result.Ok(path)
	}
	s.log.Info("Generated %d markdown files", result.SucceededCount())
	return result, nil
}

func (s *ConvertService) convert(file string) (string, error) {
	s.log.Info("Converting %s to Markdown", filepath.Base(file))

	raw, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading spec file: %w", err)
	}
	markdown, err := s.renderer.Render(raw)
	if err != nil {
		return "", err
	}

	base := filepath.Base(file)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	path := filepath.Join(s.markdownDir, stem+".md")
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("writing markdown file: %w", err)
	}
	s.log.Info("Saved markdown to %s", path)
	return path, nil
}

// specFiles lists the spec files directly under dir.
func specFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading swagger directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
