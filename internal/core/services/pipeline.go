package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/apidocs-cli/internal/logger"
)

// PipelineConfig selects which stages a full run executes and which
// indexing path it uses.
type PipelineConfig struct {
	ConvertToMarkdown bool
	ProcessWiki       bool
	UploadToSearch    bool

	// UseLLMExtraction switches the index stage from markdown parsing
	// to LLM extraction over the downloaded specs.
	UseLLMExtraction bool
}

// PipelineService runs the full download, convert, wiki and index
// sequence.
type PipelineService struct {
	downloader driving.Downloader
	converter  driving.Converter
	wiki       driving.WikiPublisher
	indexer    driving.Indexer
	runs       driven.RunStore
	cfg        PipelineConfig
	log        logger.Logger
	now        func() time.Time
}

var _ driving.Pipeline = (*PipelineService)(nil)

// NewPipelineService creates a PipelineService. runs may be nil to
// disable the manifest.
func NewPipelineService(
	downloader driving.Downloader,
	converter driving.Converter,
	wiki driving.WikiPublisher,
	indexer driving.Indexer,
	runs driven.RunStore,
	cfg PipelineConfig,
	log logger.Logger,
) *PipelineService {
	return &PipelineService{
		downloader: downloader,
		converter:  converter,
		wiki:       wiki,
		indexer:    indexer,
		runs:       runs,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// Run executes the pipeline. The wiki stage is the only one whose
// failure does not abort the run; any other stage error is returned
// with the partial summary.
func (p *PipelineService) Run(ctx context.Context) (domain.RunSummary, error) {
	run := domain.Run{ID: uuid.NewString(), Mode: "run", StartedAt: p.now()}
	if p.runs != nil {
		if err := p.runs.StartRun(ctx, run); err != nil {
			p.log.Warn("Could not record run start: %v", err)
		}
	}

	var summary domain.RunSummary

	p.log.Section("STEP 1: Downloading specifications from APIM")
	downloaded, err := p.downloader.DownloadAll(ctx)
	p.recordBatch(ctx, run.ID, domain.StageDownload, downloaded)
	if err != nil {
		return p.finish(ctx, run.ID, summary), fmt.Errorf("downloading specifications: %w", err)
	}
	summary.Downloaded = downloaded.SucceededCount()
	if summary.Downloaded == 0 {
		p.log.Warn("No specification files were downloaded.")
	}

	var converted domain.BatchResult
	if p.cfg.ConvertToMarkdown {
		p.log.Section("STEP 2: Converting specifications to Markdown")
		converted, err = p.converter.ConvertAll(ctx, downloaded.Succeeded)
		p.recordBatch(ctx, run.ID, domain.StageConvert, converted)
		if err != nil {
			return p.finish(ctx, run.ID, summary), fmt.Errorf("converting specifications: %w", err)
		}
		summary.Converted = converted.SucceededCount()
		if summary.Converted == 0 {
			p.log.Warn("No markdown files were generated.")
		}
	}

	if p.cfg.ProcessWiki {
		p.log.Section("STEP 2.5: Processing Wiki Documents")
		wiki, err := p.wiki.Publish(ctx)
		p.recordBatch(ctx, run.ID, domain.StageWiki, wiki)
		if err != nil {
			// Wiki failures never abort a full run.
			p.log.Error("Error processing wiki documents: %v", err)
		}
		summary.WikiDocs = wiki.SucceededCount()
	}

	if p.cfg.UploadToSearch {
		p.log.Section("STEP 3: Indexing documents in Azure AI Search")
		var indexed domain.BatchResult
		if p.cfg.UseLLMExtraction {
			indexed, err = p.indexer.IndexSpecs(ctx, downloaded.Succeeded)
		} else {
			indexed, err = p.indexer.IndexMarkdown(ctx, converted.Succeeded)
		}
		p.recordBatch(ctx, run.ID, domain.StageIndex, indexed)
		if err != nil {
			return p.finish(ctx, run.ID, summary), fmt.Errorf("indexing documents: %w", err)
		}
		summary.Indexed = indexed.SucceededCount()
		if summary.Indexed == 0 {
			p.log.Warn("No files were indexed in Azure AI Search.")
		}
	}

	summary = p.finish(ctx, run.ID, summary)
	p.log.Section("Processing Complete")
	p.log.Info("Downloaded: %d specification files", summary.Downloaded)
	p.log.Info("Converted: %d markdown files", summary.Converted)
	p.log.Info("Wiki: %d documents", summary.WikiDocs)
	p.log.Info("Indexed: %d files in Azure AI Search", summary.Indexed)
	return summary, nil
}

// recordBatch writes a stage's per-item outcomes to the manifest,
// best effort.
func (p *PipelineService) recordBatch(ctx context.Context, runID, stage string, batch domain.BatchResult) {
	if p.runs == nil {
		return
	}
	for _, name := range batch.Succeeded {
		item := domain.RunItem{Stage: stage, Name: name, OK: true}
		if err := p.runs.RecordItem(ctx, runID, item); err != nil {
			p.log.Warn("Could not record run item: %v", err)
			return
		}
	}
	for _, failed := range batch.Failed {
		item := domain.RunItem{Stage: stage, Name: failed.Name, Error: failed.Err.Error()}
		if err := p.runs.RecordItem(ctx, runID, item); err != nil {
			p.log.Warn("Could not record run item: %v", err)
			return
		}
	}
}

func (p *PipelineService) finish(ctx context.Context, runID string, summary domain.RunSummary) domain.RunSummary {
	summary.FinishedAt = p.now()
	if p.runs != nil {
		if err := p.runs.FinishRun(ctx, runID, summary); err != nil {
			p.log.Warn("Could not record run finish: %v", err)
		}
	}
	return summary
}
