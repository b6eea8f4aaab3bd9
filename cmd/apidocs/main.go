// Command apidocs downloads API specifications from Azure API
// Management, renders them to Markdown and publishes searchable
// documents to Azure AI Search.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/apidocs-cli/internal/adapters/driven/apim"
	"github.com/custodia-labs/apidocs-cli/internal/adapters/driven/auth"
	"github.com/custodia-labs/apidocs-cli/internal/adapters/driven/azsearch"
	embeddingopenai "github.com/custodia-labs/apidocs-cli/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/custodia-labs/apidocs-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/apidocs-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/apidocs-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/apidocs-cli/internal/config"
	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/apidocs-cli/internal/core/services"
	"github.com/custodia-labs/apidocs-cli/internal/logger"
	openapirender "github.com/custodia-labs/apidocs-cli/internal/renderers/openapi"
	"github.com/custodia-labs/apidocs-cli/internal/wiki"
)

func main() {
	var manifest *sqlite.Store

	cli.SetBootstrap(func(cfgPath string, verbose, noManifest bool, mode string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		log := logger.Default(verbose)

		needsDownload := mode == "run" || mode == "download"
		needsSearch := mode == "wiki" || mode == "index" ||
			(mode == "run" && (cfg.Processing.ProcessWiki || cfg.Processing.UploadToSearch))
		if needsDownload {
			if err := cfg.ValidateDownload(); err != nil {
				return err
			}
		}
		if needsSearch {
			if err := cfg.ValidateSearch(); err != nil {
				return err
			}
		}

		downloadSvc := services.NewDownloadService(
			apim.New(
				auth.NewProvider(cfg.Azure),
				cfg.Azure.SubscriptionID,
				cfg.Azure.ResourceGroup,
				cfg.Azure.ServiceName,
				log,
			),
			domain.APIFilter{
				IncludeAPIs: cfg.Azure.APIFilter.IncludeAPIs,
				IncludeTags: cfg.Azure.APIFilter.IncludeTags,
			},
			cfg.Output.SwaggerDir,
			log,
		)

		convertSvc := services.NewConvertService(
			openapirender.New(), cfg.Output.SwaggerDir, cfg.Output.MarkdownDir, log)

		var searchOpts []azsearch.Option
		if cfg.OpenAI.Enabled() {
			searchOpts = append(searchOpts, azsearch.WithVectorizer(azsearch.VectorizerConfig{
				Endpoint:       cfg.OpenAI.Endpoint,
				APIKey:         cfg.OpenAI.APIKey,
				DeploymentName: cfg.OpenAI.EmbeddingDeployment,
				ModelName:      cfg.OpenAI.EmbeddingModel,
			}))
		}
		searchEngine := azsearch.New(
			cfg.Azure.Search.Endpoint, cfg.Azure.Search.Key, cfg.Azure.Search.IndexName,
			log, searchOpts...)

		wikiSvc := services.NewWikiService(
			wiki.NewFuser(cfg.Wiki.WikiDir, cfg.Wiki.WikiBaseURL), searchEngine, log)

		var indexOpts []services.IndexOption
		if cfg.OpenAI.Enabled() {
			llmSvc, err := llmopenai.NewLLMService(llmopenai.LLMConfig{
				Endpoint:   cfg.OpenAI.Endpoint,
				APIKey:     cfg.OpenAI.APIKey,
				APIVersion: cfg.OpenAI.APIVersion,
				Model:      cfg.OpenAI.Model,
			})
			if err != nil {
				return err
			}
			indexOpts = append(indexOpts, services.WithLLM(llmSvc))

			embedSvc, err := embeddingopenai.NewEmbeddingService(embeddingopenai.EmbeddingConfig{
				Endpoint:   cfg.OpenAI.Endpoint,
				APIKey:     cfg.OpenAI.APIKey,
				APIVersion: cfg.OpenAI.APIVersion,
				Deployment: cfg.OpenAI.EmbeddingDeployment,
			})
			if err != nil {
				return err
			}
			indexOpts = append(indexOpts, services.WithEmbedder(embedSvc))
		}
		indexSvc := services.NewIndexService(
			searchEngine, cfg.Output.MarkdownDir, cfg.Output.SwaggerDir, cfg.Output.LLMDir,
			log, indexOpts...)

		var runs driven.RunStore
		if mode == "run" && !noManifest && cfg.Output.ManifestPath != "" {
			store, err := sqlite.NewStore(cfg.Output.ManifestPath)
			if err != nil {
				log.Warn("Run manifest disabled: %v", err)
			} else {
				manifest = store
				runs = store
			}
		}

		pipelineSvc := services.NewPipelineService(
			downloadSvc, convertSvc, wikiSvc, indexSvc, runs,
			services.PipelineConfig{
				ConvertToMarkdown: cfg.Processing.ConvertToMarkdown,
				ProcessWiki:       cfg.Processing.ProcessWiki,
				UploadToSearch:    cfg.Processing.UploadToSearch,
				UseLLMExtraction:  cfg.OpenAI.Enabled(),
			},
			log,
		)

		cli.SetServices(downloadSvc, convertSvc, wikiSvc, indexSvc, pipelineSvc)
		return nil
	})

	err := cli.Execute()
	if manifest != nil {
		manifest.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
