// Package config loads the apidocs configuration file and applies
// environment overrides. All sections are typed; Validate reports the
// first missing required field for the stages that need it.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AuthConfig selects how Azure management tokens are obtained.
type AuthConfig struct {
	// UseDefaultCredential picks the ambient token source (the
	// AZURE_ACCESS_TOKEN environment variable) instead of a client
	// secret flow.
	UseDefaultCredential bool `yaml:"use_default_credential"`
}

// FilterConfig narrows which APIs are exported. Empty lists admit all.
type FilterConfig struct {
	IncludeAPIs []string `yaml:"include_apis"`
	IncludeTags []string `yaml:"include_tags"`
}

// SearchConfig points at the Azure AI Search service.
type SearchConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Key       string `yaml:"key"`
	IndexName string `yaml:"index_name"`
}

// AzureConfig groups the Azure-side settings.
type AzureConfig struct {
	Auth           AuthConfig   `yaml:"auth"`
	TenantID       string       `yaml:"tenant_id"`
	ClientID       string       `yaml:"client_id"`
	ClientSecret   string       `yaml:"client_secret"`
	SubscriptionID string       `yaml:"subscription_id"`
	ResourceGroup  string       `yaml:"resource_group"`
	ServiceName    string       `yaml:"service_name"`
	APIFilter      FilterConfig `yaml:"api_filter"`
	Search         SearchConfig `yaml:"search"`
}

// OpenAIConfig enables LLM metadata extraction and vector embedding.
// The whole section is optional.
type OpenAIConfig struct {
	Endpoint            string `yaml:"endpoint"`
	APIKey              string `yaml:"api_key"`
	APIVersion          string `yaml:"api_version"`
	Model               string `yaml:"model"`
	EmbeddingDeployment string `yaml:"embedding_deployment"`
	EmbeddingModel      string `yaml:"embedding_model"`
}

// Enabled reports whether the section carries enough to call the API.
func (o OpenAIConfig) Enabled() bool {
	return o.Endpoint != "" && o.APIKey != ""
}

// OutputConfig names the working directories for each stage.
type OutputConfig struct {
	SwaggerDir  string `yaml:"swagger_dir"`
	MarkdownDir string `yaml:"markdown_dir"`
	LLMDir      string `yaml:"llm_dir"`
	// ManifestPath is the sqlite run manifest. Empty disables it.
	ManifestPath string `yaml:"manifest_path"`
}

// WikiConfig locates the wiki tree and the public URL it maps to.
type WikiConfig struct {
	WikiDir     string `yaml:"wiki_dir"`
	WikiBaseURL string `yaml:"wiki_base_url"`
}

// ProcessingConfig toggles pipeline stages.
type ProcessingConfig struct {
	ConvertToMarkdown bool `yaml:"convert_to_markdown"`
	ProcessWiki       bool `yaml:"process_wiki"`
	UploadToSearch    bool `yaml:"upload_to_search"`
}

// Config is the full apidocs configuration.
type Config struct {
	Azure      AzureConfig      `yaml:"azure"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Output     OutputConfig     `yaml:"output"`
	Wiki       WikiConfig       `yaml:"wiki"`
	Processing ProcessingConfig `yaml:"processing"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		OpenAI: OpenAIConfig{
			APIVersion:          "2024-02-01",
			Model:               "gpt-4o",
			EmbeddingDeployment: "text-embedding-ada-002",
			EmbeddingModel:      "text-embedding-ada-002",
		},
		Output: OutputConfig{
			SwaggerDir:   "output/swagger",
			MarkdownDir:  "output/markdown",
			LLMDir:       "output/llm",
			ManifestPath: "output/runs.db",
		},
		Wiki: WikiConfig{
			WikiDir: "wiki",
		},
		Processing: ProcessingConfig{
			ConvertToMarkdown: true,
			ProcessWiki:       true,
			UploadToSearch:    true,
		},
	}
}

// Load reads the YAML file at path on top of the defaults and then
// applies environment overrides. A missing file is not an error; the
// defaults plus environment are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to env overrides
	case err != nil:
		return Config{}, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Azure.TenantID, "AZURE_TENANT_ID")
	setString(&c.Azure.ClientID, "AZURE_CLIENT_ID")
	setString(&c.Azure.ClientSecret, "AZURE_CLIENT_SECRET")
	setString(&c.Azure.SubscriptionID, "AZURE_SUBSCRIPTION_ID")
	setString(&c.Azure.ResourceGroup, "AZURE_RESOURCE_GROUP")
	setString(&c.Azure.ServiceName, "AZURE_APIM_SERVICE_NAME")
	setString(&c.Azure.Search.Endpoint, "AZURE_SEARCH_ENDPOINT")
	setString(&c.Azure.Search.Key, "AZURE_SEARCH_KEY")
	setString(&c.Azure.Search.IndexName, "AZURE_SEARCH_INDEX_NAME")
	setString(&c.OpenAI.Endpoint, "AZURE_OPENAI_ENDPOINT")
	setString(&c.OpenAI.APIKey, "AZURE_OPENAI_API_KEY")

	if v, ok := os.LookupEnv("AZURE_USE_DEFAULT_CREDENTIAL"); ok {
		c.Azure.Auth.UseDefaultCredential = isTruthy(v)
	}
	if v, ok := os.LookupEnv("AZURE_APIM_INCLUDE_APIS"); ok {
		c.Azure.APIFilter.IncludeAPIs = splitList(v)
	}
	if v, ok := os.LookupEnv("AZURE_APIM_INCLUDE_TAGS"); ok {
		c.Azure.APIFilter.IncludeTags = splitList(v)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateDownload checks the fields the download stage needs.
func (c Config) ValidateDownload() error {
	switch {
	case c.Azure.SubscriptionID == "":
		return fmt.Errorf("azure.subscription_id is required")
	case c.Azure.ResourceGroup == "":
		return fmt.Errorf("azure.resource_group is required")
	case c.Azure.ServiceName == "":
		return fmt.Errorf("azure.service_name is required")
	}
	if !c.Azure.Auth.UseDefaultCredential {
		if c.Azure.TenantID == "" || c.Azure.ClientID == "" || c.Azure.ClientSecret == "" {
			return fmt.Errorf("azure.tenant_id, azure.client_id and azure.client_secret are required unless use_default_credential is set")
		}
	}
	return nil
}

// ValidateSearch checks the fields the index and wiki stages need.
func (c Config) ValidateSearch() error {
	switch {
	case c.Azure.Search.Endpoint == "":
		return fmt.Errorf("azure.search.endpoint is required")
	case c.Azure.Search.Key == "":
		return fmt.Errorf("azure.search.key is required")
	case c.Azure.Search.IndexName == "":
		return fmt.Errorf("azure.search.index_name is required")
	}
	return nil
}
