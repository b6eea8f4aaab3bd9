// Package azsearch implements the search engine port against the
// Azure AI Search REST API.
package azsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/apidocs-cli/internal/logger"
)

const searchAPIVersion = "2024-07-01"

// VectorizerConfig enables the vector field and the index-side
// Azure OpenAI vectorizer. Zero value disables both.
type VectorizerConfig struct {
	Endpoint       string
	APIKey         string
	DeploymentName string
	ModelName      string
}

func (v VectorizerConfig) enabled() bool {
	return v.Endpoint != "" && v.DeploymentName != ""
}

// SearchEngine manages one Azure AI Search index and uploads
// documents into it.
type SearchEngine struct {
	httpClient *http.Client
	log        logger.Logger
	endpoint   string
	apiKey     string
	indexName  string
	vectorizer VectorizerConfig
}

var _ driven.SearchEngine = (*SearchEngine)(nil)

// Option customises a SearchEngine.
type Option func(*SearchEngine)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *SearchEngine) { s.httpClient = hc }
}

// WithVectorizer enables vector search backed by Azure OpenAI.
func WithVectorizer(v VectorizerConfig) Option {
	return func(s *SearchEngine) { s.vectorizer = v }
}

// New returns a SearchEngine for one index on one search service.
func New(endpoint, apiKey, indexName string, log logger.Logger, opts ...Option) *SearchEngine {
	s := &SearchEngine{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		indexName:  indexName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type indexField struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Key        bool   `json:"key,omitempty"`
	Searchable bool   `json:"searchable"`
	Filterable bool   `json:"filterable"`
	Sortable   bool   `json:"sortable"`
	Facetable  bool   `json:"facetable"`
	Analyzer   string `json:"analyzer,omitempty"`

	Dimensions    int    `json:"dimensions,omitempty"`
	VectorProfile string `json:"vectorSearchProfile,omitempty"`
}

type indexDefinition struct {
	Name         string          `json:"name"`
	Fields       []indexField    `json:"fields"`
	VectorSearch *vectorSearch   `json:"vectorSearch,omitempty"`
	Semantic     *semanticSearch `json:"semantic,omitempty"`
}

type vectorSearch struct {
	Algorithms  []vectorAlgorithm `json:"algorithms"`
	Profiles    []vectorProfile   `json:"profiles"`
	Vectorizers []vectorizer      `json:"vectorizers"`
}

type vectorAlgorithm struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type vectorProfile struct {
	Name       string `json:"name"`
	Algorithm  string `json:"algorithm"`
	Vectorizer string `json:"vectorizer,omitempty"`
}

type vectorizer struct {
	Name       string           `json:"name"`
	Kind       string           `json:"kind"`
	Parameters vectorizerParams `json:"azureOpenAIParameters"`
}

type vectorizerParams struct {
	ResourceURI  string `json:"resourceUri"`
	DeploymentID string `json:"deploymentId"`
	ModelName    string `json:"modelName"`
	APIKey       string `json:"apiKey,omitempty"`
}

type semanticSearch struct {
	Configurations []semanticConfiguration `json:"configurations"`
}

type semanticConfiguration struct {
	Name              string         `json:"name"`
	PrioritizedFields semanticFields `json:"prioritizedFields"`
}

type semanticFields struct {
	TitleField              semanticField   `json:"titleField"`
	PrioritizedContentField []semanticField `json:"prioritizedContentFields"`
}

type semanticField struct {
	FieldName string `json:"fieldName"`
}

// EnsureIndex creates or updates the index definition. The vector
// field, HNSW profile and semantic configuration are present only
// when a vectorizer is configured.
func (s *SearchEngine) EnsureIndex(ctx context.Context) error {
	s.log.Info("Creating/updating search index: %s", s.indexName)

	def := indexDefinition{
		Name: s.indexName,
		Fields: []indexField{
			{Name: "id", Type: "Edm.String", Key: true},
			{Name: "title", Type: "Edm.String", Searchable: true, Analyzer: "en.microsoft"},
			{Name: "content", Type: "Edm.String", Searchable: true, Analyzer: "en.microsoft"},
			{Name: "apiName", Type: "Edm.String", Filterable: true, Facetable: true},
			{Name: "apiVersion", Type: "Edm.String", Filterable: true, Facetable: true},
			{Name: "documentType", Type: "Edm.String", Filterable: true, Facetable: true},
			{Name: "lastUpdated", Type: "Edm.DateTimeOffset", Filterable: true, Sortable: true},
			{Name: "fileName", Type: "Edm.String"},
			{Name: "documentUrl", Type: "Edm.String"},
		},
	}

	if s.vectorizer.enabled() {
		def.Fields = append(def.Fields, indexField{
			Name:          "apiContentVector",
			Type:          "Collection(Edm.Single)",
			Searchable:    true,
			Dimensions:    1536,
			VectorProfile: "apidocs-hnsw-profile",
		})
		def.VectorSearch = &vectorSearch{
			Algorithms: []vectorAlgorithm{{Name: "apidocs-hnsw", Kind: "hnsw"}},
			Profiles: []vectorProfile{{
				Name:       "apidocs-hnsw-profile",
				Algorithm:  "apidocs-hnsw",
				Vectorizer: "apidocs-vectorizer",
			}},
			Vectorizers: []vectorizer{{
				Name: "apidocs-vectorizer",
				Kind: "azureOpenAI",
				Parameters: vectorizerParams{
					ResourceURI:  s.vectorizer.Endpoint,
					DeploymentID: s.vectorizer.DeploymentName,
					ModelName:    s.vectorizer.ModelName,
					APIKey:       s.vectorizer.APIKey,
				},
			}},
		}
		def.Semantic = &semanticSearch{
			Configurations: []semanticConfiguration{{
				Name: "apidocs-semantic",
				PrioritizedFields: semanticFields{
					TitleField:              semanticField{FieldName: "title"},
					PrioritizedContentField: []semanticField{{FieldName: "content"}},
				},
			}},
		}
	}

	url := fmt.Sprintf("%s/indexes/%s?api-version=%s", s.endpoint, s.indexName, searchAPIVersion)
	resp, err := s.do(ctx, http.MethodPut, url, def)
	if err != nil {
		return fmt.Errorf("creating search index: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		s.log.Info("Index %s created or updated", s.indexName)
		return nil
	default:
		return fmt.Errorf("creating search index: %w", s.statusError(resp))
	}
}

type indexAction struct {
	Action string `json:"@search.action"`
	domain.SearchDocument
}

type indexBatch struct {
	Value []indexAction `json:"value"`
}

type indexResult struct {
	Value []struct {
		Key          string `json:"key"`
		Status       bool   `json:"status"`
		ErrorMessage string `json:"errorMessage"`
	} `json:"value"`
}

// Upload merges-or-uploads the documents in a single request.
func (s *SearchEngine) Upload(ctx context.Context, docs []domain.SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}
	batch := indexBatch{Value: make([]indexAction, 0, len(docs))}
	for _, doc := range docs {
		batch.Value = append(batch.Value, indexAction{Action: "mergeOrUpload", SearchDocument: doc})
	}

	url := fmt.Sprintf("%s/indexes/%s/docs/index?api-version=%s", s.endpoint, s.indexName, searchAPIVersion)
	resp, err := s.do(ctx, http.MethodPost, url, batch)
	if err != nil {
		return fmt.Errorf("uploading documents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusMultiStatus {
		return fmt.Errorf("uploading documents: %w", s.statusError(resp))
	}

	var result indexResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding upload result: %w", err)
	}
	for _, item := range result.Value {
		if !item.Status {
			return fmt.Errorf("document %s rejected by index: %s", item.Key, item.ErrorMessage)
		}
	}
	s.log.Info("Uploaded batch of %d documents to search index", len(docs))
	return nil
}

func (s *SearchEngine) do(ctx context.Context, method, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	return resp, nil
}

func (s *SearchEngine) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
}
