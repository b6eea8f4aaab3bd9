// Package openai provides an embedding service adapter using the
// Azure OpenAI embeddings API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultAPIVersion = "2024-02-01"
	DefaultDeployment = "text-embedding-ada-002"
	DefaultTimeout    = 60 * time.Second
)

// EmbeddingConfig holds configuration for the embedding service.
type EmbeddingConfig struct {
	// Endpoint is the Azure OpenAI resource endpoint (required).
	Endpoint string

	// APIKey is the Azure OpenAI API key (required).
	APIKey string

	// APIVersion is the service API version (default: 2024-02-01).
	APIVersion string

	// Deployment is the embedding deployment name
	// (default: text-embedding-ada-002).
	Deployment string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// EmbeddingService embeds text using Azure OpenAI.
type EmbeddingService struct {
	client     *http.Client
	endpoint   string
	apiKey     string
	apiVersion string
	deployment string
}

type embeddingRequest struct {
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a new Azure OpenAI embedding service.
func NewEmbeddingService(cfg EmbeddingConfig) (*EmbeddingService, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("openai: endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Deployment == "" {
		cfg.Deployment = DefaultDeployment
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		deployment: cfg.Deployment,
	}, nil
}

// Embed returns the embedding vector for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	jsonBody, err := json.Marshal(embeddingRequest{Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		s.endpoint, url.PathEscape(s.deployment), url.QueryEscape(s.apiVersion))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("openai error: %s", embResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("openai: no embedding returned")
	}
	return embResp.Data[0].Embedding, nil
}
