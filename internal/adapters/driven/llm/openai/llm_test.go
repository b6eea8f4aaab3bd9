package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.Handler) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	svc, err := NewLLMService(LLMConfig{Endpoint: server.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return svc
}

func TestNewLLMServiceValidation(t *testing.T) {
	_, err := NewLLMService(LLMConfig{APIKey: "key"})
	assert.Error(t, err)

	_, err = NewLLMService(LLMConfig{Endpoint: "https://example.net"})
	assert.Error(t, err)

	svc, err := NewLLMService(LLMConfig{Endpoint: "https://example.net", APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestGenerateSendsChatRequest(t *testing.T) {
	var captured map[string]any
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions", r.URL.Path)
		assert.Equal(t, DefaultAPIVersion, r.URL.Query().Get("api-version"))
		assert.Equal(t, "test-key", r.Header.Get("api-key"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"apiName\":\"Orders\"}"}}]}`)
	}))

	out, err := svc.Generate(context.Background(), "describe this API", driven.GenerateOptions{
		Temperature: 0.1,
		JSONOutput:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"apiName":"Orders"}`, out)

	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
	assert.Equal(t, "describe this API", messages[1].(map[string]any)["content"])
	assert.EqualValues(t, 0.1, captured["temperature"])
	assert.Equal(t, "json_object", captured["response_format"].(map[string]any)["type"])
	assert.NotContains(t, captured, "max_tokens")
}

func TestGenerateAPIError(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limit exceeded","type":"rate_limit"}}`)
	}))

	_, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestGenerateEmptyChoices(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))

	_, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response choices")
}

func TestGenerateTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	svc, err := NewLLMService(LLMConfig{Endpoint: server.URL, APIKey: "key"})
	require.NoError(t, err)
	server.Close()

	_, err = svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
