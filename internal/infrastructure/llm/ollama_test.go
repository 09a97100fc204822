package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

func TestNewProviderSelection(t *testing.T) {
	p, err := NewProvider(config.LLMConfig{Provider: "ollama"}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	p, err = NewProvider(config.LLMConfig{Provider: "openai", APIKey: "sk-test"}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = NewProvider(config.LLMConfig{Provider: "bedrock"}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response: `{"is_novel": true, "confidence": 0.8, "reasoning": "ok"}`,
			Done:     true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(config.LLMConfig{BaseURL: srv.URL, Model: "llama3"}, logging.NewNopLogger())

	out, err := p.Generate(context.Background(), "신규성을 판단하시오")
	require.NoError(t, err)
	assert.Contains(t, out, "is_novel")
}

func TestOllamaGenerateEmptyPrompt(t *testing.T) {
	p := NewOllamaProvider(config.LLMConfig{BaseURL: "http://localhost:11434"}, logging.NewNopLogger())
	_, err := p.Generate(context.Background(), "")
	assert.Error(t, err)
}

func TestOllamaGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOllamaProvider(config.LLMConfig{BaseURL: srv.URL, Model: "llama3"}, logging.NewNopLogger())

	_, err := p.Generate(context.Background(), "prompt")
	assert.True(t, errors.IsCode(err, errors.ErrCodeGenerationUnavailable))
}

func TestOllamaGenerateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // immediately closed: connection refused

	p := NewOllamaProvider(config.LLMConfig{BaseURL: srv.URL, Model: "llama3"}, logging.NewNopLogger())

	_, err := p.Generate(context.Background(), "prompt")
	assert.True(t, errors.IsCode(err, errors.ErrCodeGenerationUnavailable))
}
