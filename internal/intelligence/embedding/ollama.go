package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

// OllamaEmbedder produces embeddings through a local Ollama server's
// /api/embed endpoint.
type OllamaEmbedder struct {
	baseURL   string
	model     string
	dimension int
	client    *http.Client
	logger    logging.Logger
}

// NewOllamaEmbedder constructs an embedder against cfg.BaseURL.
func NewOllamaEmbedder(cfg config.EmbeddingConfig, logger logging.Logger) *OllamaEmbedder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &OllamaEmbedder{
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		client:    &http.Client{Timeout: timeout},
		logger:    logger.Named("embedding.ollama"),
	}
}

func (e *OllamaEmbedder) Name() string   { return "ollama" }
func (e *OllamaEmbedder) Dimension() int { return e.dimension }

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if err := validateInputs(texts); err != nil {
		return nil, err
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode embed request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build embed request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingUnavailable, "ollama embed call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeEmbeddingUnavailable, "ollama embed returned non-200 status").
			WithDetail(fmt.Sprintf("status=%d", resp.StatusCode))
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingMalformed, "ollama embed response is not valid JSON")
	}
	if len(out.Embeddings) != len(texts) {
		return nil, errors.New(errors.ErrCodeEmbeddingMalformed, "ollama embed response vector count mismatch").
			WithDetail(fmt.Sprintf("want=%d got=%d", len(texts), len(out.Embeddings)))
	}
	for _, v := range out.Embeddings {
		if len(v) == 0 {
			return nil, errors.New(errors.ErrCodeEmbeddingMalformed, "ollama embed response lacks vector data")
		}
	}

	e.logger.Debug("embedded batch",
		logging.String("model", e.model),
		logging.Int("texts", len(texts)),
		logging.Duration("elapsed", time.Since(start)))
	return out.Embeddings, nil
}
