package embedding

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

// OpenAIEmbedder produces embeddings through the OpenAI embeddings API, or
// any OpenAI-compatible endpoint when cfg.BaseURL is set.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
	logger    logging.Logger
}

// NewOpenAIEmbedder constructs an embedder from cfg.
func NewOpenAIEmbedder(cfg config.EmbeddingConfig, logger logging.Logger) *OpenAIEmbedder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    logger.Named("embedding.openai"),
	}
}

func (e *OpenAIEmbedder) Name() string   { return "openai" }
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if err := validateInputs(texts); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingUnavailable, "openai embeddings call failed")
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.New(errors.ErrCodeEmbeddingMalformed, "openai embeddings response vector count mismatch")
	}

	vecs := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		if len(d.Embedding) == 0 {
			return nil, errors.New(errors.ErrCodeEmbeddingMalformed, "openai embeddings response lacks vector data")
		}
		vec := make([]float64, len(d.Embedding))
		for j, f := range d.Embedding {
			vec[j] = float64(f)
		}
		vecs[i] = vec
	}

	e.logger.Debug("embedded batch",
		logging.String("model", e.model),
		logging.Int("texts", len(texts)),
		logging.Duration("elapsed", time.Since(start)))
	return vecs, nil
}
