// Package embedding turns claim and corpus text into fixed-length vectors via
// an external embedding service.  Providers are wrapped with bounded retry,
// exponential backoff, and client-side rate limiting.
package embedding

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

// ============================================================================
// TextEmbedder Interface
// ============================================================================

// TextEmbedder produces embedding vectors for text.  All vectors returned by
// one instance have identical, provider-fixed length.
type TextEmbedder interface {
	// Embed returns the vector for a single text.
	// Fails with EmbeddingInput for empty text and EmbeddingUnavailable when
	// the service stays unreachable after the retry budget.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch returns one vector per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimension is the provider-fixed vector length.
	Dimension() int

	// Name identifies the provider in logs and metrics.
	Name() string
}

// NewEmbedder constructs the provider selected by cfg.Provider, wrapped with
// retry and rate limiting.
func NewEmbedder(cfg config.EmbeddingConfig, logger logging.Logger) (TextEmbedder, error) {
	var raw TextEmbedder
	switch cfg.Provider {
	case "ollama":
		raw = NewOllamaEmbedder(cfg, logger)
	case "openai":
		raw = NewOpenAIEmbedder(cfg, logger)
	default:
		return nil, errors.InvalidParam("unknown embedding provider " + cfg.Provider)
	}
	return WithRetry(raw, cfg, logger), nil
}

// ============================================================================
// Retrying Wrapper
// ============================================================================

// retryingEmbedder retries transient failures with exponential backoff and
// throttles outbound calls with a token-bucket limiter.
type retryingEmbedder struct {
	inner      TextEmbedder
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
	logger     logging.Logger
}

// WithRetry wraps inner with the retry and rate-limit policy from cfg.
// A zero cfg.RateLimitRPS disables throttling.
func WithRetry(inner TextEmbedder, cfg config.EmbeddingConfig, logger logging.Logger) TextEmbedder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), int(cfg.RateLimitRPS)+1)
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	return &retryingEmbedder{
		inner:      inner,
		maxRetries: maxRetries,
		backoff:    backoff,
		limiter:    limiter,
		logger:     logger.Named("embedding.retry"),
	}
}

func (r *retryingEmbedder) Dimension() int { return r.inner.Dimension() }
func (r *retryingEmbedder) Name() string   { return r.inner.Name() }

func (r *retryingEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	var vec []float64
	err := r.do(ctx, func() error {
		var callErr error
		vec, callErr = r.inner.Embed(ctx, text)
		return callErr
	})
	return vec, err
}

func (r *retryingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	var vecs [][]float64
	err := r.do(ctx, func() error {
		var callErr error
		vecs, callErr = r.inner.EmbedBatch(ctx, texts)
		return callErr
	})
	return vecs, err
}

// do runs call up to maxRetries times.  Only EmbeddingUnavailable failures
// are retried; input and response-shape errors surface immediately.
func (r *retryingEmbedder) do(ctx context.Context, call func() error) error {
	var lastErr error
	delay := r.backoff

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return errors.Wrap(err, errors.ErrCodeEmbeddingUnavailable, "rate limiter wait aborted")
			}
		}

		lastErr = call()
		if lastErr == nil {
			return nil
		}
		if !errors.IsCode(lastErr, errors.ErrCodeEmbeddingUnavailable) {
			return lastErr
		}
		if attempt == r.maxRetries {
			break
		}

		r.logger.Warn("embedding call failed, retrying",
			logging.Int("attempt", attempt),
			logging.Duration("backoff", delay),
			logging.Err(lastErr))

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.ErrCodeEmbeddingUnavailable, "embedding retry aborted by context")
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}

// validateInputs rejects empty texts before any network call is made.
func validateInputs(texts []string) error {
	if len(texts) == 0 {
		return errors.New(errors.ErrCodeEmbeddingInput, "batch must not be empty")
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return errors.New(errors.ErrCodeEmbeddingInput, "text must not be empty after trimming").
				WithDetail("index=" + strconv.Itoa(i))
		}
	}
	return nil
}
