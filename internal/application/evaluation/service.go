// Package evaluation orchestrates the examination workflow the interfaces
// layer exposes: claim parsing, hybrid novelty and inventive-step
// evaluation, corpus search, result caching, and event publication.
package evaluation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/cache"
	"github.com/turtacn/PatentGym/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
	"github.com/turtacn/PatentGym/internal/intelligence/claimparse"
	"github.com/turtacn/PatentGym/internal/intelligence/embedding"
	"github.com/turtacn/PatentGym/internal/intelligence/evaluator"
	"github.com/turtacn/PatentGym/pkg/errors"
)

// ============================================================================
// Constants & Collaborator Interfaces
// ============================================================================

const (
	// MaxClaimRunes bounds accepted claim text.
	MaxClaimRunes = 10000

	// MaxSearchTopK caps one search request.
	MaxSearchTopK = 100

	defaultSearchTopK = 5
)

const (
	kindNovelty       = "novelty"
	kindInventiveStep = "inventive_step"
)

// NoveltyEvaluator is the novelty pipeline contract;
// *evaluator.HybridNoveltyEvaluator satisfies it.
type NoveltyEvaluator interface {
	EvaluateNovelty(ctx context.Context, claimText string, parsed *claimparse.ParsedClaim) *evaluator.NoveltyResult
}

// InventiveStepEvaluator is the inventive-step pipeline contract;
// *evaluator.HybridInventiveStepEvaluator satisfies it.
type InventiveStepEvaluator interface {
	EvaluateInventiveStep(ctx context.Context, claimText, technicalField string) *evaluator.InventiveStepResult
}

// EventPublisher emits evaluation lifecycle events; *kafka.Publisher
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.EvaluationEvent) error
}

// ============================================================================
// Result Types
// ============================================================================

// NoveltyEvaluation wraps one novelty evaluation for API consumers.
type NoveltyEvaluation struct {
	EvaluationID string                   `json:"evaluation_id"`
	Result       *evaluator.NoveltyResult `json:"result"`
	Cached       bool                     `json:"cached"`
	EvaluatedAt  time.Time                `json:"evaluated_at"`
}

// InventiveStepEvaluation wraps one inventive-step evaluation.
type InventiveStepEvaluation struct {
	EvaluationID string                         `json:"evaluation_id"`
	Result       *evaluator.InventiveStepResult `json:"result"`
	Cached       bool                           `json:"cached"`
	EvaluatedAt  time.Time                      `json:"evaluated_at"`
}

// ============================================================================
// Service
// ============================================================================

// Deps carries the collaborators the service orchestrates.  Store,
// Publisher, and Metrics are optional; a nil value disables that concern.
type Deps struct {
	Config    *config.Config
	Index     *memory.VectorIndex
	Embedder  embedding.TextEmbedder
	Novelty   NoveltyEvaluator
	Inventive InventiveStepEvaluator
	Store     cache.Store
	Publisher EventPublisher
	Metrics   *prometheus.AppMetrics
	Logger    logging.Logger
}

// Service is the application facade over the evaluation pipeline.
type Service struct {
	cfg       *config.Config
	parser    *claimparse.ClaimComponentParser
	index     *memory.VectorIndex
	embedder  embedding.TextEmbedder
	novelty   NoveltyEvaluator
	inventive InventiveStepEvaluator
	store     cache.Store
	publisher EventPublisher
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
}

// NewService wires the facade.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		cfg:       deps.Config,
		parser:    claimparse.NewClaimComponentParser(),
		index:     deps.Index,
		embedder:  deps.Embedder,
		novelty:   deps.Novelty,
		inventive: deps.Inventive,
		store:     deps.Store,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    logger.Named("application.evaluation"),
	}
}

// ============================================================================
// Operations
// ============================================================================

// ParseClaim validates and parses claim text into its structural components.
func (s *Service) ParseClaim(_ context.Context, claimText string) (*claimparse.ParsedClaim, error) {
	start := time.Now()
	if err := validateClaim(claimText); err != nil {
		s.observeParse("rejected", start)
		return nil, err
	}

	parsed := s.parser.ParseClaim(claimText)
	s.observeParse("ok", start)
	return parsed, nil
}

// EvaluateNovelty runs the hybrid novelty pipeline for claimText, serving
// repeated evaluations of identical text from the cache.
func (s *Service) EvaluateNovelty(ctx context.Context, claimText string) (*NoveltyEvaluation, error) {
	if err := validateClaim(claimText); err != nil {
		return nil, err
	}
	if s.novelty == nil {
		return nil, errors.New(errors.ErrCodeStageDisabled, "novelty evaluation is not configured")
	}

	key := cacheKey(kindNovelty, claimText, "")
	if cached, ok := s.cachedNovelty(ctx, key); ok {
		return cached, nil
	}

	start := time.Now()
	result := s.novelty.EvaluateNovelty(ctx, claimText, nil)
	elapsed := time.Since(start)

	eval := &NoveltyEvaluation{
		EvaluationID: uuid.NewString(),
		Result:       result,
		EvaluatedAt:  time.Now().UTC(),
	}

	s.metrics.ObserveEvaluation(kindNovelty, noveltyVerdict(result.IsNovel), result.ConfidenceScore, elapsed)
	s.cacheResult(ctx, key, result)
	s.publish(ctx, kafka.EvaluationEvent{
		EvaluationID: eval.EvaluationID,
		Kind:         kafka.EventNovelty,
		Decision:     result.IsNovel,
		Score:        result.ConfidenceScore,
		EvaluatedAt:  eval.EvaluatedAt,
	})
	return eval, nil
}

// EvaluateInventiveStep runs the hybrid inventive-step pipeline.
func (s *Service) EvaluateInventiveStep(ctx context.Context, claimText, technicalField string) (*InventiveStepEvaluation, error) {
	if err := validateClaim(claimText); err != nil {
		return nil, err
	}
	if s.inventive == nil {
		return nil, errors.New(errors.ErrCodeStageDisabled, "inventive-step evaluation is not configured")
	}

	key := cacheKey(kindInventiveStep, claimText, technicalField)
	if cached, ok := s.cachedInventiveStep(ctx, key); ok {
		return cached, nil
	}

	start := time.Now()
	result := s.inventive.EvaluateInventiveStep(ctx, claimText, technicalField)
	elapsed := time.Since(start)

	eval := &InventiveStepEvaluation{
		EvaluationID: uuid.NewString(),
		Result:       result,
		EvaluatedAt:  time.Now().UTC(),
	}

	s.metrics.ObserveEvaluation(kindInventiveStep, inventiveVerdict(result.HasInventiveStep), result.ConfidenceScore, elapsed)
	s.cacheResult(ctx, key, result)
	s.publish(ctx, kafka.EvaluationEvent{
		EvaluationID:   eval.EvaluationID,
		Kind:           kafka.EventInventiveStep,
		Decision:       result.HasInventiveStep,
		Score:          result.ConfidenceScore,
		TechnicalField: technicalField,
		EvaluatedAt:    eval.EvaluatedAt,
	})
	return eval, nil
}

// Search embeds the query and runs a similarity search, optionally filtered
// by source type ("특허법", "민법", "판례").
func (s *Service) Search(ctx context.Context, query string, topK int, sourceType string) ([]memory.SearchResult, error) {
	if query == "" {
		return nil, errors.InvalidParam("search query must not be empty")
	}
	if topK < 1 {
		topK = defaultSearchTopK
	}
	if topK > MaxSearchTopK {
		topK = MaxSearchTopK
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSimilaritySearchFailed, "failed to embed search query")
	}

	var filter memory.Filter
	if sourceType != "" {
		filter = memory.Filter{"source_type": sourceType}
	}

	start := time.Now()
	results := s.index.Search(vec, topK, filter)
	if s.metrics != nil {
		s.metrics.IndexSearchDuration.WithLabelValues("corpus").Observe(time.Since(start).Seconds())
	}
	return results, nil
}

// IndexStats reports the vector-index size and dimension.
func (s *Service) IndexStats() memory.Stats {
	return s.index.Stats()
}

// ============================================================================
// Internals
// ============================================================================

func validateClaim(claimText string) error {
	if claimText == "" {
		return errors.New(errors.ErrCodeClaimEmpty, "claim text must not be empty")
	}
	if len([]rune(claimText)) > MaxClaimRunes {
		return errors.New(errors.ErrCodeClaimTooLong, "claim text exceeds the accepted length")
	}
	return nil
}

func cacheKey(kind, claimText, technicalField string) string {
	h := sha256.Sum256([]byte(kind + "\x00" + technicalField + "\x00" + claimText))
	return "eval:" + kind + ":" + hex.EncodeToString(h[:16])
}

func (s *Service) cachedNovelty(ctx context.Context, key string) (*NoveltyEvaluation, bool) {
	if s.store == nil {
		return nil, false
	}
	var result evaluator.NoveltyResult
	if err := s.store.Get(ctx, key, &result); err != nil {
		if !errors.IsCode(err, errors.ErrCodeNotFound) {
			s.logger.Warn("cache lookup failed", logging.Err(err))
		}
		return nil, false
	}
	if s.metrics != nil {
		s.metrics.EvaluationCacheHits.WithLabelValues(kindNovelty, "store").Inc()
	}
	return &NoveltyEvaluation{
		EvaluationID: uuid.NewString(),
		Result:       &result,
		Cached:       true,
		EvaluatedAt:  time.Now().UTC(),
	}, true
}

func (s *Service) cachedInventiveStep(ctx context.Context, key string) (*InventiveStepEvaluation, bool) {
	if s.store == nil {
		return nil, false
	}
	var result evaluator.InventiveStepResult
	if err := s.store.Get(ctx, key, &result); err != nil {
		if !errors.IsCode(err, errors.ErrCodeNotFound) {
			s.logger.Warn("cache lookup failed", logging.Err(err))
		}
		return nil, false
	}
	if s.metrics != nil {
		s.metrics.EvaluationCacheHits.WithLabelValues(kindInventiveStep, "store").Inc()
	}
	return &InventiveStepEvaluation{
		EvaluationID: uuid.NewString(),
		Result:       &result,
		Cached:       true,
		EvaluatedAt:  time.Now().UTC(),
	}, true
}

func (s *Service) cacheResult(ctx context.Context, key string, result interface{}) {
	if s.store == nil {
		return
	}
	ttl := time.Duration(0)
	if s.cfg != nil {
		ttl = s.cfg.Cache.TTL
	}
	if err := s.store.Set(ctx, key, result, ttl); err != nil {
		s.logger.Warn("failed to cache evaluation result", logging.Err(err))
	}
}

func (s *Service) publish(ctx context.Context, event kafka.EvaluationEvent) {
	if s.publisher == nil {
		return
	}
	start := time.Now()
	err := s.publisher.Publish(ctx, event)
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.EventsPublishedTotal.WithLabelValues(string(event.Kind), status).Inc()
		s.metrics.EventPublishDuration.WithLabelValues(string(event.Kind)).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		// event loss must not fail the evaluation itself
		s.logger.Warn("failed to publish evaluation event",
			logging.String("evaluation_id", event.EvaluationID),
			logging.Err(err))
	}
}

func (s *Service) observeParse(status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ClaimParseTotal.WithLabelValues(status).Inc()
	s.metrics.ClaimParseDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

func noveltyVerdict(isNovel bool) string {
	if isNovel {
		return "novel"
	}
	return "not_novel"
}

func inventiveVerdict(hasStep bool) string {
	if hasStep {
		return "inventive"
	}
	return "not_inventive"
}
