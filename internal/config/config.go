// Package config defines all configuration structures for the PatentGym
// evaluation platform.  No I/O or parsing logic lives here — only plain data
// types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// RedisConfig holds Redis connection parameters for the shared result cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// CacheConfig holds evaluation result cache parameters.  The local tier is
// always an in-process store; the Redis tier is consulted only when
// Redis.Enabled is set on the root config.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// KafkaConfig holds event publishing parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
}

// EmbeddingConfig holds text-embedding provider parameters.
type EmbeddingConfig struct {
	Provider     string        `mapstructure:"provider"` // "ollama" | "openai"
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	Dimension    int           `mapstructure:"dimension"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	RateLimitRPS float64       `mapstructure:"rate_limit_rps"`
}

// LLMConfig holds generation-model parameters for hybrid judgment.
type LLMConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Provider    string        `mapstructure:"provider"` // "ollama" | "openai"
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CorpusConfig holds reference-corpus loading parameters.
type CorpusConfig struct {
	Path    string `mapstructure:"path"`
	Workers int    `mapstructure:"workers"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Namespace            string `mapstructure:"namespace"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Evaluation configuration
// ─────────────────────────────────────────────────────────────────────────────

// NoveltyConfig holds the hybrid novelty evaluator parameters.
type NoveltyConfig struct {
	// MinSimilarityThreshold is the similarity level at or above which a claim
	// is considered anticipated by prior art.  The claim is novel only when
	// the final blended score stays strictly below this threshold.
	MinSimilarityThreshold float64 `mapstructure:"min_similarity_threshold"`

	// MaxRetrievedDocs caps how many prior-art documents the retrieval stage
	// feeds into scoring.
	MaxRetrievedDocs int `mapstructure:"max_retrieved_docs"`

	// VectorSimilarityThreshold is the advisory floor below which a retrieved
	// document is not considered meaningful prior art.  Scoring uses the raw
	// maximum similarity; this value is surfaced for operators and dashboards.
	VectorSimilarityThreshold float64 `mapstructure:"vector_similarity_threshold"`

	// DefaultRuleScore is the similarity assigned by the rule stage when no
	// reference documents are supplied for pairwise comparison.
	DefaultRuleScore float64 `mapstructure:"default_rule_score"`

	// Stage blend weights.  They are renormalized at evaluation time over the
	// stages that actually ran, so disabling the LLM stage does not deflate
	// the final score.
	RuleWeight float64 `mapstructure:"rule_weight"`
	RAGWeight  float64 `mapstructure:"rag_weight"`
	LLMWeight  float64 `mapstructure:"llm_weight"`

	// LLMGateThreshold gates the expensive LLM stage: it runs only when the
	// rule or retrieval stage already sees similarity above this level.
	LLMGateThreshold float64 `mapstructure:"llm_gate_threshold"`
}

// InventiveStepConfig holds the hybrid inventive-step evaluator parameters.
type InventiveStepConfig struct {
	// DecisionThreshold is the score at or above which an inventive step is
	// recognized.
	DecisionThreshold float64 `mapstructure:"decision_threshold"`

	MaxRetrievedDocs int `mapstructure:"max_retrieved_docs"`

	RuleWeight float64 `mapstructure:"rule_weight"`
	RAGWeight  float64 `mapstructure:"rag_weight"`
	LLMWeight  float64 `mapstructure:"llm_weight"`

	// TechnicalComplexity maps a technology field name to its baseline
	// complexity in [0,1].  Unknown fields fall back to DefaultComplexity.
	TechnicalComplexity map[string]float64 `mapstructure:"technical_complexity"`
	DefaultComplexity   float64            `mapstructure:"default_complexity"`

	// MinFeatureCount is the feature count regarded as a significant
	// innovation when examiners review borderline verdicts.
	MinFeatureCount int `mapstructure:"min_feature_count"`
}

// EvaluationConfig groups all evaluator tunables.  The Enable flags toggle
// whole pipeline stages for both evaluators; a disabled stage contributes
// weight zero and the remaining weights are renormalized.
type EvaluationConfig struct {
	EnableRuleBased bool `mapstructure:"enable_rule_based"`
	EnableRAG       bool `mapstructure:"enable_rag"`
	EnableLLM       bool `mapstructure:"enable_llm"`

	Novelty       NoveltyConfig       `mapstructure:"novelty"`
	InventiveStep InventiveStepConfig `mapstructure:"inventive_step"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.
// Every infrastructure component and application service reads its settings
// from the relevant sub-struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Corpus     CorpusConfig     `mapstructure:"corpus"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

func validWeight(w float64) bool { return w >= 0 && w <= 1 }

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka is enabled")
		}
	}

	// Embedding
	switch c.Embedding.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("config: embedding.provider %q is invalid; expected ollama|openai", c.Embedding.Provider)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("config: embedding.model is required")
	}
	if c.Embedding.Dimension < 1 {
		return fmt.Errorf("config: embedding.dimension must be ≥ 1, got %d", c.Embedding.Dimension)
	}
	if c.Embedding.Provider == "openai" && c.Embedding.APIKey == "" {
		return fmt.Errorf("config: embedding.api_key is required for the openai provider")
	}

	// LLM
	if c.LLM.Enabled {
		switch c.LLM.Provider {
		case "ollama", "openai":
		default:
			return fmt.Errorf("config: llm.provider %q is invalid; expected ollama|openai", c.LLM.Provider)
		}
		if c.LLM.Model == "" {
			return fmt.Errorf("config: llm.model is required when llm is enabled")
		}
		if c.LLM.Provider == "openai" && c.LLM.APIKey == "" {
			return fmt.Errorf("config: llm.api_key is required for the openai provider")
		}
	}

	// Corpus
	if c.Corpus.Workers < 1 {
		return fmt.Errorf("config: corpus.workers must be ≥ 1, got %d", c.Corpus.Workers)
	}

	// Evaluation — novelty
	nov := c.Evaluation.Novelty
	if !validWeight(nov.MinSimilarityThreshold) {
		return fmt.Errorf("config: evaluation.novelty.min_similarity_threshold %.3f is out of range [0, 1]", nov.MinSimilarityThreshold)
	}
	if nov.MaxRetrievedDocs < 1 {
		return fmt.Errorf("config: evaluation.novelty.max_retrieved_docs must be ≥ 1, got %d", nov.MaxRetrievedDocs)
	}
	if !validWeight(nov.RuleWeight) || !validWeight(nov.RAGWeight) || !validWeight(nov.LLMWeight) {
		return fmt.Errorf("config: evaluation.novelty stage weights must each lie in [0, 1]")
	}
	if nov.RuleWeight+nov.RAGWeight+nov.LLMWeight <= 0 {
		return fmt.Errorf("config: evaluation.novelty stage weights must not all be zero")
	}
	if !validWeight(nov.VectorSimilarityThreshold) {
		return fmt.Errorf("config: evaluation.novelty.vector_similarity_threshold %.3f is out of range [0, 1]", nov.VectorSimilarityThreshold)
	}

	// Evaluation — inventive step
	inv := c.Evaluation.InventiveStep
	if !validWeight(inv.DecisionThreshold) {
		return fmt.Errorf("config: evaluation.inventive_step.decision_threshold %.3f is out of range [0, 1]", inv.DecisionThreshold)
	}
	if inv.MaxRetrievedDocs < 1 {
		return fmt.Errorf("config: evaluation.inventive_step.max_retrieved_docs must be ≥ 1, got %d", inv.MaxRetrievedDocs)
	}
	if !validWeight(inv.RuleWeight) || !validWeight(inv.RAGWeight) || !validWeight(inv.LLMWeight) {
		return fmt.Errorf("config: evaluation.inventive_step stage weights must each lie in [0, 1]")
	}
	if inv.RuleWeight+inv.RAGWeight+inv.LLMWeight <= 0 {
		return fmt.Errorf("config: evaluation.inventive_step stage weights must not all be zero")
	}
	if inv.MinFeatureCount < 1 {
		return fmt.Errorf("config: evaluation.inventive_step.min_feature_count must be ≥ 1, got %d", inv.MinFeatureCount)
	}
	for field, complexity := range inv.TechnicalComplexity {
		if !validWeight(complexity) {
			return fmt.Errorf("config: evaluation.inventive_step.technical_complexity[%q] = %.3f is out of range [0, 1]", field, complexity)
		}
	}

	return nil
}
