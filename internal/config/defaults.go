package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "patentgym:"

	DefaultCacheTTL             = 10 * time.Minute
	DefaultCacheCleanupInterval = 30 * time.Minute

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "patentgym.evaluations"

	DefaultEmbeddingProvider   = "ollama"
	DefaultEmbeddingBaseURL    = "http://localhost:11434"
	DefaultEmbeddingModel      = "nomic-embed-text"
	DefaultEmbeddingDimension  = 768
	DefaultEmbeddingTimeout    = 30 * time.Second
	DefaultEmbeddingMaxRetries = 3
	DefaultEmbeddingBackoff    = time.Second

	DefaultLLMProvider    = "ollama"
	DefaultLLMBaseURL     = "http://localhost:11434"
	DefaultLLMModel       = "llama3"
	DefaultLLMTemperature = 0.2
	DefaultLLMMaxTokens   = 1024
	DefaultLLMTimeout     = 60 * time.Second

	DefaultCorpusWorkers = 4

	DefaultMetricsNamespace = "patentgym"

	// Novelty evaluation
	DefaultNoveltyThreshold       = 0.7
	DefaultNoveltyTopK            = 5
	DefaultNoveltyRuleScore       = 0.3
	DefaultNoveltyRuleWeight      = 0.3
	DefaultNoveltyRAGWeight       = 0.4
	DefaultNoveltyLLMWeight       = 0.3
	DefaultNoveltyLLMGate         = 0.5
	DefaultNoveltySimilarityFloor = 0.6

	// Inventive-step evaluation
	DefaultInventiveThreshold  = 0.6
	DefaultInventiveTopK       = 5
	DefaultInventiveRuleWeight = 0.4
	DefaultInventiveRAGWeight  = 0.3
	DefaultInventiveLLMWeight  = 0.3
	DefaultTechnicalComplexity = 0.5
	DefaultMinFeatureCount     = 10
)

// DefaultComplexityTable returns the baseline per-field technical complexity
// used by the inventive-step rule stage.  Field names are the Korean
// technology categories used across the corpus.
func DefaultComplexityTable() map[string]float64 {
	return map[string]float64{
		"전자":    0.8,
		"기계":    0.7,
		"화학":    0.9,
		"바이오":   0.9,
		"소프트웨어": 0.6,
		"디자인":   0.5,
		"기타":    0.5,
	}
}

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 50
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 100
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.CleanupInterval == 0 {
		cfg.Cache.CleanupInterval = DefaultCacheCleanupInterval
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	// ── Embedding ─────────────────────────────────────────────────────────────
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = DefaultEmbeddingProvider
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = DefaultEmbeddingBaseURL
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = DefaultEmbeddingModel
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = DefaultEmbeddingDimension
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = DefaultEmbeddingTimeout
	}
	if cfg.Embedding.MaxRetries == 0 {
		cfg.Embedding.MaxRetries = DefaultEmbeddingMaxRetries
	}
	if cfg.Embedding.RetryBackoff == 0 {
		cfg.Embedding.RetryBackoff = DefaultEmbeddingBackoff
	}

	// ── LLM ───────────────────────────────────────────────────────────────────
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = DefaultLLMProvider
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultLLMModel
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = DefaultLLMTemperature
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = DefaultLLMMaxTokens
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = DefaultLLMTimeout
	}

	// ── Corpus ────────────────────────────────────────────────────────────────
	if cfg.Corpus.Workers == 0 {
		cfg.Corpus.Workers = DefaultCorpusWorkers
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Evaluation: stage toggles ─────────────────────────────────────────────
	// An all-false group is treated as unset, same as the weight groups below.
	ev := &cfg.Evaluation
	if !ev.EnableRuleBased && !ev.EnableRAG && !ev.EnableLLM {
		ev.EnableRuleBased = true
		ev.EnableRAG = true
		ev.EnableLLM = true
	}

	// ── Evaluation: novelty ───────────────────────────────────────────────────
	nov := &cfg.Evaluation.Novelty
	if nov.MinSimilarityThreshold == 0 {
		nov.MinSimilarityThreshold = DefaultNoveltyThreshold
	}
	if nov.MaxRetrievedDocs == 0 {
		nov.MaxRetrievedDocs = DefaultNoveltyTopK
	}
	if nov.DefaultRuleScore == 0 {
		nov.DefaultRuleScore = DefaultNoveltyRuleScore
	}
	if nov.RuleWeight == 0 && nov.RAGWeight == 0 && nov.LLMWeight == 0 {
		nov.RuleWeight = DefaultNoveltyRuleWeight
		nov.RAGWeight = DefaultNoveltyRAGWeight
		nov.LLMWeight = DefaultNoveltyLLMWeight
	}
	if nov.LLMGateThreshold == 0 {
		nov.LLMGateThreshold = DefaultNoveltyLLMGate
	}
	if nov.VectorSimilarityThreshold == 0 {
		nov.VectorSimilarityThreshold = DefaultNoveltySimilarityFloor
	}

	// ── Evaluation: inventive step ────────────────────────────────────────────
	inv := &cfg.Evaluation.InventiveStep
	if inv.DecisionThreshold == 0 {
		inv.DecisionThreshold = DefaultInventiveThreshold
	}
	if inv.MaxRetrievedDocs == 0 {
		inv.MaxRetrievedDocs = DefaultInventiveTopK
	}
	if inv.RuleWeight == 0 && inv.RAGWeight == 0 && inv.LLMWeight == 0 {
		inv.RuleWeight = DefaultInventiveRuleWeight
		inv.RAGWeight = DefaultInventiveRAGWeight
		inv.LLMWeight = DefaultInventiveLLMWeight
	}
	if inv.TechnicalComplexity == nil {
		inv.TechnicalComplexity = DefaultComplexityTable()
	}
	if inv.DefaultComplexity == 0 {
		inv.DefaultComplexity = DefaultTechnicalComplexity
	}
	if inv.MinFeatureCount == 0 {
		inv.MinFeatureCount = DefaultMinFeatureCount
	}
}
