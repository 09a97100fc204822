package prometheus

import "time"

// AppMetrics holds every metric the evaluation platform emits.  All fields
// are registered once at startup via NewAppMetrics and injected into the
// components that observe them.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Claim parsing
	ClaimParseTotal    CounterVec
	ClaimParseDuration HistogramVec
	ClaimFeatureCount  HistogramVec

	// Embedding provider
	EmbeddingRequestsTotal CounterVec
	EmbeddingDuration      HistogramVec
	EmbeddingRetriesTotal  CounterVec

	// Vector index
	IndexSize           GaugeVec
	IndexSearchDuration HistogramVec
	IndexSearchResults  HistogramVec
	IndexInsertTotal    CounterVec

	// RAG retrieval
	RAGQueriesTotal  CounterVec
	RAGQueryDuration HistogramVec
	RAGConfidence    HistogramVec

	// LLM judgment
	LLMRequestsTotal      CounterVec
	LLMRequestDuration    HistogramVec
	LLMParseFailuresTotal CounterVec

	// Evaluation pipeline
	EvaluationsTotal    CounterVec
	EvaluationDuration  HistogramVec
	EvaluationScore     HistogramVec
	EvaluationCacheHits CounterVec

	// Messaging
	EventsPublishedTotal CounterVec
	EventPublishDuration HistogramVec

	// System health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Histogram bucket presets.
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultLLMDurationBuckets  = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	DefaultScoreBuckets        = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	DefaultCountBuckets        = []float64{0, 1, 2, 5, 10, 20, 50, 100}
)

// NewAppMetrics registers the full metric set against collector and returns
// the populated struct.  Safe to call more than once against the same
// collector; duplicate registrations resolve to the first metric.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Claim parsing
	m.ClaimParseTotal = collector.RegisterCounter("claim_parse_total", "Claim parse operations", "status")
	m.ClaimParseDuration = collector.RegisterHistogram("claim_parse_duration_seconds", "Claim parse duration", DefaultHTTPDurationBuckets, "status")
	m.ClaimFeatureCount = collector.RegisterHistogram("claim_feature_count", "Technical features extracted per claim", DefaultCountBuckets, "section")

	// Embedding
	m.EmbeddingRequestsTotal = collector.RegisterCounter("embedding_requests_total", "Embedding provider calls", "provider", "status")
	m.EmbeddingDuration = collector.RegisterHistogram("embedding_duration_seconds", "Embedding call duration", DefaultLLMDurationBuckets, "provider")
	m.EmbeddingRetriesTotal = collector.RegisterCounter("embedding_retries_total", "Embedding call retries", "provider")

	// Vector index
	m.IndexSize = collector.RegisterGauge("index_size", "Records held by the in-memory vector index", "index")
	m.IndexSearchDuration = collector.RegisterHistogram("index_search_duration_seconds", "Similarity search duration", DefaultHTTPDurationBuckets, "index")
	m.IndexSearchResults = collector.RegisterHistogram("index_search_results", "Results returned per similarity search", DefaultCountBuckets, "index")
	m.IndexInsertTotal = collector.RegisterCounter("index_insert_total", "Index insert operations", "index", "status")

	// RAG
	m.RAGQueriesTotal = collector.RegisterCounter("rag_queries_total", "RAG retrieval queries", "category", "status")
	m.RAGQueryDuration = collector.RegisterHistogram("rag_query_duration_seconds", "RAG query duration", DefaultLLMDurationBuckets, "category")
	m.RAGConfidence = collector.RegisterHistogram("rag_confidence", "RAG retrieval confidence", DefaultScoreBuckets, "category")

	// LLM
	m.LLMRequestsTotal = collector.RegisterCounter("llm_requests_total", "LLM generation calls", "provider", "status")
	m.LLMRequestDuration = collector.RegisterHistogram("llm_request_duration_seconds", "LLM generation duration", DefaultLLMDurationBuckets, "provider")
	m.LLMParseFailuresTotal = collector.RegisterCounter("llm_parse_failures_total", "LLM judgment responses that failed JSON extraction", "provider")

	// Evaluation
	m.EvaluationsTotal = collector.RegisterCounter("evaluations_total", "Evaluations performed", "kind", "verdict")
	m.EvaluationDuration = collector.RegisterHistogram("evaluation_duration_seconds", "End-to-end evaluation duration", DefaultLLMDurationBuckets, "kind")
	m.EvaluationScore = collector.RegisterHistogram("evaluation_score", "Final evaluation score", DefaultScoreBuckets, "kind")
	m.EvaluationCacheHits = collector.RegisterCounter("evaluation_cache_hits_total", "Evaluation results served from cache", "kind", "tier")

	// Messaging
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Evaluation events published", "kind", "status")
	m.EventPublishDuration = collector.RegisterHistogram("event_publish_duration_seconds", "Event publish duration", DefaultHTTPDurationBuckets, "kind")

	// System health
	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1 healthy, 0 unhealthy)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by code", "code", "component")

	return m
}

// ObserveEvaluation records the standard metric triple for one completed
// evaluation: count by verdict, final score, and wall-clock duration.
func (m *AppMetrics) ObserveEvaluation(kind, verdict string, score float64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(kind, verdict).Inc()
	m.EvaluationScore.WithLabelValues(kind).Observe(score)
	m.EvaluationDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
