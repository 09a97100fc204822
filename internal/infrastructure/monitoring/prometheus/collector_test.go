package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "patentgym"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestNewMetricsCollectorRequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestRegisterCounter(t *testing.T) {
	c := newTestCollector(t)

	vec := c.RegisterCounter("evaluations_total", "Evaluations performed", "kind", "verdict")
	require.NotNil(t, vec)

	vec.WithLabelValues("novelty", "novel").Inc()
	vec.WithLabelValues("novelty", "novel").Add(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "patentgym_evaluations_total")
	assert.Contains(t, body, `kind="novelty"`)
}

func TestRegisterGauge(t *testing.T) {
	c := newTestCollector(t)

	vec := c.RegisterGauge("index_size", "Index size", "index")
	g := vec.WithLabelValues("prior_art")
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Add(5)
	g.Sub(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "patentgym_index_size")
}

func TestRegisterHistogram(t *testing.T) {
	c := newTestCollector(t)

	vec := c.RegisterHistogram("rag_query_duration_seconds", "RAG duration", nil, "category")
	vec.WithLabelValues("특허법").Observe(0.12)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "patentgym_rag_query_duration_seconds")
}

func TestDuplicateRegistrationReturnsSameMetric(t *testing.T) {
	c := newTestCollector(t)

	first := c.RegisterCounter("dup_total", "dup", "l")
	second := c.RegisterCounter("dup_total", "dup", "l")

	first.WithLabelValues("a").Inc()
	second.WithLabelValues("a").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	// both increments land on the same underlying counter
	assert.Contains(t, rec.Body.String(), `patentgym_dup_total{l="a"} 2`)
}

func TestNewAppMetricsRegistersEverything(t *testing.T) {
	c := newTestCollector(t)

	m := NewAppMetrics(c)
	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.ClaimParseTotal)
	assert.NotNil(t, m.EmbeddingRequestsTotal)
	assert.NotNil(t, m.IndexSearchDuration)
	assert.NotNil(t, m.RAGConfidence)
	assert.NotNil(t, m.LLMParseFailuresTotal)
	assert.NotNil(t, m.EvaluationScore)
	assert.NotNil(t, m.EventsPublishedTotal)
	assert.NotNil(t, m.ErrorsTotal)

	// second call on the same collector must not panic
	assert.NotPanics(t, func() { NewAppMetrics(c) })
}

func TestObserveEvaluation(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.ObserveEvaluation("novelty", "novel", 0.42, 150*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `patentgym_evaluations_total{kind="novelty",verdict="novel"} 1`)
	assert.Contains(t, body, "patentgym_evaluation_score")
}

func TestTimer(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterHistogram("op_duration_seconds", "op duration", nil, "op")

	timer := NewTimer(vec.WithLabelValues("parse"))
	time.Sleep(time.Millisecond)
	timer.ObserveDuration()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `patentgym_op_duration_seconds_count{op="parse"} 1`)
}

func TestNilTimerHistogram(t *testing.T) {
	timer := NewTimer(nil)
	assert.NotPanics(t, timer.ObserveDuration)
}
