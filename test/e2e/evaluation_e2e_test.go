// Package e2e exercises the full evaluation stack — HTTP API, application
// service, evaluators, RAG, embeddings, and cache — against a fake Ollama
// backend, with no external services required.
package e2e

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/interfaces/cli"
)

const embedDim = 8

// fakeVector derives a deterministic unit vector from text so similarity
// scores are stable across runs.
func fakeVector(text string) []float64 {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float64, embedDim)
	var norm float64
	for i := 0; i < embedDim; i++ {
		v := float64(binary.BigEndian.Uint16(sum[i*2:])) / 65535.0
		vec[i] = v
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// newFakeOllama serves /api/embed and /api/generate the way a local Ollama
// instance would.
func newFakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		embeddings := make([][]float64, len(req.Input))
		for i, text := range req.Input {
			embeddings[i] = fakeVector(text)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"embeddings": embeddings})
	})

	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var verdict string
		if strings.Contains(req.Prompt, "진보성") {
			verdict = `{"has_inventive_step": true, "confidence": 0.8, "reasoning": "통상의 기술자가 용이하게 도출하기 어렵다."}`
		} else {
			verdict = `{"is_novel": true, "confidence": 0.7, "reasoning": "선행기술과 구성이 상이하다."}`
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"response": verdict, "done": true})
	})

	return httptest.NewServer(mux)
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	data := `statutes:
  - number: "제29조"
    title: "특허요건"
    content: "산업상 이용할 수 있는 발명으로서 신규성과 진보성을 갖추어야 특허를 받을 수 있다."
    category: "특허법"
  - number: "제42조"
    title: "특허출원"
    content: "특허출원서에는 발명의 설명과 청구범위를 적은 명세서를 첨부하여야 한다."
    category: "특허법"
precedents:
  - case_number: "2020후1234"
    court: "대법원"
    case_type: "진보성"
    summary: "결합발명의 진보성은 결합의 곤란성과 효과의 현저성을 기준으로 판단한다."
    outcome: "진보성 인정"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func buildStack(t *testing.T) http.Handler {
	t.Helper()
	ollama := newFakeOllama(t)
	t.Cleanup(ollama.Close)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Server.Mode = "test"
	cfg.Metrics.Enabled = false
	cfg.Kafka.Enabled = false
	cfg.Cache.Enabled = true
	cfg.Corpus.Path = writeCorpus(t)

	cfg.Embedding.Provider = "ollama"
	cfg.Embedding.BaseURL = ollama.URL
	cfg.Embedding.Dimension = embedDim
	cfg.Embedding.MaxRetries = 1
	cfg.Embedding.RetryBackoff = time.Millisecond

	cfg.LLM.Enabled = true
	cfg.LLM.Provider = "ollama"
	cfg.LLM.BaseURL = ollama.URL

	app, err := cli.BuildApplication(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(app.Close)

	added, err := app.LoadCorpus(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, added)

	return app.Server.Handler()
}

func request(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthReflectsLoadedCorpus(t *testing.T) {
	handler := buildStack(t)

	rec := request(handler, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health struct {
		Status string `json:"status"`
		Index  struct {
			Records   int `json:"records"`
			Dimension int `json:"dimension"`
		} `json:"index"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3, health.Index.Records)
	assert.Equal(t, embedDim, health.Index.Dimension)
}

func TestClaimParsingOverHTTP(t *testing.T) {
	handler := buildStack(t)

	rec := request(handler, http.MethodPost, "/api/v1/claims/parse",
		`{"claim_text":"디스플레이 장치에 있어서, 영상을 표시하는 표시부를 포함하는 것을 특징으로 하는 디스플레이 장치."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var parsed struct {
		Components []struct {
			ComponentType string `json:"component_type"`
		} `json:"components"`
		Features []string `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	assert.NotEmpty(t, parsed.Components)
	assert.NotEmpty(t, parsed.Features)
}

func TestNoveltyEvaluationEndToEnd(t *testing.T) {
	handler := buildStack(t)
	body := `{"claim_text":"무선 통신 장치에 있어서, 신호를 송수신하는 송수신부를 포함하는 장치."}`

	rec := request(handler, http.MethodPost, "/api/v1/evaluations/novelty", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var eval struct {
		EvaluationID string `json:"evaluation_id"`
		Cached       bool   `json:"cached"`
		Result       struct {
			RuleBasedScore    float64 `json:"rule_based_score"`
			RAGSimilarity     float64 `json:"rag_similarity"`
			ConfidenceScore   float64 `json:"confidence_score"`
			CombinedReasoning string  `json:"combined_reasoning"`
			RAGSources        []struct {
				ID string `json:"id"`
			} `json:"rag_sources"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	assert.NotEmpty(t, eval.EvaluationID)
	assert.False(t, eval.Cached)
	assert.InDelta(t, 0.3, eval.Result.RuleBasedScore, 1e-9, "no prior art supplied, rule stage uses its default")
	assert.Greater(t, eval.Result.RAGSimilarity, 0.0)
	assert.NotEmpty(t, eval.Result.RAGSources)
	assert.GreaterOrEqual(t, eval.Result.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, eval.Result.ConfidenceScore, 1.0)
	assert.Contains(t, eval.Result.CombinedReasoning, "규칙:")

	// The identical claim must come from the cache with a fresh evaluation ID.
	second := request(handler, http.MethodPost, "/api/v1/evaluations/novelty", body)
	require.Equal(t, http.StatusOK, second.Code)

	var cached struct {
		EvaluationID string `json:"evaluation_id"`
		Cached       bool   `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &cached))
	assert.True(t, cached.Cached)
	assert.NotEqual(t, eval.EvaluationID, cached.EvaluationID)
}

func TestInventiveStepEvaluationEndToEnd(t *testing.T) {
	handler := buildStack(t)

	rec := request(handler, http.MethodPost, "/api/v1/evaluations/inventive-step",
		`{"claim_text":"반도체 소자의 제조 방법에 있어서, 식각 공정을 포함하는 방법.","technical_field":"전자"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var eval struct {
		Result struct {
			TechnicalField    string  `json:"technical_field"`
			RuleBasedScore    float64 `json:"rule_based_score"`
			LLMJudgment       float64 `json:"llm_judgment"`
			CombinedReasoning string  `json:"combined_reasoning"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	assert.Equal(t, "전자", eval.Result.TechnicalField)
	// Field complexity 0.8 → rule score 0.8*0.7+0.3 = 0.86, which passes the
	// LLM gate, so the fake model's 0.8 judgment lands in the blend.
	assert.InDelta(t, 0.86, eval.Result.RuleBasedScore, 1e-9)
	assert.InDelta(t, 0.8, eval.Result.LLMJudgment, 1e-9)
	assert.Contains(t, eval.Result.CombinedReasoning, "판례:")
}

func TestSearchEndToEnd(t *testing.T) {
	handler := buildStack(t)

	rec := request(handler, http.MethodGet,
		"/api/v1/search?q=%EC%8B%A0%EA%B7%9C%EC%84%B1&top_k=2&source_type=%ED%8A%B9%ED%97%88%EB%B2%95", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count   int `json:"count"`
		Results []struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	for _, r := range resp.Results {
		assert.Equal(t, "특허법", r.Metadata["source_type"])
	}
}
