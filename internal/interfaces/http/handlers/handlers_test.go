package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentGym/internal/application/evaluation"
	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
	"github.com/turtacn/PatentGym/internal/intelligence/claimparse"
	"github.com/turtacn/PatentGym/internal/intelligence/evaluator"
	apperrors "github.com/turtacn/PatentGym/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ----------------------------------------------------------------------------
// Fakes
// ----------------------------------------------------------------------------

type fakeEvaluationService struct {
	parsed    *claimparse.ParsedClaim
	novelty   *evaluation.NoveltyEvaluation
	inventive *evaluation.InventiveStepEvaluation
	err       error

	lastClaim string
	lastField string
}

func (f *fakeEvaluationService) ParseClaim(_ context.Context, claimText string) (*claimparse.ParsedClaim, error) {
	f.lastClaim = claimText
	if f.err != nil {
		return nil, f.err
	}
	return f.parsed, nil
}

func (f *fakeEvaluationService) EvaluateNovelty(_ context.Context, claimText string) (*evaluation.NoveltyEvaluation, error) {
	f.lastClaim = claimText
	if f.err != nil {
		return nil, f.err
	}
	return f.novelty, nil
}

func (f *fakeEvaluationService) EvaluateInventiveStep(_ context.Context, claimText, technicalField string) (*evaluation.InventiveStepEvaluation, error) {
	f.lastClaim = claimText
	f.lastField = technicalField
	if f.err != nil {
		return nil, f.err
	}
	return f.inventive, nil
}

type fakeSearchService struct {
	results []memory.SearchResult
	err     error

	lastQuery  string
	lastTopK   int
	lastSource string
}

func (f *fakeSearchService) Search(_ context.Context, query string, topK int, sourceType string) ([]memory.SearchResult, error) {
	f.lastQuery = query
	f.lastTopK = topK
	f.lastSource = sourceType
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeStats struct {
	stats memory.Stats
}

func (f *fakeStats) IndexStats() memory.Stats { return f.stats }

func perform(t *testing.T, register func(*gin.Engine), method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	register(r)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// ----------------------------------------------------------------------------
// ParseClaim
// ----------------------------------------------------------------------------

func TestParseClaimReturnsComponents(t *testing.T) {
	parsed := claimparse.NewClaimComponentParser().ParseClaim(
		"디스플레이 장치에 있어서, 영상을 표시하는 표시부; 및 상기 표시부를 제어하는 제어부를 포함하는 것을 특징으로 하는 디스플레이 장치.")
	svc := &fakeEvaluationService{parsed: parsed}
	h := NewEvaluationHandler(svc, nil)

	rec := perform(t, func(r *gin.Engine) {
		r.POST("/api/v1/claims/parse", h.ParseClaim)
	}, http.MethodPost, "/api/v1/claims/parse", `{"claim_text":"디스플레이 장치"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "디스플레이 장치", svc.lastClaim)

	var resp parseClaimResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Components)
	assert.NotEmpty(t, resp.Features)
	for _, comp := range resp.Components {
		assert.NotNil(t, comp.TechnicalFeatures)
		assert.NotNil(t, comp.StructuralElements)
	}
}

func TestParseClaimRejectsMalformedJSON(t *testing.T) {
	h := NewEvaluationHandler(&fakeEvaluationService{}, nil)

	rec := perform(t, func(r *gin.Engine) {
		r.POST("/api/v1/claims/parse", h.ParseClaim)
	}, http.MethodPost, "/api/v1/claims/parse", `{"claim_text": `)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.ErrCodeBadRequest.String(), resp.Error.Code)
}

func TestParseClaimMapsEmptyClaimTo400(t *testing.T) {
	svc := &fakeEvaluationService{err: apperrors.New(apperrors.ErrCodeClaimEmpty, "청구항 텍스트가 비어 있습니다")}
	h := NewEvaluationHandler(svc, nil)

	rec := perform(t, func(r *gin.Engine) {
		r.POST("/api/v1/claims/parse", h.ParseClaim)
	}, http.MethodPost, "/api/v1/claims/parse", `{"claim_text":""}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.ErrCodeClaimEmpty.String(), resp.Error.Code)
	assert.Equal(t, "청구항 텍스트가 비어 있습니다", resp.Error.Message)
}

// ----------------------------------------------------------------------------
// Evaluations
// ----------------------------------------------------------------------------

func TestEvaluateNoveltyReturnsResult(t *testing.T) {
	svc := &fakeEvaluationService{novelty: &evaluation.NoveltyEvaluation{
		EvaluationID: "eval-1",
		Result: &evaluator.NoveltyResult{
			IsNovel:         true,
			RuleBasedScore:  0.3,
			RAGSimilarity:   0.4,
			ConfidenceScore: 0.37,
		},
		EvaluatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}}
	h := NewEvaluationHandler(svc, nil)

	rec := perform(t, func(r *gin.Engine) {
		r.POST("/api/v1/evaluations/novelty", h.EvaluateNovelty)
	}, http.MethodPost, "/api/v1/evaluations/novelty", `{"claim_text":"무선 통신 장치"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "무선 통신 장치", svc.lastClaim)

	var resp evaluation.NoveltyEvaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "eval-1", resp.EvaluationID)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.IsNovel)
	assert.InDelta(t, 0.37, resp.Result.ConfidenceScore, 1e-9)
}

func TestEvaluateInventiveStepPassesTechnicalField(t *testing.T) {
	svc := &fakeEvaluationService{inventive: &evaluation.InventiveStepEvaluation{
		EvaluationID: "eval-2",
		Result: &evaluator.InventiveStepResult{
			HasInventiveStep: true,
			TechnicalField:   "전자",
			RuleBasedScore:   0.86,
			ConfidenceScore:  0.74,
		},
		EvaluatedAt: time.Now().UTC(),
	}}
	h := NewEvaluationHandler(svc, nil)

	rec := perform(t, func(r *gin.Engine) {
		r.POST("/api/v1/evaluations/inventive-step", h.EvaluateInventiveStep)
	}, http.MethodPost, "/api/v1/evaluations/inventive-step",
		`{"claim_text":"반도체 소자","technical_field":"전자"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "반도체 소자", svc.lastClaim)
	assert.Equal(t, "전자", svc.lastField)

	var resp evaluation.InventiveStepEvaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.HasInventiveStep)
	assert.Equal(t, "전자", resp.Result.TechnicalField)
}

func TestEvaluateNoveltyMapsStageDisabledTo403(t *testing.T) {
	svc := &fakeEvaluationService{err: apperrors.New(apperrors.ErrCodeStageDisabled, "novelty evaluator not configured")}
	h := NewEvaluationHandler(svc, nil)

	rec := perform(t, func(r *gin.Engine) {
		r.POST("/api/v1/evaluations/novelty", h.EvaluateNovelty)
	}, http.MethodPost, "/api/v1/evaluations/novelty", `{"claim_text":"무선 통신 장치"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

// ----------------------------------------------------------------------------
// Search
// ----------------------------------------------------------------------------

func TestSearchReturnsHits(t *testing.T) {
	svc := &fakeSearchService{results: []memory.SearchResult{
		{ID: "특허법:제29조", SimilarityScore: 0.91, Metadata: map[string]string{"source_type": "특허법"}},
		{ID: "특허법:제42조", SimilarityScore: 0.72, Metadata: map[string]string{"source_type": "특허법"}},
	}}
	h := NewSearchHandler(svc, nil)

	rec := perform(t, func(r *gin.Engine) {
		r.GET("/api/v1/search", h.Search)
	}, http.MethodGet, "/api/v1/search?q=%EC%8B%A0%EA%B7%9C%EC%84%B1&top_k=2&source_type=%ED%8A%B9%ED%97%88%EB%B2%95", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "신규성", svc.lastQuery)
	assert.Equal(t, 2, svc.lastTopK)
	assert.Equal(t, "특허법", svc.lastSource)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "특허법:제29조", resp.Results[0].ID)
	assert.InDelta(t, 0.91, resp.Results[0].Similarity, 1e-9)
}

func TestSearchRejectsNonNumericTopK(t *testing.T) {
	h := NewSearchHandler(&fakeSearchService{}, nil)

	rec := perform(t, func(r *gin.Engine) {
		r.GET("/api/v1/search", h.Search)
	}, http.MethodGet, "/api/v1/search?q=abc&top_k=many", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchMapsEmptyQueryTo400(t *testing.T) {
	svc := &fakeSearchService{err: apperrors.New(apperrors.ErrCodeBadRequest, "search query must not be empty")}
	h := NewSearchHandler(svc, nil)

	rec := perform(t, func(r *gin.Engine) {
		r.GET("/api/v1/search", h.Search)
	}, http.MethodGet, "/api/v1/search", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// ----------------------------------------------------------------------------
// Health
// ----------------------------------------------------------------------------

func TestHealthReportsIndexState(t *testing.T) {
	h := NewHealthHandler(&fakeStats{stats: memory.Stats{Count: 12, Dimension: 768}}, "1.0.0")

	rec := perform(t, func(r *gin.Engine) {
		r.GET("/healthz", h.Health)
	}, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.Equal(t, 12, resp.Index.Records)
	assert.Equal(t, 768, resp.Index.Dimension)
}
