package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
	"github.com/turtacn/PatentGym/pkg/errors"
)

type fixedEmbedder struct {
	vec  []float64
	fail bool
}

func (f *fixedEmbedder) Embed(context.Context, string) ([]float64, error) {
	if f.fail {
		return nil, errors.New(errors.ErrCodeEmbeddingUnavailable, "embedding service down")
	}
	return f.vec, nil
}

func (f *fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		v, err := f.Embed(context.Background(), texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fixedEmbedder) Dimension() int { return len(f.vec) }
func (f *fixedEmbedder) Name() string   { return "fixed" }

type scriptedProvider struct {
	answer     string
	fail       bool
	lastPrompt string
}

func (p *scriptedProvider) Generate(_ context.Context, prompt string) (string, error) {
	p.lastPrompt = prompt
	if p.fail {
		return "", errors.New(errors.ErrCodeGenerationUnavailable, "llm down")
	}
	return p.answer, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func seededIndex(t *testing.T) *memory.VectorIndex {
	t.Helper()
	idx := memory.NewVectorIndex("test", logging.NewNopLogger())
	require.NoError(t, idx.Add("law-29", []float64{1, 0, 0}, map[string]string{
		"number": "특허법 제29조", "title": "특허요건", "content": "산업상 이용할 수 있는 발명", "source_type": "특허법",
	}))
	require.NoError(t, idx.Add("law-42", []float64{0.8, 0.2, 0}, map[string]string{
		"number": "특허법 제42조", "title": "특허출원", "content": "특허출원서 기재사항", "source_type": "특허법",
	}))
	require.NoError(t, idx.Add("case-1", []float64{0, 1, 0}, map[string]string{
		"number": "대법원 2019후10609", "title": "진보성 판단", "content": "통상의 기술자 기준", "source_type": "판례",
	}))
	return idx
}

func TestRetrieveFormatsContext(t *testing.T) {
	sys := NewSystem(seededIndex(t), &fixedEmbedder{vec: []float64{1, 0, 0}}, &scriptedProvider{}, 5, logging.NewNopLogger())

	rctx, err := sys.Retrieve(context.Background(), "특허 요건", 2, memory.Filter{"source_type": "특허법"})
	require.NoError(t, err)
	require.Len(t, rctx.SearchResults, 2)
	assert.Equal(t, "law-29", rctx.SearchResults[0].ID)
	assert.Contains(t, rctx.FormattedContext, "특허법 제29조")
	assert.Contains(t, rctx.FormattedContext, "특허요건")
	assert.NotContains(t, rctx.FormattedContext, "대법원")
}

func TestRetrieveEmptyIndexMessage(t *testing.T) {
	idx := memory.NewVectorIndex("empty", logging.NewNopLogger())
	sys := NewSystem(idx, &fixedEmbedder{vec: []float64{1, 0, 0}}, &scriptedProvider{}, 5, logging.NewNopLogger())

	rctx, err := sys.Retrieve(context.Background(), "질의", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, rctx.SearchResults)
	assert.Contains(t, rctx.FormattedContext, "관련 자료를 찾을 수 없습니다")
}

func TestQueryHappyPath(t *testing.T) {
	provider := &scriptedProvider{answer: "특허법 제29조에 따라 신규성이 요구됩니다."}
	sys := NewSystem(seededIndex(t), &fixedEmbedder{vec: []float64{1, 0, 0}}, provider, 2, logging.NewNopLogger())

	resp := sys.Query(context.Background(), "신규성 요건은?", memory.Filter{"source_type": "특허법"})
	require.NotNil(t, resp)
	assert.False(t, resp.Degraded)
	assert.Equal(t, provider.answer, resp.Answer)
	assert.Equal(t, []string{"law-29", "law-42"}, resp.Sources)
	assert.Greater(t, resp.Confidence, 0.0)
	assert.LessOrEqual(t, resp.Confidence, 1.0)
	// the prompt embeds both the question and the retrieved material
	assert.Contains(t, provider.lastPrompt, "신규성 요건은?")
	assert.Contains(t, provider.lastPrompt, "특허법 제29조")
}

func TestQueryConfidenceIsMeanSimilarity(t *testing.T) {
	sys := NewSystem(seededIndex(t), &fixedEmbedder{vec: []float64{1, 0, 0}}, &scriptedProvider{answer: "답변"}, 2, logging.NewNopLogger())

	resp := sys.Query(context.Background(), "질의", memory.Filter{"source_type": "특허법"})
	require.Len(t, resp.Context.SearchResults, 2)
	want := (resp.Context.SearchResults[0].SimilarityScore + resp.Context.SearchResults[1].SimilarityScore) / 2
	assert.InDelta(t, want, resp.Confidence, 1e-9)
}

func TestQueryDegradesOnEmbeddingFailure(t *testing.T) {
	sys := NewSystem(seededIndex(t), &fixedEmbedder{fail: true}, &scriptedProvider{answer: "답변"}, 5, logging.NewNopLogger())

	resp := sys.Query(context.Background(), "질의", nil)
	require.NotNil(t, resp)
	assert.True(t, resp.Degraded)
	assert.Empty(t, resp.Sources)
	assert.Zero(t, resp.Confidence)
	assert.True(t, strings.Contains(resp.Answer, "실패"))
}

func TestGenerateDegradesOnLLMFailure(t *testing.T) {
	sys := NewSystem(seededIndex(t), &fixedEmbedder{vec: []float64{1, 0, 0}}, &scriptedProvider{fail: true}, 2, logging.NewNopLogger())

	resp := sys.Query(context.Background(), "질의", memory.Filter{"source_type": "특허법"})
	require.NotNil(t, resp)
	assert.True(t, resp.Degraded)
	// sources and confidence survive a generation-only failure
	assert.Equal(t, []string{"law-29", "law-42"}, resp.Sources)
	assert.Greater(t, resp.Confidence, 0.0)
}

func TestQueryDegradesWithoutProvider(t *testing.T) {
	sys := NewSystem(seededIndex(t), &fixedEmbedder{vec: []float64{1, 0, 0}}, nil, 2, logging.NewNopLogger())

	resp := sys.Query(context.Background(), "질의", memory.Filter{"source_type": "특허법"})
	require.NotNil(t, resp)
	assert.True(t, resp.Degraded)
	assert.Contains(t, resp.Answer, "비활성화")
	// retrieval still works without a generation backend
	assert.Equal(t, []string{"law-29", "law-42"}, resp.Sources)
	assert.Greater(t, resp.Confidence, 0.0)
}

func TestNoResultsZeroConfidence(t *testing.T) {
	idx := memory.NewVectorIndex("empty", logging.NewNopLogger())
	sys := NewSystem(idx, &fixedEmbedder{vec: []float64{1, 0, 0}}, &scriptedProvider{answer: "답변"}, 5, logging.NewNopLogger())

	resp := sys.Query(context.Background(), "질의", nil)
	assert.False(t, resp.Degraded)
	assert.Empty(t, resp.Sources)
	assert.Zero(t, resp.Confidence)
}
