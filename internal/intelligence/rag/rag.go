// Package rag combines vector retrieval with LLM generation: it searches the
// in-memory index for material related to a query, formats the hits into a
// context block, and asks the generation provider for an answer grounded in
// that context.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/PatentGym/internal/infrastructure/llm"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
	"github.com/turtacn/PatentGym/internal/intelligence/embedding"
)

// ============================================================================
// Types
// ============================================================================

// Context carries the retrieval half of a RAG exchange: the raw hits plus a
// formatted text block ready for prompt embedding.
type Context struct {
	Query            string
	SearchResults    []memory.SearchResult
	FormattedContext string
}

// Response is the full answer of a RAG query.  Confidence is the mean
// similarity of the retrieved results, 0.0 when nothing was retrieved.
// Degraded marks responses produced after a retrieval or generation failure.
type Response struct {
	Query      string
	Answer     string
	Context    *Context
	Sources    []string
	Confidence float64
	Degraded   bool
}

// contentPreviewRunes bounds how much of each document lands in the prompt.
const contentPreviewRunes = 200

// ============================================================================
// System
// ============================================================================

// System wires the embedder, the vector index, and the generation provider
// into the retrieve-then-generate flow.
type System struct {
	index     *memory.VectorIndex
	embedder  embedding.TextEmbedder
	generator llm.Provider
	topK      int
	logger    logging.Logger
}

// NewSystem builds a RAG system over the given collaborators.  topK bounds
// every retrieval; values below 1 fall back to 5.
func NewSystem(index *memory.VectorIndex, embedder embedding.TextEmbedder, generator llm.Provider, topK int, logger logging.Logger) *System {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if topK < 1 {
		topK = 5
	}
	return &System{
		index:     index,
		embedder:  embedder,
		generator: generator,
		topK:      topK,
		logger:    logger.Named("rag"),
	}
}

// Retrieve embeds the query, searches the index, and formats the hits.
// Fails only when the query cannot be embedded.
func (s *System) Retrieve(ctx context.Context, query string, topK int, filter memory.Filter) (*Context, error) {
	if topK < 1 {
		topK = s.topK
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results := s.index.Search(vec, topK, filter)
	s.logger.Debug("retrieved context",
		logging.String("query", query),
		logging.Int("results", len(results)))

	return &Context{
		Query:            query,
		SearchResults:    results,
		FormattedContext: formatContext(results),
	}, nil
}

// Generate asks the provider for an answer grounded in rctx.  A generation
// failure, or a system built without a provider, degrades the answer but
// keeps the retrieved sources and the similarity-based confidence.
func (s *System) Generate(ctx context.Context, query string, rctx *Context) *Response {
	resp := &Response{
		Query:      query,
		Context:    rctx,
		Sources:    sourceIDs(rctx.SearchResults),
		Confidence: meanSimilarity(rctx.SearchResults),
	}

	if s.generator == nil {
		resp.Answer = "답변 생성이 비활성화되어 있습니다. 검색된 자료를 참고하세요."
		resp.Degraded = true
		return resp
	}

	answer, err := s.generator.Generate(ctx, buildPrompt(query, rctx))
	if err != nil {
		s.logger.Warn("answer generation failed", logging.Err(err))
		resp.Answer = "답변 생성 중 오류가 발생했습니다. 검색된 자료를 참고하세요."
		resp.Degraded = true
		return resp
	}

	resp.Answer = answer
	return resp
}

// Query runs retrieve then generate.  It never fails: when retrieval itself
// breaks (embedding service down), the caller gets a degraded response with
// empty sources and zero confidence instead of an error.
func (s *System) Query(ctx context.Context, text string, filter memory.Filter) *Response {
	rctx, err := s.Retrieve(ctx, text, s.topK, filter)
	if err != nil {
		s.logger.Warn("retrieval failed", logging.Err(err))
		return &Response{
			Query:    text,
			Answer:   "관련 자료 검색에 실패했습니다: " + err.Error(),
			Context:  &Context{Query: text, FormattedContext: formatContext(nil)},
			Sources:  []string{},
			Degraded: true,
		}
	}
	return s.Generate(ctx, text, rctx)
}

// ============================================================================
// Helpers
// ============================================================================

func formatContext(results []memory.SearchResult) string {
	if len(results) == 0 {
		return "관련 자료를 찾을 수 없습니다."
	}

	var b strings.Builder
	b.WriteString("### 관련 법률 조문 및 자료\n\n")
	for i, r := range results {
		label := r.Metadata["number"]
		if label == "" {
			label = r.ID
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, label, r.Metadata["title"])
		fmt.Fprintf(&b, "   유사도: %.1f%%\n", r.SimilarityScore*100)
		fmt.Fprintf(&b, "   내용: %s\n\n", truncateRunes(r.Metadata["content"], contentPreviewRunes))
	}
	return strings.TrimRight(b.String(), "\n")
}

func buildPrompt(query string, rctx *Context) string {
	var b strings.Builder
	b.WriteString("다음은 법률 전문가로서 답변해야 할 질문입니다.\n\n")
	b.WriteString("### 질문\n")
	b.WriteString(query)
	b.WriteString("\n\n### 관련 법률 자료\n")
	b.WriteString(rctx.FormattedContext)
	b.WriteString("\n\n### 답변 지침\n")
	b.WriteString("1. 위의 관련 자료를 바탕으로 답변하세요\n")
	b.WriteString("2. 구체적인 조문 번호와 함께 설명하세요\n")
	b.WriteString("3. 명확하고 논리적인 구조로 답변하세요\n")
	b.WriteString("4. 법적 개념을 정확히 사용하세요\n")
	b.WriteString("\n### 답변\n")
	return b.String()
}

func sourceIDs(results []memory.SearchResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return ids
}

func meanSimilarity(results []memory.SearchResult) float64 {
	if len(results) == 0 {
		return 0.0
	}
	var sum float64
	for _, r := range results {
		sum += r.SimilarityScore
	}
	mean := sum / float64(len(results))
	if mean > 1.0 {
		mean = 1.0
	}
	return mean
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
