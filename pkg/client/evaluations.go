package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ============================================================================
// Wire Types
// ============================================================================

// ClaimComponent is one parsed claim segment.
type ClaimComponent struct {
	ComponentType      string   `json:"component_type"`
	TechnicalFeatures  []string `json:"technical_features"`
	FunctionalFeatures []string `json:"functional_features"`
	StructuralElements []string `json:"structural_elements"`
}

// ParsedClaim is the response of POST /api/v1/claims/parse.
type ParsedClaim struct {
	Preamble           string           `json:"preamble"`
	Body               string           `json:"body"`
	CharacterizingPart string           `json:"characterizing_part"`
	Components         []ClaimComponent `json:"components"`
	Features           []string         `json:"features"`
	NormalizedFeatures []string         `json:"normalized_features"`
}

// SourceHit is one corpus record referenced by an evaluation or search.
type SourceHit struct {
	ID              string            `json:"id"`
	SimilarityScore float64           `json:"similarity_score"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NoveltyResult is the evaluator verdict on novelty.
type NoveltyResult struct {
	IsNovel           bool        `json:"is_novel"`
	RuleBasedScore    float64     `json:"rule_based_score"`
	RAGSimilarity     float64     `json:"rag_similarity"`
	LLMConfidence     float64     `json:"llm_confidence"`
	MatchingPriorArt  []string    `json:"matching_prior_art"`
	RAGSources        []SourceHit `json:"rag_sources,omitempty"`
	LLMReasoning      string      `json:"llm_reasoning,omitempty"`
	CombinedReasoning string      `json:"combined_reasoning"`
	ConfidenceScore   float64     `json:"confidence_score"`
}

// NoveltyEvaluation is the response of POST /api/v1/evaluations/novelty.
type NoveltyEvaluation struct {
	EvaluationID string         `json:"evaluation_id"`
	Result       *NoveltyResult `json:"result"`
	Cached       bool           `json:"cached"`
	EvaluatedAt  time.Time      `json:"evaluated_at"`
}

// InventiveStepResult is the evaluator verdict on inventive step.
type InventiveStepResult struct {
	HasInventiveStep   bool        `json:"has_inventive_step"`
	TechnicalField     string      `json:"technical_field"`
	RuleBasedScore     float64     `json:"rule_based_score"`
	PrecedentRelevance float64     `json:"precedent_relevance"`
	LLMJudgment        float64     `json:"llm_judgment"`
	RelevantPrecedents []SourceHit `json:"relevant_precedents,omitempty"`
	LLMReasoning       string      `json:"llm_reasoning,omitempty"`
	CombinedReasoning  string      `json:"combined_reasoning"`
	ConfidenceScore    float64     `json:"confidence_score"`
}

// InventiveStepEvaluation is the response of
// POST /api/v1/evaluations/inventive-step.
type InventiveStepEvaluation struct {
	EvaluationID string               `json:"evaluation_id"`
	Result       *InventiveStepResult `json:"result"`
	Cached       bool                 `json:"cached"`
	EvaluatedAt  time.Time            `json:"evaluated_at"`
}

// SearchResponse is the response of GET /api/v1/search.
type SearchResponse struct {
	Query   string      `json:"query"`
	Count   int         `json:"count"`
	Results []SourceHit `json:"results"`
}

// Health is the response of GET /healthz.
type Health struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Index     struct {
		Records   int `json:"records"`
		Dimension int `json:"dimension"`
	} `json:"index"`
}

// ============================================================================
// Operations
// ============================================================================

// ParseClaim decomposes claim text into preamble, body, characterizing part,
// and feature sets.
func (c *Client) ParseClaim(ctx context.Context, claimText string) (*ParsedClaim, error) {
	var out ParsedClaim
	err := c.do(ctx, http.MethodPost, "/api/v1/claims/parse",
		map[string]string{"claim_text": claimText}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EvaluateNovelty runs the hybrid novelty pipeline against claimText.
func (c *Client) EvaluateNovelty(ctx context.Context, claimText string) (*NoveltyEvaluation, error) {
	var out NoveltyEvaluation
	err := c.do(ctx, http.MethodPost, "/api/v1/evaluations/novelty",
		map[string]string{"claim_text": claimText}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EvaluateInventiveStep runs the hybrid inventive-step pipeline.
// technicalField may be empty; the server falls back to its default
// complexity.
func (c *Client) EvaluateInventiveStep(ctx context.Context, claimText, technicalField string) (*InventiveStepEvaluation, error) {
	var out InventiveStepEvaluation
	err := c.do(ctx, http.MethodPost, "/api/v1/evaluations/inventive-step",
		map[string]string{"claim_text": claimText, "technical_field": technicalField}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a similarity search over the reference corpus.  topK <= 0 uses
// the server default; sourceType may be empty to search all record types.
func (c *Client) Search(ctx context.Context, query string, topK int, sourceType string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	if topK > 0 {
		params.Set("top_k", strconv.Itoa(topK))
	}
	if sourceType != "" {
		params.Set("source_type", sourceType)
	}

	var out SearchResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/search?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Healthz probes the server's liveness endpoint.
func (c *Client) Healthz(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
