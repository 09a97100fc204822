package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/PatentGym/internal/application/evaluation"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/intelligence/claimparse"
)

// ============================================================================
// Service Contract
// ============================================================================

// EvaluationService is the application surface the HTTP layer consumes.
// *evaluation.Service satisfies it.
type EvaluationService interface {
	ParseClaim(ctx context.Context, claimText string) (*claimparse.ParsedClaim, error)
	EvaluateNovelty(ctx context.Context, claimText string) (*evaluation.NoveltyEvaluation, error)
	EvaluateInventiveStep(ctx context.Context, claimText, technicalField string) (*evaluation.InventiveStepEvaluation, error)
}

// ============================================================================
// Request / Response Types
// ============================================================================

// parseClaimRequest is the body of POST /api/v1/claims/parse.
type parseClaimRequest struct {
	ClaimText string `json:"claim_text"`
}

// claimComponentDTO is the wire form of one parsed claim segment.
type claimComponentDTO struct {
	ComponentType      string   `json:"component_type"`
	TechnicalFeatures  []string `json:"technical_features"`
	FunctionalFeatures []string `json:"functional_features"`
	StructuralElements []string `json:"structural_elements"`
}

// parseClaimResponse is the body of a successful parse.
type parseClaimResponse struct {
	Preamble           string              `json:"preamble"`
	Body               string              `json:"body"`
	CharacterizingPart string              `json:"characterizing_part"`
	Components         []claimComponentDTO `json:"components"`
	Features           []string            `json:"features"`
	NormalizedFeatures []string            `json:"normalized_features"`
}

// evaluateNoveltyRequest is the body of POST /api/v1/evaluations/novelty.
type evaluateNoveltyRequest struct {
	ClaimText string `json:"claim_text"`
}

// evaluateInventiveStepRequest is the body of
// POST /api/v1/evaluations/inventive-step.
type evaluateInventiveStepRequest struct {
	ClaimText      string `json:"claim_text"`
	TechnicalField string `json:"technical_field"`
}

// ============================================================================
// Handler
// ============================================================================

// EvaluationHandler serves claim parsing and both evaluation endpoints.
type EvaluationHandler struct {
	svc    EvaluationService
	logger logging.Logger
}

// NewEvaluationHandler wires the handler.
func NewEvaluationHandler(svc EvaluationService, logger logging.Logger) *EvaluationHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EvaluationHandler{svc: svc, logger: logger.Named("http.evaluation")}
}

// ParseClaim handles POST /api/v1/claims/parse.
func (h *EvaluationHandler) ParseClaim(c *gin.Context) {
	var req parseClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	parsed, err := h.svc.ParseClaim(c.Request.Context(), req.ClaimText)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toParseClaimResponse(parsed))
}

// EvaluateNovelty handles POST /api/v1/evaluations/novelty.
func (h *EvaluationHandler) EvaluateNovelty(c *gin.Context) {
	var req evaluateNoveltyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.svc.EvaluateNovelty(c.Request.Context(), req.ClaimText)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, result)
}

// EvaluateInventiveStep handles POST /api/v1/evaluations/inventive-step.
func (h *EvaluationHandler) EvaluateInventiveStep(c *gin.Context) {
	var req evaluateInventiveStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.svc.EvaluateInventiveStep(c.Request.Context(), req.ClaimText, req.TechnicalField)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, result)
}

// ============================================================================
// Mapping
// ============================================================================

func toParseClaimResponse(parsed *claimparse.ParsedClaim) parseClaimResponse {
	resp := parseClaimResponse{
		Preamble:           parsed.Preamble,
		Body:               parsed.Body,
		CharacterizingPart: parsed.CharacterizingPart,
		Components:         make([]claimComponentDTO, 0, len(parsed.Components)),
		Features:           sortedSet(parsed.AllFeatures),
		NormalizedFeatures: sortedSet(parsed.NormalizedFeatures),
	}
	for _, comp := range parsed.Components {
		resp.Components = append(resp.Components, claimComponentDTO{
			ComponentType:      string(comp.ComponentType),
			TechnicalFeatures:  emptyIfNil(comp.TechnicalFeatures),
			FunctionalFeatures: emptyIfNil(comp.FunctionalFeatures),
			StructuralElements: emptyIfNil(comp.StructuralElements),
		})
	}
	return resp
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
