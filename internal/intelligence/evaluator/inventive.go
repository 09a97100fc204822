package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
	"github.com/turtacn/PatentGym/internal/intelligence/judgment"
)

// maxPrecedentsInPrompt bounds how many precedent summaries reach the LLM.
const maxPrecedentsInPrompt = 3

// ============================================================================
// InventiveStepResult
// ============================================================================

// InventiveStepResult is the outcome of one hybrid inventive-step
// evaluation.
type InventiveStepResult struct {
	HasInventiveStep bool   `json:"has_inventive_step"`
	TechnicalField   string `json:"technical_field"`

	RuleBasedScore     float64 `json:"rule_based_score"`
	PrecedentRelevance float64 `json:"precedent_relevance"`
	LLMJudgment        float64 `json:"llm_judgment"`

	RelevantPrecedents []memory.SearchResult `json:"relevant_precedents,omitempty"`
	LLMReasoning       string                `json:"llm_reasoning,omitempty"`
	CombinedReasoning  string                `json:"combined_reasoning"`

	ConfidenceScore float64 `json:"confidence_score"`
}

// ============================================================================
// HybridInventiveStepEvaluator
// ============================================================================

// HybridInventiveStepEvaluator blends a technical-field complexity baseline,
// precedent-case retrieval relevance, and an LLM judgment into one
// inventive-step decision.
type HybridInventiveStepEvaluator struct {
	cfg       config.EvaluationConfig
	retriever Retriever
	generator Generator
	logger    logging.Logger
}

// NewHybridInventiveStepEvaluator builds an evaluator over the given
// collaborators.  retriever and generator may be nil; the corresponding
// stages are skipped.
func NewHybridInventiveStepEvaluator(cfg config.EvaluationConfig, retriever Retriever, generator Generator, logger logging.Logger) *HybridInventiveStepEvaluator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HybridInventiveStepEvaluator{
		cfg:       cfg,
		retriever: retriever,
		generator: generator,
		logger:    logger.Named("evaluator.inventive"),
	}
}

// EvaluateInventiveStep runs the full pipeline for claimText in the given
// technical field.  Always returns a result; collaborator failures degrade
// individual stages and are noted in CombinedReasoning.
func (e *HybridInventiveStepEvaluator) EvaluateInventiveStep(ctx context.Context, claimText, technicalField string) *InventiveStepResult {
	var (
		ruleScore   float64
		relevance   float64
		llmJudgment float64
		llmReason   string
		precedents  []memory.SearchResult
	)

	// Unlike the novelty pipeline, the judgment stage runs whenever it is
	// enabled: precedent review is the core of an inventive-step decision,
	// so it is never score-gated.
	inv := e.cfg.InventiveStep
	results := runPipeline(ctx, []stage{
		{
			name:   "rule",
			weight: inv.RuleWeight,
			skip:   !e.cfg.EnableRuleBased,
			run: func(context.Context) (float64, string) {
				ruleScore = e.ruleStage(technicalField)
				return ruleScore, ""
			},
		},
		{
			name:   "precedent",
			weight: inv.RAGWeight,
			skip:   !e.cfg.EnableRAG || e.retriever == nil,
			run: func(ctx context.Context) (float64, string) {
				var note string
				relevance, precedents, note = e.precedentStage(ctx, claimText)
				return relevance, note
			},
		},
		{
			name:   "llm",
			weight: inv.LLMWeight,
			skip:   !e.cfg.EnableLLM || e.generator == nil,
			run: func(ctx context.Context) (float64, string) {
				var note string
				llmJudgment, llmReason, note = e.llmStage(ctx, claimText, precedents)
				return llmJudgment, note
			},
		},
	})

	final := combineScores(results)
	hasStep := final > inv.DecisionThreshold

	trace := formatTrace("판례", ruleScore, relevance, llmJudgment, final)
	reasoning := joinReasoning(trace, llmReason, stageNotes(results))

	e.logger.Info("inventive-step evaluation complete",
		logging.Bool("has_inventive_step", hasStep),
		logging.String("technical_field", technicalField),
		logging.Float64("final_score", final),
		logging.Float64("rule_score", ruleScore),
		logging.Float64("precedent_relevance", relevance),
		logging.Float64("llm_judgment", llmJudgment))

	return &InventiveStepResult{
		HasInventiveStep:   hasStep,
		TechnicalField:     technicalField,
		RuleBasedScore:     ruleScore,
		PrecedentRelevance: relevance,
		LLMJudgment:        llmJudgment,
		RelevantPrecedents: precedents,
		LLMReasoning:       llmReason,
		CombinedReasoning:  reasoning,
		ConfidenceScore:    final,
	}
}

// ruleStage maps the field's complexity baseline to a score in [0.3, 1.0].
func (e *HybridInventiveStepEvaluator) ruleStage(technicalField string) float64 {
	inv := e.cfg.InventiveStep
	complexity, ok := inv.TechnicalComplexity[technicalField]
	if !ok {
		complexity = inv.DefaultComplexity
	}
	score := complexity*0.7 + 0.3
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// precedentStage retrieves precedent cases and reports the maximum
// similarity.
func (e *HybridInventiveStepEvaluator) precedentStage(ctx context.Context, claimText string) (float64, []memory.SearchResult, string) {
	query := "진보성 판단 기준: " + claimText
	rctx, err := e.retriever.Retrieve(ctx, query, e.cfg.InventiveStep.MaxRetrievedDocs, memory.Filter{"source_type": "판례"})
	if err != nil {
		e.logger.Warn("precedent retrieval failed", logging.Err(err))
		return 0.0, nil, "판례 검색 실패: " + err.Error()
	}

	var maxSim float64
	for _, r := range rctx.SearchResults {
		if r.SimilarityScore > maxSim {
			maxSim = r.SimilarityScore
		}
	}
	return maxSim, rctx.SearchResults, ""
}

// llmStage asks the generator for an inventive-step judgment grounded in the
// retrieved precedents.
func (e *HybridInventiveStepEvaluator) llmStage(ctx context.Context, claimText string, precedents []memory.SearchResult) (float64, string, string) {
	prompt := buildInventiveStepPrompt(claimText, precedents)

	response, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("llm judgment failed", logging.Err(err))
		return 0.0, "", "LLM 판단 실패: " + err.Error()
	}

	j, err := judgment.ParseInventiveStep(response)
	if err != nil {
		return 0.5, response, ""
	}
	return j.Confidence, j.Reasoning, ""
}

func buildInventiveStepPrompt(claimText string, precedents []memory.SearchResult) string {
	var ctxBlock strings.Builder
	for i, p := range precedents {
		if i == maxPrecedentsInPrompt {
			break
		}
		label := p.Metadata["number"]
		if label == "" {
			label = p.ID
		}
		fmt.Fprintf(&ctxBlock, "[%s] %s\n", label, truncateRunes(p.Metadata["content"], evidencePreviewRunes))
	}
	evidence := strings.TrimRight(ctxBlock.String(), "\n")
	if evidence == "" {
		evidence = "관련 판례 없음"
	}

	return fmt.Sprintf(`다음 청구항의 진보성을 평가하세요.

【청구항】
%s

【관련 판례】
%s

【판단 기준】
1. 선행기술로부터의 기술적 진보가 있는가?
2. 통상의 기술자가 쉽게 도출할 수 있는가?
3. 예측 불가능한 기술 효과가 있는가?

【응답 형식】
{
    "has_inventive_step": true/false,
    "confidence": 0.0-1.0,
    "reasoning": "판단 이유"
}
`, claimText, evidence)
}
