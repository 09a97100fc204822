package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
	"github.com/turtacn/PatentGym/internal/intelligence/claimparse"
	"github.com/turtacn/PatentGym/internal/intelligence/judgment"
	"github.com/turtacn/PatentGym/internal/intelligence/rag"
)

// ============================================================================
// Collaborator Interfaces
// ============================================================================

// Retriever is the retrieval capability the evaluators need; *rag.System
// satisfies it.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, filter memory.Filter) (*rag.Context, error)
}

// Generator is the text-generation capability used for the LLM judgment
// stage; llm.Provider satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PriorArt is one reference document the rule stage compares claims against.
type PriorArt struct {
	ID   string
	Text string
}

// evidencePreviewRunes bounds per-document text embedded into LLM prompts.
const evidencePreviewRunes = 200

// ============================================================================
// NoveltyResult
// ============================================================================

// NoveltyResult is the outcome of one hybrid novelty evaluation.
type NoveltyResult struct {
	IsNovel bool `json:"is_novel"`

	RuleBasedScore float64 `json:"rule_based_score"`
	RAGSimilarity  float64 `json:"rag_similarity"`
	LLMConfidence  float64 `json:"llm_confidence"`

	MatchingPriorArt  []string              `json:"matching_prior_art"`
	RAGSources        []memory.SearchResult `json:"rag_sources,omitempty"`
	LLMReasoning      string                `json:"llm_reasoning,omitempty"`
	CombinedReasoning string                `json:"combined_reasoning"`

	ConfidenceScore float64 `json:"confidence_score"`
}

// ============================================================================
// HybridNoveltyEvaluator
// ============================================================================

// HybridNoveltyEvaluator blends three signals into one novelty decision:
// feature overlap against reference prior art, retrieval similarity against
// the indexed corpus, and a gated LLM judgment.
type HybridNoveltyEvaluator struct {
	cfg       config.EvaluationConfig
	parser    *claimparse.ClaimComponentParser
	retriever Retriever
	generator Generator
	logger    logging.Logger

	priorArt []PriorArt
	parsed   []*claimparse.ParsedClaim
}

// NewHybridNoveltyEvaluator builds an evaluator over the given collaborators.
// retriever and generator may be nil; the corresponding stages are skipped.
func NewHybridNoveltyEvaluator(cfg config.EvaluationConfig, retriever Retriever, generator Generator, logger logging.Logger) *HybridNoveltyEvaluator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HybridNoveltyEvaluator{
		cfg:       cfg,
		parser:    claimparse.NewClaimComponentParser(),
		retriever: retriever,
		generator: generator,
		logger:    logger.Named("evaluator.novelty"),
	}
}

// SetPriorArt installs the reference documents the rule stage compares
// claims against.  Without references the rule stage falls back to
// NoveltyConfig.DefaultRuleScore.
func (e *HybridNoveltyEvaluator) SetPriorArt(docs []PriorArt) {
	e.priorArt = docs
	e.parsed = make([]*claimparse.ParsedClaim, len(docs))
	for i, d := range docs {
		e.parsed[i] = e.parser.ParseClaim(d.Text)
	}
}

// EvaluateNovelty runs the full pipeline for claimText.  parsed may carry an
// already-parsed claim to skip reparsing; pass nil otherwise.  The call
// always returns a result; collaborator failures degrade individual stages
// and are noted in CombinedReasoning.
func (e *HybridNoveltyEvaluator) EvaluateNovelty(ctx context.Context, claimText string, parsed *claimparse.ParsedClaim) *NoveltyResult {
	if parsed == nil {
		parsed = e.parser.ParseClaim(claimText)
	}

	var (
		ruleScore     float64
		ragSimilarity float64
		llmConfidence float64
		llmReasoning  string
		matching      []string
		sources       []memory.SearchResult
	)

	nov := e.cfg.Novelty
	results := runPipeline(ctx, []stage{
		{
			name:   "rule",
			weight: nov.RuleWeight,
			skip:   !e.cfg.EnableRuleBased,
			run: func(context.Context) (float64, string) {
				ruleScore, matching = e.ruleStage(parsed)
				return ruleScore, ""
			},
		},
		{
			name:   "rag",
			weight: nov.RAGWeight,
			skip:   !e.cfg.EnableRAG || e.retriever == nil,
			run: func(ctx context.Context) (float64, string) {
				var note string
				ragSimilarity, sources, note = e.ragStage(ctx, claimText)
				return ragSimilarity, note
			},
		},
	})

	// the LLM round trip is worth it only when an earlier stage already sees
	// the claim close to prior art
	gatedOff := ruleScore <= nov.LLMGateThreshold && ragSimilarity <= nov.LLMGateThreshold
	results = append(results, runPipeline(ctx, []stage{
		{
			name:   "llm",
			weight: nov.LLMWeight,
			skip:   !e.cfg.EnableLLM || e.generator == nil || gatedOff,
			run: func(ctx context.Context) (float64, string) {
				var note string
				llmConfidence, llmReasoning, note = e.llmStage(ctx, claimText, sources)
				return llmConfidence, note
			},
		},
	})...)

	final := combineScores(results)
	isNovel := final < nov.MinSimilarityThreshold

	trace := formatTrace("RAG", ruleScore, ragSimilarity, llmConfidence, final)
	reasoning := joinReasoning(trace, llmReasoning, stageNotes(results))

	e.logger.Info("novelty evaluation complete",
		logging.Bool("is_novel", isNovel),
		logging.Float64("final_score", final),
		logging.Float64("rule_score", ruleScore),
		logging.Float64("rag_similarity", ragSimilarity),
		logging.Float64("llm_confidence", llmConfidence))

	return &NoveltyResult{
		IsNovel:           isNovel,
		RuleBasedScore:    ruleScore,
		RAGSimilarity:     ragSimilarity,
		LLMConfidence:     llmConfidence,
		MatchingPriorArt:  matching,
		RAGSources:        sources,
		LLMReasoning:      llmReasoning,
		CombinedReasoning: reasoning,
		ConfidenceScore:   final,
	}
}

// ruleStage scores feature overlap against the reference prior art.  Claims
// with no extracted features score 0.0; an empty reference set yields the
// configured default.
func (e *HybridNoveltyEvaluator) ruleStage(parsed *claimparse.ParsedClaim) (float64, []string) {
	if len(parsed.NormalizedFeatures) == 0 {
		return 0.0, nil
	}
	if len(e.parsed) == 0 {
		return e.cfg.Novelty.DefaultRuleScore, nil
	}

	var best float64
	var matching []string
	for i, ref := range e.parsed {
		sim := e.parser.ClaimSimilarity(parsed, ref)
		if sim > best {
			best = sim
		}
		if sim > 0 {
			matching = append(matching, e.priorArt[i].ID)
		}
	}
	return best, matching
}

// ragStage retrieves prior-art material and reports the maximum similarity.
func (e *HybridNoveltyEvaluator) ragStage(ctx context.Context, claimText string) (float64, []memory.SearchResult, string) {
	query := "특허 선행기술: " + claimText
	rctx, err := e.retriever.Retrieve(ctx, query, e.cfg.Novelty.MaxRetrievedDocs, memory.Filter{"source_type": "특허법"})
	if err != nil {
		e.logger.Warn("prior-art retrieval failed", logging.Err(err))
		return 0.0, nil, "선행기술 검색 실패: " + err.Error()
	}

	var maxSim float64
	for _, r := range rctx.SearchResults {
		if r.SimilarityScore > maxSim {
			maxSim = r.SimilarityScore
		}
	}
	return maxSim, rctx.SearchResults, ""
}

// llmStage asks the generator for a novelty judgment grounded in the
// retrieved evidence.
func (e *HybridNoveltyEvaluator) llmStage(ctx context.Context, claimText string, sources []memory.SearchResult) (float64, string, string) {
	prompt := buildNoveltyPrompt(claimText, sources)

	response, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("llm judgment failed", logging.Err(err))
		return 0.0, "", "LLM 판단 실패: " + err.Error()
	}

	j, err := judgment.ParseNovelty(response)
	if err != nil {
		// unparseable output still carries information: neutral confidence,
		// raw text as the reasoning
		return 0.5, response, ""
	}
	return j.Confidence, j.Reasoning, ""
}

func buildNoveltyPrompt(claimText string, sources []memory.SearchResult) string {
	var ctxBlock strings.Builder
	for _, r := range sources {
		label := r.Metadata["number"]
		if label == "" {
			label = r.ID
		}
		fmt.Fprintf(&ctxBlock, "[%s] %s\n", label, truncateRunes(r.Metadata["content"], evidencePreviewRunes))
	}
	evidence := strings.TrimRight(ctxBlock.String(), "\n")
	if evidence == "" {
		evidence = "관련 자료 없음"
	}

	return fmt.Sprintf(`다음 청구항의 신규성을 평가하세요.

【청구항】
%s

【관련 선행기술 및 법률 조문】
%s

【판단 기준】
1. 동일한 기술구성이 존재하는가?
2. 기술적 특징이 명확히 구별되는가?
3. 선행기술과의 차이점은 무엇인가?

【응답 형식】
다음과 같이 JSON으로 응답하세요:
{
    "is_novel": true/false,
    "confidence": 0.0-1.0,
    "reasoning": "판단 이유"
}
`, claimText, evidence)
}
