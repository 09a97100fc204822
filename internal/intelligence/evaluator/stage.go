// Package evaluator implements the hybrid novelty and inventive-step
// evaluation pipelines: a cheap rule stage, a retrieval stage against the
// vector index, and an LLM judgment stage (score-gated for novelty only),
// blended into one weighted score.  Evaluations never fail for ordinary input; a broken collaborator
// degrades its stage to a documented fallback score noted in the reasoning
// trace.
package evaluator

import (
	"context"
	"fmt"
	"strings"
)

// ============================================================================
// Stage Pipeline
// ============================================================================

// stage is one step of a hybrid evaluation.  run returns the stage score in
// [0,1] and an optional note for the reasoning trace (set on degradation).
// A stage with skip=true contributes nothing: its weight is excluded from
// renormalization.
type stage struct {
	name   string
	weight float64
	skip   bool
	run    func(ctx context.Context) (float64, string)
}

// stageResult records what one stage produced.
type stageResult struct {
	name   string
	score  float64
	weight float64
	ran    bool
	note   string
}

// runPipeline executes the stages in order.  Skipped stages are recorded
// with ran=false so combineScores can renormalize over the rest.
func runPipeline(ctx context.Context, stages []stage) []stageResult {
	results := make([]stageResult, 0, len(stages))
	for _, s := range stages {
		r := stageResult{name: s.name, weight: s.weight}
		if !s.skip {
			r.score, r.note = s.run(ctx)
			r.ran = true
		}
		results = append(results, r)
	}
	return results
}

// combineScores folds stage results into a weighted sum.  Weights of stages
// that actually ran are rescaled to sum to 1, so a disabled or gated-off
// stage does not deflate the final score.  Returns 0.0 when nothing ran.
func combineScores(results []stageResult) float64 {
	var total float64
	for _, r := range results {
		if r.ran {
			total += r.weight
		}
	}
	if total <= 0 {
		return 0.0
	}

	var final float64
	for _, r := range results {
		if r.ran {
			final += (r.weight / total) * r.score
		}
	}
	return final
}

// stageNotes collects the degradation notes of all stages in order.
func stageNotes(results []stageResult) []string {
	var notes []string
	for _, r := range results {
		if r.note != "" {
			notes = append(notes, r.note)
		}
	}
	return notes
}

// formatTrace renders the per-stage scores and the blended score the way the
// evaluation reports present them.
func formatTrace(retrievalLabel string, rule, retrieval, llm, final float64) string {
	return fmt.Sprintf("규칙:%.1f%%, %s:%.1f%%, LLM:%.1f%% → 최종: %.1f%%",
		rule*100, retrievalLabel, retrieval*100, llm*100, final*100)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func joinReasoning(trace string, llmReasoning string, notes []string) string {
	var b strings.Builder
	b.WriteString(trace)
	if llmReasoning != "" {
		b.WriteString("\nLLM 판단: ")
		b.WriteString(llmReasoning)
	}
	for _, n := range notes {
		b.WriteString("\n")
		b.WriteString(n)
	}
	return b.String()
}
