// Package judgment parses structured verdicts out of free-form LLM responses.
// Generation models frequently wrap their JSON in prose or emit single-quoted
// pseudo-JSON; the parsers here tolerate both so evaluators only deal with a
// typed judgment or a single parse-failure error.
package judgment

import (
	"encoding/json"
	"strings"

	"github.com/turtacn/PatentGym/pkg/errors"
)

// ============================================================================
// Judgment Types
// ============================================================================

// NoveltyJudgment is the verdict an LLM returns for a novelty prompt.
type NoveltyJudgment struct {
	IsNovel    bool    `json:"is_novel"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// InventiveStepJudgment is the verdict an LLM returns for an inventive-step
// prompt.
type InventiveStepJudgment struct {
	HasInventiveStep bool    `json:"has_inventive_step"`
	Confidence       float64 `json:"confidence"`
	Reasoning        string  `json:"reasoning"`
}

// ============================================================================
// Lenient Extraction
// ============================================================================

// ExtractObject returns the substring between the first "{" and the last "}"
// of text, with single quotes substituted by double quotes so that
// single-quoted pseudo-JSON becomes parseable.  It fails with
// JudgmentParseFailed when no such span exists.
func ExtractObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", errors.New(errors.ErrCodeJudgmentParseFailed, "no JSON object found in response")
	}
	return strings.ReplaceAll(text[start:end+1], "'", `"`), nil
}

// clamp bounds a confidence value into [0, 1].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ParseNovelty extracts and decodes a NoveltyJudgment from raw LLM output.
// Confidence is clamped into [0, 1].
func ParseNovelty(text string) (NoveltyJudgment, error) {
	var j NoveltyJudgment

	obj, err := ExtractObject(text)
	if err != nil {
		return j, err
	}
	if err := json.Unmarshal([]byte(obj), &j); err != nil {
		return NoveltyJudgment{}, errors.Wrap(err, errors.ErrCodeJudgmentParseFailed, "response is not valid JSON")
	}
	j.Confidence = clamp(j.Confidence)
	return j, nil
}

// ParseInventiveStep extracts and decodes an InventiveStepJudgment from raw
// LLM output.  Confidence is clamped into [0, 1].
func ParseInventiveStep(text string) (InventiveStepJudgment, error) {
	var j InventiveStepJudgment

	obj, err := ExtractObject(text)
	if err != nil {
		return j, err
	}
	if err := json.Unmarshal([]byte(obj), &j); err != nil {
		return InventiveStepJudgment{}, errors.Wrap(err, errors.ErrCodeJudgmentParseFailed, "response is not valid JSON")
	}
	j.Confidence = clamp(j.Confidence)
	return j, nil
}
