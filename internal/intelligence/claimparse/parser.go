package claimparse

import (
	"regexp"
	"strings"
)

// ============================================================================
// Component Types
// ============================================================================

// ComponentType identifies one structural segment of a claim.
type ComponentType string

const (
	ComponentPreamble       ComponentType = "preamble"
	ComponentBody           ComponentType = "body"
	ComponentCharacterizing ComponentType = "characterizing_part"
)

// ClaimComponent holds the feature sets extracted from one claim segment.
type ClaimComponent struct {
	ComponentType      ComponentType
	TechnicalFeatures  []string
	FunctionalFeatures []string
	StructuralElements []string
}

// ParsedClaim is the result of decomposing a single claim.  The three text
// spans are independently-computed heuristics over the same string and may
// overlap; they are not a partition of the original text.
type ParsedClaim struct {
	OriginalText       string
	Preamble           string
	Body               string
	CharacterizingPart string

	Components         []ClaimComponent
	AllFeatures        map[string]struct{}
	NormalizedFeatures map[string]struct{}
}

// ============================================================================
// Marker Vocabulary
// ============================================================================

// Claim structure markers in Korean patent drafting convention.
var (
	bodyMarkers           = []string{"다음", "이하", "다음과 같은"}
	characterizingMarkers = []string{"특징부", "특징은", "특이한 점", "포함"}
)

// sentenceTerminators used by the preamble fallback.
var sentenceTerminators = []string{"。", "."}

// preambleFallbackRunes bounds the preamble when the text carries neither a
// body marker nor a sentence terminator.
const preambleFallbackRunes = 100

// ============================================================================
// Feature Extraction Patterns
// ============================================================================

// Korean noun-suffix classes scanned in order; the trailing pattern is a
// greedy fallback for any 2+ character Korean word.
var nounPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[가-힣]+장치`),
	regexp.MustCompile(`[가-힣]+부`),
	regexp.MustCompile(`[가-힣]+기`),
	regexp.MustCompile(`[가-힣]+막`),
	regexp.MustCompile(`[가-힣]+체`),
	regexp.MustCompile(`[가-힣]+선`),
	regexp.MustCompile(`[가-힣]+실`),
	regexp.MustCompile(`[가-힣]+판`),
	regexp.MustCompile(`[가-힣]+화면`),
	regexp.MustCompile(`[가-힣]{2,}`),
}

var (
	englishTermPattern = regexp.MustCompile(`(?i)\b(processor|memory|sensor|device|module|controller|interface|display|LCD|LED|SSD|HDD|IoT)\b`)
	acronymPattern     = regexp.MustCompile(`[A-Z]{2,}`)
)

var verbPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([가-힣]+)(한다|하여|하고|함)`),
	regexp.MustCompile(`([가-힣]+)(에 의해|에 의하여)`),
}

var structuralPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([가-힣]+)로 된`),
	regexp.MustCompile(`([가-힣]+)로 구성`),
	regexp.MustCompile(`([가-힣]+)과 ([가-힣]+)의 결합`),
}

// ============================================================================
// ClaimComponentParser
// ============================================================================

// ClaimComponentParser splits claim text into preamble, body, and
// characterizing part, then extracts per-segment feature sets.  It is
// stateless after construction and safe for concurrent use.
type ClaimComponentParser struct {
	synonyms *SynonymDictionary
}

// NewClaimComponentParser constructs a parser with the built-in synonym
// dictionary.
func NewClaimComponentParser() *ClaimComponentParser {
	return &ClaimComponentParser{synonyms: NewSynonymDictionary()}
}

// Synonyms exposes the parser's dictionary for callers that normalize terms
// outside a full parse.
func (p *ClaimComponentParser) Synonyms() *SynonymDictionary {
	return p.synonyms
}

// ParseClaim decomposes claimText and extracts its feature sets.  Empty or
// malformed text degrades to empty spans and feature sets; ParseClaim never
// fails.
func (p *ClaimComponentParser) ParseClaim(claimText string) *ParsedClaim {
	text := strings.TrimSpace(claimText)

	preamble, rest := p.extractPreamble(text)
	body := p.extractBody(rest)
	characterizing := p.extractCharacterizing(text)

	components := []ClaimComponent{
		p.parseComponent(ComponentPreamble, preamble),
		p.parseComponent(ComponentBody, body),
		p.parseComponent(ComponentCharacterizing, characterizing),
	}

	// all_features aggregates technical features only; functional and
	// structural features stay per-component.
	all := make(map[string]struct{})
	for _, c := range components {
		for _, f := range c.TechnicalFeatures {
			all[f] = struct{}{}
		}
	}

	normalized := make(map[string]struct{}, len(all))
	for f := range all {
		normalized[p.synonyms.CanonicalForm(f)] = struct{}{}
	}

	return &ParsedClaim{
		OriginalText:       text,
		Preamble:           preamble,
		Body:               body,
		CharacterizingPart: characterizing,
		Components:         components,
		AllFeatures:        all,
		NormalizedFeatures: normalized,
	}
}

// earliestIndex returns the smallest byte index at which any of the markers
// occurs in text, or -1 when none occur.
func earliestIndex(text string, markers []string) int {
	best := -1
	for _, m := range markers {
		if idx := strings.Index(text, m); idx != -1 && (best == -1 || idx < best) {
			best = idx
		}
	}
	return best
}

// latestIndex returns the largest byte index at which any of the markers
// occurs in text, or -1 when none occur.
func latestIndex(text string, markers []string) int {
	best := -1
	for _, m := range markers {
		if idx := strings.LastIndex(text, m); idx > best {
			best = idx
		}
	}
	return best
}

// extractPreamble returns the preamble span and the remainder of the text
// after it.  The preamble ends at the earliest body marker; without one it
// falls back to the first sentence, then to the first 100 characters.
func (p *ClaimComponentParser) extractPreamble(text string) (preamble, rest string) {
	if idx := earliestIndex(text, bodyMarkers); idx != -1 {
		return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx:])
	}
	if idx := earliestIndex(text, sentenceTerminators); idx != -1 {
		return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx:])
	}
	runes := []rune(text)
	if len(runes) <= preambleFallbackRunes {
		return text, ""
	}
	return string(runes[:preambleFallbackRunes]), strings.TrimSpace(string(runes[preambleFallbackRunes:]))
}

// extractBody returns the body span from the text remaining after the
// preamble.  The body ends at the earliest characterizing marker; without one
// it falls back to the first half of the remainder.
func (p *ClaimComponentParser) extractBody(rest string) string {
	if idx := earliestIndex(rest, characterizingMarkers); idx != -1 {
		return strings.TrimSpace(rest[:idx])
	}
	runes := []rune(rest)
	return strings.TrimSpace(string(runes[:len(runes)/2]))
}

// extractCharacterizing returns the span from the last characterizing marker
// in the whole text to the end, falling back to the last half of the text.
func (p *ClaimComponentParser) extractCharacterizing(text string) string {
	if idx := latestIndex(text, characterizingMarkers); idx != -1 {
		return strings.TrimSpace(text[idx:])
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[len(runes)/2:]))
}

func (p *ClaimComponentParser) parseComponent(kind ComponentType, text string) ClaimComponent {
	return ClaimComponent{
		ComponentType:      kind,
		TechnicalFeatures:  setToSlice(extractTechnicalFeatures(text)),
		FunctionalFeatures: setToSlice(extractFunctionalFeatures(text)),
		StructuralElements: setToSlice(extractStructuralElements(text)),
	}
}

// extractTechnicalFeatures scans for Korean noun-suffix classes, English
// technical terms, and uppercase acronyms.
func extractTechnicalFeatures(text string) map[string]struct{} {
	features := make(map[string]struct{})

	for _, re := range nounPatterns {
		for _, m := range re.FindAllString(text, -1) {
			if len([]rune(m)) >= 2 {
				features[m] = struct{}{}
			}
		}
	}

	for _, sub := range englishTermPattern.FindAllStringSubmatch(text, -1) {
		features[sub[1]] = struct{}{}
	}
	for _, m := range acronymPattern.FindAllString(text, -1) {
		features[m] = struct{}{}
	}

	return features
}

// extractFunctionalFeatures scans for Korean verb endings and passive-voice
// markers; the captured stem is the feature.
func extractFunctionalFeatures(text string) map[string]struct{} {
	features := make(map[string]struct{})
	for _, re := range verbPatterns {
		for _, sub := range re.FindAllStringSubmatch(text, -1) {
			if sub[1] != "" {
				features[sub[1]] = struct{}{}
			}
		}
	}
	return features
}

// extractStructuralElements scans for material ("made of X") and combination
// ("X and Y combined") constructions.
func extractStructuralElements(text string) map[string]struct{} {
	features := make(map[string]struct{})
	for _, re := range structuralPatterns {
		for _, sub := range re.FindAllStringSubmatch(text, -1) {
			for _, g := range sub[1:] {
				if g != "" {
					features[g] = struct{}{}
				}
			}
		}
	}
	return features
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

// ============================================================================
// Claim Comparison
// ============================================================================

// FeatureVector counts how many raw features in claim.AllFeatures resolve to
// each canonical tag.
func (p *ClaimComponentParser) FeatureVector(claim *ParsedClaim) map[string]int {
	counts := make(map[string]int, len(claim.AllFeatures))
	for f := range claim.AllFeatures {
		counts[p.synonyms.CanonicalForm(f)]++
	}
	return counts
}

// ClaimSimilarity computes the Jaccard index of the normalized feature sets
// of two parsed claims.  An empty feature set on either side yields 0.0;
// 0/0 is defined as 0, not 1.
func (p *ClaimComponentParser) ClaimSimilarity(a, b *ParsedClaim) float64 {
	if a == nil || b == nil || len(a.NormalizedFeatures) == 0 || len(b.NormalizedFeatures) == 0 {
		return 0.0
	}

	intersection := 0
	for f := range a.NormalizedFeatures {
		if _, ok := b.NormalizedFeatures[f]; ok {
			intersection++
		}
	}
	union := len(a.NormalizedFeatures) + len(b.NormalizedFeatures) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
