// Package claimparse decomposes Korean patent claims into semantic components
// and extracts normalized technical feature sets for similarity comparison.
package claimparse

import "strings"

// ============================================================================
// Synonym Dictionary
// ============================================================================

// synonymGroup binds a canonical concept tag to its known surface forms.
type synonymGroup struct {
	canonical string
	surfaces  map[string]struct{}
}

// SynonymDictionary maps surface terms from Korean patent text to canonical
// concept tags.  Lookup is first-match-wins over the ordered group list, so
// a surface form listed under two tags always resolves to the earlier one.
type SynonymDictionary struct {
	groups []synonymGroup
}

func newGroup(canonical string, surfaces ...string) synonymGroup {
	set := make(map[string]struct{}, len(surfaces))
	for _, s := range surfaces {
		set[s] = struct{}{}
	}
	return synonymGroup{canonical: canonical, surfaces: set}
}

// NewSynonymDictionary builds the dictionary with the built-in terminology
// table covering the component vocabulary that appears in claim text.
func NewSynonymDictionary() *SynonymDictionary {
	return &SynonymDictionary{
		groups: []synonymGroup{
			// Display terms
			newGroup("표시_장치",
				"display", "displays", "표시장치", "디스플레이", "화면",
				"모니터", "판넬", "lcd", "led", "oled"),
			// Storage terms
			newGroup("저장_장치",
				"storage", "메모리", "스토리지", "저장부", "저장소",
				"hdd", "ssd", "eeprom"),
			// Processing terms
			newGroup("처리_장치",
				"processor", "processing", "프로세서", "처리부", "cpu",
				"제어부", "연산부"),
			// Communication terms
			newGroup("통신_장치",
				"communication", "통신부", "통신 인터페이스", "송수신부",
				"모뎀", "라우터", "게이트웨이"),
			// Sensor terms
			newGroup("센서",
				"sensor", "감지", "감지기", "검출기", "감센", "디텍터"),
			// Connection terms
			newGroup("연결",
				"connection", "연결부", "연결 수단", "접속", "결합",
				"커넥터", "케이블"),
			// Control terms
			newGroup("제어",
				"control", "제어부", "제어 수단", "조정", "관리", "컨트롤러"),
			// Output terms
			newGroup("출력",
				"output", "출력 수단", "표시", "표현", "전송"),
			// Input terms
			newGroup("입력",
				"input", "입력 수단", "수신", "감지", "검출"),
		},
	}
}

// CanonicalForm returns the canonical tag for term, or the term itself when
// no group contains it.  Matching is case-insensitive and ignores leading and
// trailing whitespace; embedded spaces and underscores are interchangeable.
func (d *SynonymDictionary) CanonicalForm(term string) string {
	lowered := strings.ToLower(strings.TrimSpace(term))
	underscored := strings.ReplaceAll(lowered, " ", "_")

	for _, g := range d.groups {
		if _, ok := g.surfaces[lowered]; ok {
			return g.canonical
		}
		for s := range g.surfaces {
			if strings.ReplaceAll(s, " ", "_") == underscored {
				return g.canonical
			}
		}
	}
	return term
}

// AreSynonyms reports whether two terms resolve to the same canonical tag.
func (d *SynonymDictionary) AreSynonyms(a, b string) bool {
	return d.CanonicalForm(a) == d.CanonicalForm(b)
}
