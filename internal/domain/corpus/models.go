// Package corpus holds the legal reference material the evaluation pipeline
// retrieves against: statute articles and precedent cases, loaded from YAML
// datasets and embedded into the vector index.
package corpus

import "strings"

// Category labels the source type of a corpus record.  The same values are
// written into the vector-index metadata and used as search filters.
const (
	CategoryPatentLaw = "특허법"
	CategoryCivilLaw  = "민법"
	CategoryPrecedent = "판례"
)

// StatuteRecord is one law article.
type StatuteRecord struct {
	Number   string `yaml:"number"`   // "제29조"
	Title    string `yaml:"title"`    // "특허요건"
	Content  string `yaml:"content"`  // full article text
	Category string `yaml:"category"` // CategoryPatentLaw or CategoryCivilLaw
}

// ID returns the stable index key for the statute.
func (s StatuteRecord) ID() string {
	return s.Category + ":" + s.Number
}

// EmbeddingText is the text the statute is embedded under.
func (s StatuteRecord) EmbeddingText() string {
	return strings.TrimSpace(s.Number + " " + s.Title + " " + s.Content)
}

// Valid reports whether the record carries enough data to index.
func (s StatuteRecord) Valid() bool {
	return s.Number != "" && strings.TrimSpace(s.Content) != ""
}

// PrecedentRecord is one court decision.
type PrecedentRecord struct {
	CaseNumber string `yaml:"case_number"` // "2020후1234"
	Court      string `yaml:"court"`       // "대법원", "특허법원"
	CaseType   string `yaml:"case_type"`   // "신규성", "진보성"
	Summary    string `yaml:"summary"`
	Outcome    string `yaml:"outcome"` // "인용", "기각", "파기환송"
}

// ID returns the stable index key for the precedent.
func (p PrecedentRecord) ID() string {
	return CategoryPrecedent + ":" + p.CaseNumber
}

// EmbeddingText is the text the precedent is embedded under.
func (p PrecedentRecord) EmbeddingText() string {
	return strings.TrimSpace(p.CaseType + " " + p.Summary)
}

// Valid reports whether the record carries enough data to index.
func (p PrecedentRecord) Valid() bool {
	return p.CaseNumber != "" && strings.TrimSpace(p.Summary) != ""
}

// Dataset is the on-disk corpus layout.
type Dataset struct {
	Statutes   []StatuteRecord   `yaml:"statutes"`
	Precedents []PrecedentRecord `yaml:"precedents"`
}

// Size returns the total record count.
func (d *Dataset) Size() int {
	return len(d.Statutes) + len(d.Precedents)
}
