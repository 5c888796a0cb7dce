package models

// Category classifies a span of documentation text.
type Category string

const (
	CategoryCommand      Category = "command"
	CategoryWorkflow     Category = "workflow"
	CategoryPitfall      Category = "pitfall"
	CategoryExample      Category = "example"
	CategoryReference    Category = "reference"
	CategoryUnclassified Category = "unclassified"
)

// Provenance records where a span's text came from.
const (
	ProvenanceDoc      = "doc"
	ProvenanceResearch = "research"
)

// Label is one category assignment on a span. A span may carry several
// (a command inside a warning block is both command and pitfall).
type Label struct {
	Category   Category `yaml:"category" json:"category"`
	Subtype    string   `yaml:"subtype,omitempty" json:"subtype,omitempty"`
	Confidence float64  `yaml:"confidence" json:"confidence"`
	Priority   int      `yaml:"-" json:"-"` // rule priority, lower wins ties
	RuleIndex  int      `yaml:"-" json:"-"` // declaration order, final tiebreak
}

// Span is a contiguous classified region of one page. Spans are write-once:
// re-classification produces new spans, it never edits existing ones.
type Span struct {
	ID         int      `yaml:"id" json:"id"`
	PageID     string   `yaml:"page_id" json:"page_id"`
	Start      int      `yaml:"start" json:"start"` // byte offset in page text
	End        int      `yaml:"end" json:"end"`
	Line       int      `yaml:"line" json:"line"` // 1-based first line
	Text       string   `yaml:"text" json:"text"`
	Labels     []Label  `yaml:"labels" json:"labels"` // sorted, primary first
	Provenance string   `yaml:"provenance" json:"provenance"`
}

// Primary returns the winning label. Labels are sorted at classification
// time by rule priority, then confidence, then declaration order, so the
// head of the slice is always the primary.
func (s *Span) Primary() Label {
	if len(s.Labels) == 0 {
		return Label{Category: CategoryUnclassified}
	}
	return s.Labels[0]
}

// Has reports whether any label carries the given category.
func (s *Span) Has(cat Category) bool {
	for _, l := range s.Labels {
		if l.Category == cat {
			return true
		}
	}
	return false
}

// Confidence returns the confidence of the first label with the given
// category, or 0 if the span does not carry it.
func (s *Span) Confidence(cat Category) float64 {
	for _, l := range s.Labels {
		if l.Category == cat {
			return l.Confidence
		}
	}
	return 0
}

// BelowFloor reports whether every label on the span scores under the
// configured confidence floor.
func (s *Span) BelowFloor(floor float64) bool {
	for _, l := range s.Labels {
		if l.Confidence >= floor {
			return false
		}
	}
	return true
}
