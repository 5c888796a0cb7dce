package models

// Cluster groups same-category spans with an identical normalized
// signature. Clusters are recomputed from scratch on every aggregation
// pass, never mutated incrementally.
type Cluster struct {
	ID        int      `yaml:"id" json:"id"`
	Category  Category `yaml:"category" json:"category"`
	Signature string   `yaml:"signature" json:"signature"`
	Members   []*Span  `yaml:"-" json:"-"`
	MemberIDs []int    `yaml:"member_ids" json:"member_ids"`
}

// Representative returns the canonical example for the cluster: the
// first member in (page, offset) order.
func (c *Cluster) Representative() *Span {
	if len(c.Members) == 0 {
		return nil
	}
	return c.Members[0]
}

// GapStatus tracks the lifecycle of a detected gap.
type GapStatus string

const (
	GapOpen       GapStatus = "open"
	GapResearched GapStatus = "researched"
	GapUnresolved GapStatus = "unresolved"
)

// GapKind names why a gap was raised.
type GapKind string

const (
	GapLowConfidence     GapKind = "low_confidence"
	GapDeferredReference GapKind = "deferred_reference"
	GapSynthesisFailure  GapKind = "synthesis_alignment"
	GapPotentialDup      GapKind = "potential_duplicate"
)

// Gap is a span or cluster whose classification or generalization could
// not be resolved locally. Gaps are eligible for external research.
type Gap struct {
	ID        int       `yaml:"id" json:"id"`
	Kind      GapKind   `yaml:"kind" json:"kind"`
	Status    GapStatus `yaml:"status" json:"status"`
	SpanID    int       `yaml:"span_id,omitempty" json:"span_id,omitempty"`
	ClusterID int       `yaml:"cluster_id,omitempty" json:"cluster_id,omitempty"`
	Query     string    `yaml:"query" json:"query"`
	Detail    string    `yaml:"detail,omitempty" json:"detail,omitempty"`
	Finding   *Finding  `yaml:"finding,omitempty" json:"finding,omitempty"`
}

// Applicability of a research finding.
const (
	FindingGeneral      = "general"
	FindingTaskSpecific = "task_specific"
)

// Finding is the answer returned by the research collaborator for one
// gap query. Findings re-enter the span set as synthetic research spans.
type Finding struct {
	Query         string `yaml:"query" json:"query"`
	Answer        string `yaml:"answer" json:"answer"`
	Citation      string `yaml:"citation,omitempty" json:"citation,omitempty"`
	Applicability string `yaml:"applicability" json:"applicability"`
}
