package models

// BuriedPitfall is a high-severity pitfall whose checklist item or
// inline warning did not surface within the summary window. Line is the
// offset where it actually appeared, or 0 when it appeared nowhere.
type BuriedPitfall struct {
	Text string `json:"text" yaml:"text"`
	Line int    `json:"line" yaml:"line"`
}

// ValidationReport is the single source of truth for what went wrong in
// a run. It is produced once per run and consumed read-only by the
// packaging step; a failing report never rolls artifacts back.
type ValidationReport struct {
	CoverageOK      bool            `json:"coverage_ok" yaml:"coverage_ok"`
	MissingCommands []string        `json:"missing_commands" yaml:"missing_commands"`
	SurfacingOK     bool            `json:"surfacing_ok" yaml:"surfacing_ok"`
	BuriedPitfalls  []BuriedPitfall `json:"buried_pitfalls" yaml:"buried_pitfalls"`
	Warnings        []string        `json:"warnings" yaml:"warnings"`
}

// OK reports whether both invariants hold.
func (r *ValidationReport) OK() bool {
	return r.CoverageOK && r.SurfacingOK
}
