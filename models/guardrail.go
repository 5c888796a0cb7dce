package models

// GuardrailKind is one of the four safety-artifact kinds derived from a
// pitfall span.
type GuardrailKind string

const (
	GuardrailInlineWarning  GuardrailKind = "inline_warning"
	GuardrailPreflightCheck GuardrailKind = "preflight_check"
	GuardrailChecklistItem  GuardrailKind = "checklist_item"
	GuardrailSetupStep      GuardrailKind = "setup_step"
)

// Severity of a pitfall, decided by its matcher subtype.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Guardrail is a single safety artifact. Guardrails decorate templates
// and stand alone in the guardrails/ output; they never block synthesis.
type Guardrail struct {
	Kind        GuardrailKind `yaml:"kind" json:"kind"`
	Severity    Severity      `yaml:"severity" json:"severity"`
	Text        string        `yaml:"text" json:"text"`
	Check       string        `yaml:"check,omitempty" json:"check,omitempty"`             // preflight: shell predicate
	Remediation string        `yaml:"remediation,omitempty" json:"remediation,omitempty"` // preflight/setup: fix text or command
	SourceSpans []int         `yaml:"source_spans" json:"source_spans"`
	PageID      string        `yaml:"page_id" json:"page_id"`
	Line        int           `yaml:"line" json:"line"`
}
