// Package guardrail derives layered safety artifacts from pitfall spans.
// Guardrails decorate templates and stand alone in the output; they are
// strictly additive and never block synthesis.
package guardrail

import (
	"regexp"
	"strings"

	"github.com/dtnitsch/docforge/models"
)

var highMarkers = []string{"must not", "do not", "don't", "never ", "⚠", "critical", "breaking"}
var mediumMarkers = []string{"warning:", "caution:", "important:", "attention:", "error:", "deprecated"}
var lowMarkers = []string{"note:", "tip:"}

// SeverityOf grades a pitfall span by its strongest marker.
func SeverityOf(text string) models.Severity {
	lower := strings.ToLower(text)
	for _, m := range highMarkers {
		if strings.Contains(lower, m) {
			return models.SeverityHigh
		}
	}
	for _, m := range mediumMarkers {
		if strings.Contains(lower, m) {
			return models.SeverityMedium
		}
	}
	for _, m := range lowMarkers {
		if strings.Contains(lower, m) {
			return models.SeverityLow
		}
	}
	return models.SeverityMedium
}

var (
	envVarRe      = regexp.MustCompile(`\$\{?([A-Z][A-Z0-9_]{2,})\}?|\b([A-Z][A-Z0-9_]{4,})\b`)
	pathRe        = regexp.MustCompile(`(?:^|\s)(/[\w.~-]+(?:/[\w.~-]+)+)`)
	runBeforeRe   = regexp.MustCompile("(?i)run\\s+`?([a-zA-Z][\\w ./-]*?)`?\\s+(?:before|first)")
	requiresCmdRe = regexp.MustCompile("(?i)requires?\\s+`?([a-zA-Z][\\w.-]+)`?")
)

// Generate produces the guardrail set for every pitfall span: a
// checklist item for medium and high severity, an inline warning for
// pitfalls that sit next to a template's source, a preflight check when
// a high-severity pitfall names a checkable precondition, and a setup
// step when the remediation is itself a command.
func Generate(spans []*models.Span, templates []*models.Template) []*models.Guardrail {
	var out []*models.Guardrail

	templatePages := make(map[string][]*models.Template)
	spanByID := spanIndex(spans)
	for _, t := range templates {
		for _, id := range t.SourceSpans {
			if s, ok := spanByID[id]; ok {
				templatePages[s.PageID] = append(templatePages[s.PageID], t)
			}
		}
	}

	for _, s := range spans {
		if !s.Has(models.CategoryPitfall) {
			continue
		}
		severity := SeverityOf(s.Text)
		text := strings.Join(strings.Fields(s.Text), " ")

		if severity != models.SeverityLow {
			out = append(out, &models.Guardrail{
				Kind:        models.GuardrailChecklistItem,
				Severity:    severity,
				Text:        text,
				SourceSpans: []int{s.ID},
				PageID:      s.PageID,
				Line:        s.Line,
			})
		}

		if hasAdjacentTemplate(s, templatePages[s.PageID], spanByID) {
			out = append(out, &models.Guardrail{
				Kind:        models.GuardrailInlineWarning,
				Severity:    severity,
				Text:        text,
				SourceSpans: []int{s.ID},
				PageID:      s.PageID,
				Line:        s.Line,
			})
		}

		if severity == models.SeverityHigh {
			if check, remediation, ok := preflightFor(s.Text); ok {
				out = append(out, &models.Guardrail{
					Kind:        models.GuardrailPreflightCheck,
					Severity:    severity,
					Text:        text,
					Check:       check,
					Remediation: remediation,
					SourceSpans: []int{s.ID},
					PageID:      s.PageID,
					Line:        s.Line,
				})
			}
		}

		if cmd, ok := setupCommandFor(s.Text); ok {
			out = append(out, &models.Guardrail{
				Kind:        models.GuardrailSetupStep,
				Severity:    severity,
				Text:        text,
				Remediation: cmd,
				SourceSpans: []int{s.ID},
				PageID:      s.PageID,
				Line:        s.Line,
			})
		}
	}

	return out
}

// preflightFor extracts a checkable precondition: an environment
// variable, a file path, or a required prior command. Pitfalls without
// one get no preflight; checking nothing is worse than saying so.
func preflightFor(text string) (check, remediation string, ok bool) {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "env") || strings.Contains(text, "$") {
		if m := envVarRe.FindStringSubmatch(text); m != nil {
			name := m[1]
			if name == "" {
				name = m[2]
			}
			return `[ -n "$` + name + `" ]`, "set the " + name + " environment variable", true
		}
	}

	if m := pathRe.FindStringSubmatch(text); m != nil {
		return `[ -e "` + m[1] + `" ]`, "ensure " + m[1] + " exists", true
	}

	if m := runBeforeRe.FindStringSubmatch(text); m != nil {
		cmd := strings.Fields(m[1])[0]
		return "command -v " + cmd + " >/dev/null", "run `" + strings.TrimSpace(m[1]) + "` first", true
	}
	if m := requiresCmdRe.FindStringSubmatch(text); m != nil {
		return "command -v " + m[1] + " >/dev/null", "install " + m[1], true
	}

	return "", "", false
}

// setupCommandFor recognizes remediations that are themselves idempotent
// commands ("run X before Y").
func setupCommandFor(text string) (string, bool) {
	if m := runBeforeRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

func hasAdjacentTemplate(pitfall *models.Span, templates []*models.Template, spanByID map[int]*models.Span) bool {
	const adjacency = 3
	for _, t := range templates {
		for _, id := range t.SourceSpans {
			s, ok := spanByID[id]
			if !ok || s.PageID != pitfall.PageID {
				continue
			}
			delta := s.Line - pitfall.Line
			if delta < 0 {
				delta = -delta
			}
			if delta <= adjacency {
				return true
			}
		}
	}
	return false
}

func spanIndex(spans []*models.Span) map[int]*models.Span {
	idx := make(map[int]*models.Span, len(spans))
	for _, s := range spans {
		idx[s.ID] = s
	}
	return idx
}
