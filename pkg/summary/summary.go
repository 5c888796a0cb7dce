// Package summary renders the run's human-facing summary artifact. The
// safety checklist deliberately sits at the top: the surfacing invariant
// requires high-severity pitfalls inside the first summary window.
package summary

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/docforge/models"
	"github.com/dtnitsch/docforge/pkg/analytics"
	"github.com/dtnitsch/docforge/pkg/detector"
)

const topKeywordCount = 15

// Data is everything the summary needs, assembled by the pipeline.
type Data struct {
	Detection  detector.Result
	Corpus     *models.Corpus
	Spans      []*models.Span
	Clusters   []*models.Cluster
	Templates  []*models.Template
	Guardrails []*models.Guardrail
	Gaps       []*models.Gap
	Warnings   []string
}

// Render produces the SUMMARY.md content.
func Render(d Data) string {
	var sb strings.Builder

	name := toolName(d)
	fmt.Fprintf(&sb, "# %s\n\n", name)
	fmt.Fprintf(&sb, "Generated skill summary. Doc type: %s (confidence %.0f%%).\n\n",
		d.Detection.DocType, d.Detection.Confidence*100)

	writeChecklist(&sb, d.Guardrails)
	writeTemplates(&sb, d.Templates)
	writeWorkflows(&sb, d.Spans)
	writeReferences(&sb, d.Spans)
	writeKeywords(&sb, d.Corpus)
	writeGaps(&sb, d.Gaps)
	writeWarnings(&sb, d.Warnings)

	return sb.String()
}

// toolName guesses the subject's name from the most common command word.
func toolName(d Data) string {
	counts := make(map[string]int)
	var order []string
	for _, c := range d.Clusters {
		if c.Category != models.CategoryCommand {
			continue
		}
		word := strings.Fields(c.Signature)
		if len(word) == 0 {
			continue
		}
		if counts[word[0]] == 0 {
			order = append(order, word[0])
		}
		counts[word[0]] += len(c.Members)
	}
	best, bestCount := "", 0
	for _, w := range order {
		if counts[w] > bestCount {
			best, bestCount = w, counts[w]
		}
	}
	if best == "" {
		return "Documentation summary"
	}
	return best
}

func writeChecklist(sb *strings.Builder, guardrails []*models.Guardrail) {
	sb.WriteString("## Safety checklist\n\n")

	wrote := false
	// High severity first so it survives even a tiny summary window.
	for _, sev := range []models.Severity{models.SeverityHigh, models.SeverityMedium} {
		for _, g := range guardrails {
			if g.Severity != sev {
				continue
			}
			switch g.Kind {
			case models.GuardrailChecklistItem:
				fmt.Fprintf(sb, "- [ ] (%s) %s\n", g.Severity, g.Text)
				wrote = true
			case models.GuardrailInlineWarning:
				fmt.Fprintf(sb, "- (%s) %s\n", g.Severity, g.Text)
				wrote = true
			}
		}
	}
	if !wrote {
		sb.WriteString("No pitfalls documented.\n")
	}
	sb.WriteString("\n")
}

func writeTemplates(sb *strings.Builder, templates []*models.Template) {
	sb.WriteString("## Templates\n\n")
	if len(templates) == 0 {
		sb.WriteString("No templates synthesized.\n\n")
		return
	}
	for _, t := range templates {
		status := ""
		if t.Unverified {
			status = " (unverified generalization)"
		}
		fmt.Fprintf(sb, "- `templates/%s`%s", t.FileName(), status)
		if len(t.Placeholders) > 0 {
			var names []string
			for _, p := range t.Placeholders {
				names = append(names, fmt.Sprintf("%s=%s", p.Name, p.Default))
			}
			fmt.Fprintf(sb, " — placeholders: %s", strings.Join(names, ", "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func writeWorkflows(sb *strings.Builder, spans []*models.Span) {
	var workflows []*models.Span
	for _, s := range spans {
		if s.Primary().Category == models.CategoryWorkflow {
			workflows = append(workflows, s)
		}
	}
	if len(workflows) == 0 {
		return
	}
	sb.WriteString("## Workflows\n\n")
	for _, w := range workflows {
		sb.WriteString(w.Text)
		sb.WriteString("\n\n")
	}
}

func writeReferences(sb *strings.Builder, spans []*models.Span) {
	var refs []*models.Span
	for _, s := range spans {
		if s.Primary().Category == models.CategoryReference {
			refs = append(refs, s)
		}
	}
	if len(refs) == 0 {
		return
	}
	sb.WriteString("## References\n\n")
	for _, r := range refs {
		fmt.Fprintf(sb, "- %s (page %s, line %d)\n", firstLineOf(r.Text), r.PageID, r.Line)
	}
	sb.WriteString("\n")
}

func writeKeywords(sb *strings.Builder, corpus *models.Corpus) {
	if corpus == nil {
		return
	}
	keywords := analytics.TopKeywords(analytics.WordFrequency(corpus.PlainText()), topKeywordCount)
	if len(keywords) == 0 {
		return
	}
	sb.WriteString("## Top keywords\n\n")
	sb.WriteString(strings.Join(keywords, ", "))
	sb.WriteString("\n\n")
}

func writeGaps(sb *strings.Builder, gaps []*models.Gap) {
	if len(gaps) == 0 {
		return
	}
	sb.WriteString("## Gaps\n\n")
	for _, g := range gaps {
		fmt.Fprintf(sb, "- [%s] %s: %s\n", g.Status, g.Kind, g.Query)
		if g.Finding != nil && g.Finding.Citation != "" {
			fmt.Fprintf(sb, "  - source: %s\n", g.Finding.Citation)
		}
	}
	sb.WriteString("\n")
}

func writeWarnings(sb *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	sb.WriteString("## Warnings\n\n")
	for _, w := range warnings {
		fmt.Fprintf(sb, "- %s\n", w)
	}
	sb.WriteString("\n")
}

func firstLineOf(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
