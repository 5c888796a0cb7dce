// Package validate checks the finished artifact set against the
// coverage and surfacing invariants. It is a pure reader: it never
// mutates artifacts and never performs I/O.
package validate

import (
	"strconv"
	"strings"

	"github.com/dtnitsch/docforge/models"
	"github.com/dtnitsch/docforge/pkg/guardrail"
)

// Input is the full artifact set of one run.
type Input struct {
	Spans         []*models.Span
	Clusters      []*models.Cluster
	Templates     []*models.Template
	Guardrails    []*models.Guardrail
	Gaps          []*models.Gap
	Summary       string
	SummaryWindow int // lines; default models.DefaultSummaryWindow
	Warnings      []string
}

// Check computes the validation report. Coverage: every command cluster
// has a template or a reference entry naming its command. Surfacing:
// every high-severity pitfall's checklist item or inline warning appears
// within the summary window.
func Check(in Input) *models.ValidationReport {
	report := &models.ValidationReport{
		CoverageOK:      true,
		SurfacingOK:     true,
		MissingCommands: []string{},
		BuriedPitfalls:  []models.BuriedPitfall{},
		Warnings:        append([]string{}, in.Warnings...),
	}

	checkCoverage(in, report)
	checkSurfacing(in, report)

	// Nothing is silently dropped: unclassified spans and unresolved
	// gaps all show up in the report.
	for _, s := range in.Spans {
		if s.Primary().Category == models.CategoryUnclassified {
			report.Warnings = append(report.Warnings,
				"unclassified span: page "+s.PageID+" line "+strconv.Itoa(s.Line))
		}
	}
	for _, g := range in.Gaps {
		if g.Status == models.GapUnresolved {
			report.Warnings = append(report.Warnings, "unresolved gap: "+g.Query)
		}
	}

	return report
}

func checkCoverage(in Input, report *models.ValidationReport) {
	templatesBySig := make(map[string]bool)
	templatesByCluster := make(map[int]bool)
	for _, t := range in.Templates {
		templatesBySig[t.Signature] = true
		templatesByCluster[t.ClusterID] = true
	}

	var referenceText strings.Builder
	for _, s := range in.Spans {
		if s.Has(models.CategoryReference) {
			referenceText.WriteString(strings.ToLower(s.Text))
			referenceText.WriteString("\n")
		}
	}
	refs := referenceText.String()

	seen := make(map[string]bool)
	for _, c := range in.Clusters {
		if c.Category != models.CategoryCommand {
			continue
		}
		if templatesByCluster[c.ID] || templatesBySig[c.Signature] {
			continue
		}
		word := strings.Fields(c.Signature)
		if len(word) == 0 {
			continue
		}
		command := word[0]
		if strings.Contains(refs, strings.ToLower(command)) {
			continue
		}
		if !seen[command] {
			seen[command] = true
			report.MissingCommands = append(report.MissingCommands, command)
		}
	}

	report.CoverageOK = len(report.MissingCommands) == 0
}

func checkSurfacing(in Input, report *models.ValidationReport) {
	window := in.SummaryWindow
	if window <= 0 {
		window = models.DefaultSummaryWindow
	}
	lines := strings.Split(in.Summary, "\n")

	surfaced := make(map[int]int) // pitfall span ID -> 1-based summary line
	for _, g := range in.Guardrails {
		if g.Kind != models.GuardrailChecklistItem && g.Kind != models.GuardrailInlineWarning {
			continue
		}
		line := findLine(lines, g.Text)
		for _, id := range g.SourceSpans {
			if prev, ok := surfaced[id]; !ok || (line > 0 && (prev == 0 || line < prev)) {
				surfaced[id] = line
			}
		}
	}

	for _, s := range in.Spans {
		if !s.Has(models.CategoryPitfall) {
			continue
		}
		if guardrail.SeverityOf(s.Text) != models.SeverityHigh {
			continue
		}
		line := surfaced[s.ID]
		if line == 0 || line > window {
			report.BuriedPitfalls = append(report.BuriedPitfalls, models.BuriedPitfall{
				Text: strings.Join(strings.Fields(s.Text), " "),
				Line: line,
			})
		}
	}

	report.SurfacingOK = len(report.BuriedPitfalls) == 0
}

// findLine returns the 1-based line number where text occurs, or 0.
func findLine(lines []string, text string) int {
	if text == "" {
		return 0
	}
	for i, l := range lines {
		if strings.Contains(l, text) {
			return i + 1
		}
	}
	return 0
}
