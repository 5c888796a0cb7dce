package classifier

import (
	"regexp"
	"strings"

	"github.com/dtnitsch/docforge/models"
)

// RuleScope controls what a rule is matched against.
type RuleScope int

const (
	ScopeLine  RuleScope = iota // a single line of a prose paragraph
	ScopeBlock                  // a whole prose paragraph
	ScopeCode                   // a fenced code block
)

// MatchInput is what a rule's matcher sees.
type MatchInput struct {
	Text    string // segment or line text
	Lower   string // lowercased Text
	Context string // nearest preceding non-blank prose line, lowercased
	Lang    string // fence language, code scope only
}

// Rule is one entry of the classification table. Rules are data, not an
// if/elif chain, so each is independently testable. Table order is the
// declaration-order tiebreak; Priority is the primary-category tiebreak.
type Rule struct {
	Category   models.Category
	Subtype    string
	Priority   int
	Confidence float64
	Scope      RuleScope
	Match      func(in MatchInput) bool
}

var (
	promptRe   = regexp.MustCompile(`^\s*[$#]\s+\S`)
	usageRe    = regexp.MustCompile(`(?i)^\s*usage:\s*\S`)
	flagLineRe = regexp.MustCompile(`^\s*[a-zA-Z][\w./-]*\s+.*(\s--?[a-zA-Z][\w-]*)`)
	numberedRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	bulletRe   = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
	tableRowRe = regexp.MustCompile(`(?m)^\s*\|.*\|\s*$`)
)

var shellLangs = map[string]struct{}{
	"sh": {}, "bash": {}, "shell": {}, "console": {}, "zsh": {}, "terminal": {},
}

var pitfallHigh = []string{"must not", "do not", "don't", "never ", "⚠"}
var pitfallMedium = []string{"warning:", "caution:", "important:", "attention:", "breaking change", "deprecated"}
var pitfallLow = []string{"note:", "tip:"}

var deferMarkers = []string{
	"see documentation", "see the documentation", "refer to", "advanced usage",
	"for more details", "see advanced", "not documented", "coming soon",
}

// Rules is the ordered classification table. Lower priority wins primary
// category ties; within a priority, higher confidence, then table order.
var Rules = []Rule{
	// Commands
	{models.CategoryCommand, "shell", 1, 0.90, ScopeLine, func(in MatchInput) bool {
		return promptRe.MatchString(in.Text)
	}},
	{models.CategoryCommand, "usage", 1, 0.85, ScopeLine, func(in MatchInput) bool {
		return usageRe.MatchString(in.Text)
	}},
	{models.CategoryCommand, "flags", 1, 0.70, ScopeLine, func(in MatchInput) bool {
		return flagLineRe.MatchString(in.Text) && !strings.Contains(in.Lower, " the ")
	}},
	{models.CategoryCommand, "code", 1, 0.90, ScopeCode, func(in MatchInput) bool {
		if _, ok := shellLangs[in.Lang]; ok {
			return true
		}
		first := firstLine(in.Text)
		return promptRe.MatchString(first) || usageRe.MatchString(first)
	}},

	// Examples
	{models.CategoryExample, "fenced", 2, 0.85, ScopeCode, func(in MatchInput) bool {
		return strings.Contains(in.Context, "example")
	}},
	{models.CategoryExample, "code", 2, 0.60, ScopeCode, func(in MatchInput) bool {
		return true
	}},
	{models.CategoryExample, "invocation", 2, 0.65, ScopeLine, func(in MatchInput) bool {
		return flagLineRe.MatchString(in.Text) && strings.Contains(in.Context, "example")
	}},

	// Workflows
	{models.CategoryWorkflow, "numbered", 3, 0.80, ScopeBlock, func(in MatchInput) bool {
		return len(numberedRe.FindAllString(in.Text, -1)) >= 2
	}},

	// Pitfalls
	{models.CategoryPitfall, "must-not", 4, 0.90, ScopeLine, func(in MatchInput) bool {
		return containsAny(in.Lower, pitfallHigh)
	}},
	{models.CategoryPitfall, "warning", 4, 0.80, ScopeLine, func(in MatchInput) bool {
		return containsAny(in.Lower, pitfallMedium)
	}},
	{models.CategoryPitfall, "note", 4, 0.55, ScopeLine, func(in MatchInput) bool {
		return containsAny(in.Lower, pitfallLow)
	}},

	// References
	{models.CategoryReference, "deferred", 5, 0.70, ScopeLine, func(in MatchInput) bool {
		return containsAny(in.Lower, deferMarkers)
	}},
	{models.CategoryReference, "table", 5, 0.70, ScopeBlock, func(in MatchInput) bool {
		return len(tableRowRe.FindAllString(in.Text, -1)) >= 2
	}},
	{models.CategoryReference, "list", 5, 0.60, ScopeBlock, func(in MatchInput) bool {
		return len(bulletRe.FindAllString(in.Text, -1)) >= 5
	}},
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// matchScope collects labels from every rule of the given scope that
// fires on the input, already sorted for primary selection.
func matchScope(scope RuleScope, in MatchInput) []models.Label {
	var labels []models.Label
	for i, r := range Rules {
		if r.Scope != scope {
			continue
		}
		if r.Match(in) {
			labels = append(labels, models.Label{
				Category:   r.Category,
				Subtype:    r.Subtype,
				Confidence: r.Confidence,
				Priority:   r.Priority,
				RuleIndex:  i,
			})
		}
	}
	sortLabels(labels)
	return labels
}
