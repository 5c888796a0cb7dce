// Package detector classifies what kind of tool a documentation corpus
// describes, and sanity-checks the corpus language.
package detector

import (
	"sort"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/docforge/models"
)

// DocType is the detected documentation subject.
type DocType string

const (
	DocTypeCLI       DocType = "cli"
	DocTypeAPI       DocType = "api"
	DocTypeLibrary   DocType = "library"
	DocTypeFramework DocType = "framework"
	DocTypeUnknown   DocType = "unknown"
)

// Result holds detection output plus the signals that drove it.
type Result struct {
	DocType    DocType  `yaml:"doc_type" json:"doc_type"`
	Confidence float64  `yaml:"confidence" json:"confidence"` // winner share of total signal, 0-1
	Reasoning  []string `yaml:"reasoning,omitempty" json:"reasoning,omitempty"`
	Language   string   `yaml:"language,omitempty" json:"language,omitempty"`
}

var cliIndicators = []string{
	"command", "flag", "option", "--", "usage:", "arguments:",
	"cli", "command-line", "terminal", "shell", "bash", "$ ",
}

var apiIndicators = []string{
	"endpoint", "request", "response", "post ", "get ", "put ", "delete ",
	"api", "rest", "http", "json", "authentication", "header",
}

var libraryIndicators = []string{
	"import", "class", "function", "method", "module", "package",
	"install", "pip", "npm", "require",
}

var frameworkIndicators = []string{
	"scaffold", "generate", "project", "create-",
	"framework", "boilerplate", "template", "structure",
}

// Detect scores indicator occurrences across the whole corpus and picks
// the doc type with the highest count. Confidence is the winner's share
// of the total signal. A hint other than "auto" short-circuits detection
// but the language check still runs.
func Detect(c *models.Corpus, hint string) Result {
	res := Result{Language: detectLanguage(c)}

	switch hint {
	case "cli":
		res.DocType, res.Confidence = DocTypeCLI, 1.0
		return res
	case "api":
		res.DocType, res.Confidence = DocTypeAPI, 1.0
		return res
	case "library":
		res.DocType, res.Confidence = DocTypeLibrary, 1.0
		return res
	}

	content := strings.ToLower(c.PlainText())

	type scored struct {
		docType DocType
		count   int
	}
	scores := []scored{
		{DocTypeCLI, countIndicators(content, cliIndicators, &res.Reasoning)},
		{DocTypeAPI, countIndicators(content, apiIndicators, &res.Reasoning)},
		{DocTypeLibrary, countIndicators(content, libraryIndicators, &res.Reasoning)},
		{DocTypeFramework, countIndicators(content, frameworkIndicators, &res.Reasoning)},
	}

	total := 0
	for _, s := range scores {
		total += s.count
	}
	if total == 0 {
		res.DocType = DocTypeUnknown
		res.Reasoning = []string{"no indicators found"}
		return res
	}

	// Stable winner: highest count, ties broken by declaration order.
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].count > scores[j].count })
	res.DocType = scores[0].docType
	res.Confidence = float64(scores[0].count) / float64(total)
	if len(res.Reasoning) > 5 {
		res.Reasoning = res.Reasoning[:5]
	}
	return res
}

func countIndicators(content string, indicators []string, reasoning *[]string) int {
	total := 0
	for _, ind := range indicators {
		count := strings.Count(content, ind)
		total += count
		if count > 2 {
			*reasoning = append(*reasoning, "found \""+strings.TrimSpace(ind)+"\" repeatedly")
		}
	}
	return total
}

// detectLanguage identifies the corpus's natural language. The
// classifier keyword rules are English-tuned, so a non-English corpus
// earns a report warning upstream.
func detectLanguage(c *models.Corpus) string {
	sample := c.PlainText()
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.German, lingua.French, lingua.Spanish,
			lingua.Portuguese, lingua.Japanese, lingua.Chinese, lingua.Russian).
		Build()
	lang, ok := d.DetectLanguageOf(sample)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.String())
}
