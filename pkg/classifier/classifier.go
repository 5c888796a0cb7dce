// Package classifier tags contiguous spans of page text with category
// labels and confidence scores, using an ordered declarative rule table.
// Classification is pure and stateless per page, so pages fan out to a
// worker pool; the span set is only assembled after every page is done.
package classifier

import (
	"sort"
	"strings"

	"github.com/dtnitsch/docforge/models"
)

// Config tunes classification.
type Config struct {
	ConfidenceFloor float64
	Workers         int
}

// ClassifyPage segments one page and labels every segment. Span IDs are
// zero here; the caller assigns them after all pages are classified so
// numbering is stable regardless of worker scheduling.
func ClassifyPage(page *models.Page, cfg Config) []*models.Span {
	var spans []*models.Span

	for _, seg := range segmentPage(page.Text) {
		switch seg.kind {
		case segCode:
			spans = append(spans, classifyCode(page, seg)...)
		default:
			spans = append(spans, classifyParagraph(page, seg)...)
		}
	}

	// Below the floor for every category means unclassified; the gap
	// detector picks those up downstream.
	for _, s := range spans {
		if len(s.Labels) == 0 || s.BelowFloor(cfg.ConfidenceFloor) {
			s.Labels = []models.Label{{Category: models.CategoryUnclassified}}
		}
	}
	return spans
}

func classifyCode(page *models.Page, seg segment) []*models.Span {
	in := MatchInput{
		Text:    seg.text,
		Lower:   strings.ToLower(seg.text),
		Context: seg.context,
		Lang:    seg.lang,
	}
	labels := matchScope(ScopeCode, in)

	// Warning markers inside a code block still count: a command inside
	// a warning comment is both command and pitfall.
	for _, l := range matchScope(ScopeLine, in) {
		if l.Category == models.CategoryPitfall {
			labels = append(labels, l)
		}
	}
	sortLabels(labels)

	return []*models.Span{newSpan(page, seg.start, seg.line, seg.text, labels)}
}

// classifyParagraph applies block rules to the paragraph as a whole and
// line rules to its individual lines. Lines that fire a line rule become
// their own spans; runs of silent lines fold into one residual span,
// which stays unlabeled unless a block rule covered the paragraph.
func classifyParagraph(page *models.Page, seg segment) []*models.Span {
	blockLabels := matchScope(ScopeBlock, MatchInput{
		Text:    seg.text,
		Lower:   strings.ToLower(seg.text),
		Context: seg.context,
	})

	var spans []*models.Span
	lines := strings.Split(seg.text, "\n")

	var silent []string
	silentStart, silentLine := 0, 0

	flushSilent := func() {
		if len(silent) == 0 {
			return
		}
		text := strings.Join(silent, "\n")
		labels := make([]models.Label, len(blockLabels))
		copy(labels, blockLabels)
		spans = append(spans, newSpan(page, silentStart, silentLine, text, labels))
		silent = nil
	}

	offset := seg.start
	for i, line := range lines {
		lineNo := seg.line + i
		in := MatchInput{Text: line, Lower: strings.ToLower(line), Context: seg.context}

		lineLabels := matchScope(ScopeLine, in)
		if len(lineLabels) == 0 {
			if len(silent) == 0 {
				silentStart, silentLine = offset, lineNo
			}
			silent = append(silent, line)
		} else {
			flushSilent()
			// A matched line inside a labeled block inherits the block
			// labels too (a warning step inside a workflow list).
			lineLabels = append(lineLabels, blockLabels...)
			sortLabels(lineLabels)
			spans = append(spans, newSpan(page, offset, lineNo, line, lineLabels))
		}
		offset += len(line) + 1
	}
	flushSilent()

	return spans
}

func newSpan(page *models.Page, start, line int, text string, labels []models.Label) *models.Span {
	return &models.Span{
		PageID:     page.SourceID,
		Start:      start,
		End:        start + len(text),
		Line:       line,
		Text:       text,
		Labels:     labels,
		Provenance: models.ProvenanceDoc,
	}
}

// sortLabels orders labels for primary selection: rule priority, then
// higher confidence, then rule declaration order. Deterministic, never
// random.
func sortLabels(labels []models.Label) {
	sort.SliceStable(labels, func(i, j int) bool {
		if labels[i].Priority != labels[j].Priority {
			return labels[i].Priority < labels[j].Priority
		}
		if labels[i].Confidence != labels[j].Confidence {
			return labels[i].Confidence > labels[j].Confidence
		}
		return labels[i].RuleIndex < labels[j].RuleIndex
	})
}
