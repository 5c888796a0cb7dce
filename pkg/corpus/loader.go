// Package corpus loads (origin, text) source pairs into an immutable
// in-memory corpus.
package corpus

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dtnitsch/docforge/models"
)

// Load builds a Corpus with one Page per source, preserving source
// order. A page that is empty or not valid UTF-8 is skipped with a
// warning; only the loss of every page is fatal.
func Load(sources []models.Source, now time.Time) (*models.Corpus, []string, error) {
	c := &models.Corpus{}
	var warnings []string

	seen := make(map[string]int)
	for _, src := range sources {
		if err := validate(src); err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		c.Pages = append(c.Pages, models.Page{
			SourceID:  sourceID(src.Origin, seen),
			Origin:    src.Origin,
			Text:      normalizeNewlines(src.Text),
			FetchedAt: now,
		})
	}

	if len(c.Pages) == 0 {
		return nil, warnings, &models.CorpusEmptyError{Attempted: len(sources)}
	}
	return c, warnings, nil
}

func validate(src models.Source) error {
	if strings.TrimSpace(src.Text) == "" {
		return &models.LoadError{Origin: src.Origin, Reason: "empty text"}
	}
	if !utf8.ValidString(src.Text) {
		return &models.LoadError{Origin: src.Origin, Reason: "not valid UTF-8"}
	}
	return nil
}

// sourceID derives a short stable page ID from the origin, de-duplicated
// within the corpus.
func sourceID(origin string, seen map[string]int) string {
	base := filepath.Base(origin)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "page"
	}
	seen[base]++
	if n := seen[base]; n > 1 {
		return fmt.Sprintf("%s-%d", base, n)
	}
	return base
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
