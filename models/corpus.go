package models

import (
	"strings"
	"time"
)

// Source is a single (origin, plain_text) input pair. The extract layer
// produces these; the corpus loader never reads files or the network itself.
type Source struct {
	Origin string `yaml:"origin" json:"origin"`
	Text   string `yaml:"text" json:"text"`
}

// Page is one loaded documentation page. Owned exclusively by its Corpus
// and never mutated after loading.
type Page struct {
	SourceID  string    `yaml:"source_id" json:"source_id"`
	Origin    string    `yaml:"origin" json:"origin"`
	Text      string    `yaml:"-" json:"-"`
	FetchedAt time.Time `yaml:"fetched_at" json:"fetched_at"`
}

// LineCount returns the number of lines in the page text.
func (p *Page) LineCount() int {
	if p.Text == "" {
		return 0
	}
	return strings.Count(p.Text, "\n") + 1
}

// Corpus is an ordered set of Pages. Insertion order is source order.
// Immutable once loaded; research findings live on a separate synthetic
// page appended to the span set, never here.
type Corpus struct {
	Pages []Page
}

// Page returns the page with the given source ID, or nil.
func (c *Corpus) Page(sourceID string) *Page {
	for i := range c.Pages {
		if c.Pages[i].SourceID == sourceID {
			return &c.Pages[i]
		}
	}
	return nil
}

// PlainText concatenates all page texts in source order.
func (c *Corpus) PlainText() string {
	var sb strings.Builder
	for i := range c.Pages {
		sb.WriteString(c.Pages[i].Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
