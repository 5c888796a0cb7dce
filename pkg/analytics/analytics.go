// Package analytics computes keyword statistics over corpus text for
// the summary artifact.
package analytics

import (
	"fmt"
	"sort"
	"strings"
)

// stopwords are filtered from frequency analysis: common English words
// plus documentation boilerplate that says nothing about the tool.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "an": {}, "and": {},
	"any": {}, "are": {}, "as": {}, "at": {}, "be": {}, "been": {}, "before": {},
	"but": {}, "by": {}, "can": {}, "could": {}, "do": {}, "does": {}, "each": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "how": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "its": {}, "may": {}, "more": {}, "most": {},
	"must": {}, "no": {}, "not": {}, "of": {}, "on": {}, "one": {}, "only": {},
	"or": {}, "other": {}, "set": {}, "should": {}, "so": {}, "some": {},
	"such": {}, "than": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "to": {},
	"up": {}, "use": {}, "used": {}, "using": {}, "was": {}, "we": {},
	"when": {}, "where": {}, "which": {}, "will": {}, "with": {}, "you": {},
	"your": {},

	// documentation boilerplate
	"see": {}, "example": {}, "examples": {}, "usage": {}, "note": {},
	"section": {}, "documentation": {}, "docs": {}, "page": {},
	"details": {}, "following": {}, "above": {}, "below": {}, "default": {},
}

// WordFrequency counts stopword-filtered words in text.
func WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return ('a' > r || r > 'z') && ('0' > r || r > '9')
		})
		if word == "" || len(word) < 2 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		frequencies[word]++
	}
	return frequencies
}

// TopKeywords returns the top N keywords formatted as "word:count",
// sorted by count descending then alphabetically for a stable summary.
func TopKeywords(frequencies map[string]int, n int) []string {
	type kv struct {
		word  string
		count int
	}
	ss := make([]kv, 0, len(frequencies))
	for w, c := range frequencies {
		ss = append(ss, kv{w, c})
	}
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].count != ss[j].count {
			return ss[i].count > ss[j].count
		}
		return ss[i].word < ss[j].word
	})

	if n > len(ss) {
		n = len(ss)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = fmt.Sprintf("%s:%d", ss[i].word, ss[i].count)
	}
	return out
}
