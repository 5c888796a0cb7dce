package aggregate

import (
	"regexp"
	"strings"
)

// valueMarker replaces literal-looking tokens in a normalized signature.
const valueMarker = "▒" // ▒

var (
	numberRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	quotedRe = regexp.MustCompile(`^('.*'|".*")$`)
	urlRe    = regexp.MustCompile(`^https?://`)
	flagRe   = regexp.MustCompile(`^--?[a-zA-Z][\w-]*$`)
	flagEqRe = regexp.MustCompile(`^(--?[a-zA-Z][\w-]*)=(.+)$`)
	promptRe = regexp.MustCompile(`^\s*[$#]\s+`)
	usageRe  = regexp.MustCompile(`(?i)^\s*usage:\s*`)
)

// Tokenize strips shell prompts and "usage:" prefixes and splits the
// first line of a span into whitespace tokens. Clustering keys off the
// first line; multi-line bodies are the synthesizer's problem.
func Tokenize(text string) []string {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = promptRe.ReplaceAllString(line, "")
	line = usageRe.ReplaceAllString(line, "")
	return strings.Fields(line)
}

// Signature normalizes a command line: the command word and flag names
// survive, everything that looks like a literal value (quoted strings,
// numbers, paths, URLs, flag values) collapses to a marker. Two spans
// cluster together iff their signatures are equal; this is an exact
// equivalence partition, not a fuzzy similarity score.
func Signature(text string) string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return ""
	}

	out := make([]string, len(tokens))
	out[0] = tokens[0] // command word stays

	prevWasFlag := false
	for i, tok := range tokens[1:] {
		idx := i + 1
		switch {
		case flagEqRe.MatchString(tok):
			out[idx] = flagEqRe.FindStringSubmatch(tok)[1] + "=" + valueMarker
			prevWasFlag = false
		case flagRe.MatchString(tok):
			out[idx] = tok
			prevWasFlag = true
		case prevWasFlag, isLiteral(tok):
			out[idx] = valueMarker
			prevWasFlag = false
		default:
			out[idx] = tok
			prevWasFlag = false
		}
	}
	return strings.Join(out, " ")
}

func isLiteral(tok string) bool {
	return numberRe.MatchString(tok) ||
		quotedRe.MatchString(tok) ||
		urlRe.MatchString(tok) ||
		strings.Contains(tok, "/") ||
		strings.HasPrefix(tok, "<") // doc-style <placeholder>
}

// CommandWord returns the leading command token of a span's first line.
func CommandWord(text string) string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// tokenEditDistance is Levenshtein distance over signature tokens, used
// to flag near-duplicate signatures that must not be silently merged.
func tokenEditDistance(a, b []string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
