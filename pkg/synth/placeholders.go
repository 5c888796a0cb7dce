package synth

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numericRe = regexp.MustCompile(`^\d+$`)
	flagRe    = regexp.MustCompile(`^--?[a-zA-Z][\w-]*$`)
)

// variant describes one varying token position across cluster members:
// the shared prefix/suffix of the token and the literal middles observed
// per member.
type variant struct {
	prefix  string
	suffix  string
	middles []string // one per member, member order
}

// splitVariant computes the longest common prefix and suffix over the
// member tokens and returns the differing middles. `/users/1` and
// `/users/2` yield prefix "/users/", middles "1" and "2".
func splitVariant(tokens []string) variant {
	prefix := tokens[0]
	for _, t := range tokens[1:] {
		prefix = commonPrefix(prefix, t)
	}

	suffix := tokens[0][len(prefix):]
	for _, t := range tokens[1:] {
		suffix = commonSuffix(suffix, t[len(prefix):])
	}

	middles := make([]string, len(tokens))
	for i, t := range tokens {
		middles[i] = t[len(prefix) : len(t)-len(suffix)]
	}
	return variant{prefix: prefix, suffix: suffix, middles: middles}
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func commonSuffix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return a[len(a)-i:]
}

// placeholderName picks a name for a varying position: the flag
// directly to its left (a flag names only its own value; anything
// further back is unrelated), else ID for numeric variants, else a
// generic ARG_n.
func placeholderName(lineTokens []string, pos int, v variant, argIndex int) string {
	if pos > 0 && flagRe.MatchString(lineTokens[pos-1]) {
		name := strings.TrimLeft(lineTokens[pos-1], "-")
		name = strings.ReplaceAll(name, "-", "_")
		return strings.ToUpper(name)
	}
	if allNumeric(v.middles) {
		return "ID"
	}
	return "ARG_" + strconv.Itoa(argIndex)
}

func allNumeric(values []string) bool {
	for _, v := range values {
		if !numericRe.MatchString(v) {
			return false
		}
	}
	return true
}

// inferType classifies the observed literal middles.
func inferType(v variant) string {
	if allNumeric(v.middles) {
		return "int"
	}
	for _, m := range v.middles {
		full := v.prefix + m + v.suffix
		if strings.HasPrefix(full, "http://") || strings.HasPrefix(full, "https://") {
			return "url"
		}
		if strings.Contains(full, "/") {
			return "path"
		}
	}
	return "string"
}

// mostFrequent returns the most common value; ties break by first-seen
// order, which keeps synthesis deterministic.
func mostFrequent(values []string) string {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	best, bestCount := "", 0
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
