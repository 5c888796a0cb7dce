// Package synth generalizes example clusters into parameterized
// templates. A cluster of one is copied verbatim rather than guessed at:
// a plausible-looking wrong placeholder is worse than a literal copy.
package synth

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dtnitsch/docforge/models"
)

// pitfallAdjacency is how many lines away a pitfall span may sit from a
// cluster member and still get spliced in as an inline annotation.
const pitfallAdjacency = 3

var nameSanitizeRe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Synthesize builds one template per Command/Example cluster. Failures
// are per-cluster: a cluster whose members cannot be aligned yields a
// SynthesisFailure plus a verbatim fallback and leaves its siblings
// alone.
func Synthesize(clusters []*models.Cluster, spans []*models.Span, logger *slog.Logger) ([]*models.Template, []*models.SynthesisFailure) {
	var templates []*models.Template
	var failures []*models.SynthesisFailure

	pitfalls := pitfallSpans(spans)
	seenSig := make(map[string]bool)
	seenName := make(map[string]int)

	for _, cluster := range clusters {
		if cluster.Category != models.CategoryCommand && cluster.Category != models.CategoryExample {
			continue
		}
		// A span set can put the same invocation in both a Command and
		// an Example cluster; one template per signature is enough.
		if seenSig[cluster.Signature] {
			continue
		}
		seenSig[cluster.Signature] = true

		t, err := synthesizeCluster(cluster, seenName)
		if err != nil {
			var sf *models.SynthesisFailure
			if f, ok := err.(*models.SynthesisFailure); ok {
				sf = f
			} else {
				sf = &models.SynthesisFailure{ClusterID: cluster.ID, Signature: cluster.Signature, Reason: err.Error()}
			}
			logger.Warn("template synthesis failed, falling back to verbatim copy",
				"cluster_id", cluster.ID, "reason", sf.Reason)
			failures = append(failures, sf)
			t = verbatimTemplate(cluster, seenName)
		}

		t.Annotations = annotationsFor(cluster, pitfalls)
		templates = append(templates, t)
	}

	return templates, failures
}

func synthesizeCluster(cluster *models.Cluster, seenName map[string]int) (*models.Template, error) {
	if len(cluster.Members) < 2 {
		return verbatimTemplate(cluster, seenName), nil
	}

	memberLines := make([][]string, len(cluster.Members))
	for i, m := range cluster.Members {
		memberLines[i] = strings.Split(strings.TrimRight(m.Text, "\n"), "\n")
		if len(memberLines[i]) != len(memberLines[0]) {
			return nil, &models.SynthesisFailure{
				ClusterID: cluster.ID,
				Signature: cluster.Signature,
				Reason:    "members have differing line counts",
			}
		}
	}

	var skeletonLines []string
	var placeholders []models.Placeholder
	argIndex := 0

	for lineIdx := range memberLines[0] {
		memberTokens := make([][]string, len(cluster.Members))
		for i := range memberLines {
			memberTokens[i] = strings.Fields(memberLines[i][lineIdx])
			if len(memberTokens[i]) != len(memberTokens[0]) {
				return nil, &models.SynthesisFailure{
					ClusterID: cluster.ID,
					Signature: cluster.Signature,
					Reason:    fmt.Sprintf("inconsistent token alignment on line %d", lineIdx+1),
				}
			}
		}

		skeleton := make([]string, len(memberTokens[0]))
		for pos := range memberTokens[0] {
			values := make([]string, len(memberTokens))
			varies := false
			for i := range memberTokens {
				values[i] = memberTokens[i][pos]
				if values[i] != values[0] {
					varies = true
				}
			}
			if !varies {
				skeleton[pos] = values[0]
				continue
			}

			v := splitVariant(values)
			argIndex++
			name := uniqueName(placeholderName(memberTokens[0], pos, v, argIndex), placeholders)
			placeholders = append(placeholders, models.Placeholder{
				Name:         name,
				InferredType: inferType(v),
				Default:      mostFrequent(v.middles),
			})
			skeleton[pos] = v.prefix + "${" + name + "}" + v.suffix
		}
		skeletonLines = append(skeletonLines, strings.Join(skeleton, " "))
	}

	return &models.Template{
		Name:         templateName(cluster, seenName),
		Signature:    cluster.Signature,
		Skeleton:     strings.Join(skeletonLines, "\n"),
		Placeholders: placeholders,
		ClusterID:    cluster.ID,
		SourceSpans:  cluster.MemberIDs,
	}, nil
}

// verbatimTemplate copies the representative member unchanged, marked as
// an unverified generalization.
func verbatimTemplate(cluster *models.Cluster, seenName map[string]int) *models.Template {
	rep := cluster.Representative()
	skeleton := ""
	if rep != nil {
		skeleton = strings.TrimRight(rep.Text, "\n")
	}
	return &models.Template{
		Name:        templateName(cluster, seenName),
		Signature:   cluster.Signature,
		Skeleton:    skeleton,
		ClusterID:   cluster.ID,
		SourceSpans: cluster.MemberIDs,
		Unverified:  true,
	}
}

// templateName derives a file-safe name from the cluster's command word,
// de-duplicated across the run.
func templateName(cluster *models.Cluster, seen map[string]int) string {
	word := strings.Fields(cluster.Signature)
	name := "pattern"
	if len(word) > 0 {
		name = nameSanitizeRe.ReplaceAllString(word[0], "_")
		name = strings.Trim(name, "_")
		if name == "" {
			name = "pattern"
		}
	}
	seen[name]++
	if n := seen[name]; n > 1 {
		return fmt.Sprintf("%s-%d", name, n)
	}
	return name
}

func uniqueName(name string, existing []models.Placeholder) string {
	taken := func(n string) bool {
		for _, p := range existing {
			if p.Name == n {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

func pitfallSpans(spans []*models.Span) []*models.Span {
	var out []*models.Span
	for _, s := range spans {
		if s.Has(models.CategoryPitfall) {
			out = append(out, s)
		}
	}
	return out
}

// annotationsFor collects warnings that sit next to the cluster's source
// text in the docs; they get spliced above the template body on render.
func annotationsFor(cluster *models.Cluster, pitfalls []*models.Span) []string {
	var annotations []string
	seen := make(map[int]bool)
	for _, member := range cluster.Members {
		for _, p := range pitfalls {
			if seen[p.ID] || p.PageID != member.PageID {
				continue
			}
			delta := p.Line - member.Line
			if delta < 0 {
				delta = -delta
			}
			if delta <= pitfallAdjacency {
				seen[p.ID] = true
				annotations = append(annotations, strings.Join(strings.Fields(p.Text), " "))
			}
		}
	}
	return annotations
}
