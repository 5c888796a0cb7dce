// Package gaps finds what classification could not resolve and brokers
// external research for it.
package gaps

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/docforge/models"
	"github.com/dtnitsch/docforge/pkg/aggregate"
)

// maxLowConfidenceGaps bounds how many unclassified spans turn into
// researchable gaps; every one of them still lands in report warnings.
const maxLowConfidenceGaps = 20

// Detect raises gaps for: spans below the floor for every category,
// reference spans that defer detail elsewhere, and near-duplicate
// cluster pairs from aggregation. Synthesis-alignment gaps are appended
// later by the synthesizer. All gaps start open.
func Detect(spans []*models.Span, nearDups []aggregate.NearDup) []*models.Gap {
	var out []*models.Gap
	id := 1

	lowConfidence := 0
	for _, s := range spans {
		switch {
		case s.Primary().Category == models.CategoryUnclassified:
			if lowConfidence >= maxLowConfidenceGaps {
				continue
			}
			lowConfidence++
			out = append(out, &models.Gap{
				ID:     id,
				Kind:   models.GapLowConfidence,
				Status: models.GapOpen,
				SpanID: s.ID,
				Query:  formulateQuery(s.Text, "What does this documentation fragment describe?"),
				Detail: fmt.Sprintf("page %s line %d", s.PageID, s.Line),
			})
			id++

		case s.Primary().Category == models.CategoryReference && s.Primary().Subtype == "deferred":
			out = append(out, &models.Gap{
				ID:     id,
				Kind:   models.GapDeferredReference,
				Status: models.GapOpen,
				SpanID: s.ID,
				Query:  formulateQuery(s.Text, "What are the details deferred by this reference? Include usage examples."),
				Detail: fmt.Sprintf("page %s line %d", s.PageID, s.Line),
			})
			id++
		}
	}

	for _, d := range nearDups {
		out = append(out, &models.Gap{
			ID:        id,
			Kind:      models.GapPotentialDup,
			Status:    models.GapOpen,
			ClusterID: d.A.ID,
			Query: fmt.Sprintf("Are %q and %q the same command invocation or distinct variants?",
				d.A.Signature, d.B.Signature),
			Detail: fmt.Sprintf("signatures differ by %d token(s)", d.Distance),
		})
		id++
	}

	return out
}

// RemapClusters re-points cluster-scoped gaps after a re-partition.
// Cluster IDs are positional, so growing the span set can renumber
// clusters; the (category, signature) pair survives renumbering and
// identifies the same cluster in the fresh partition.
func RemapClusters(gapList []*models.Gap, old, fresh []*models.Cluster) {
	oldByID := make(map[int]*models.Cluster, len(old))
	for _, c := range old {
		oldByID[c.ID] = c
	}
	type clusterKey struct {
		cat models.Category
		sig string
	}
	freshIDs := make(map[clusterKey]int, len(fresh))
	for _, c := range fresh {
		freshIDs[clusterKey{c.Category, c.Signature}] = c.ID
	}
	for _, g := range gapList {
		if g.ClusterID == 0 {
			continue
		}
		oc, ok := oldByID[g.ClusterID]
		if !ok {
			continue
		}
		if id, ok := freshIDs[clusterKey{oc.Category, oc.Signature}]; ok {
			g.ClusterID = id
		}
	}
}

// AddSynthesisGap records a per-cluster synthesis failure as a gap,
// numbered after the existing ones.
func AddSynthesisGap(existing []*models.Gap, failure *models.SynthesisFailure) []*models.Gap {
	return append(existing, &models.Gap{
		ID:        nextID(existing),
		Kind:      models.GapSynthesisFailure,
		Status:    models.GapOpen,
		ClusterID: failure.ClusterID,
		Query: fmt.Sprintf("What is the general form of %q? The documented examples do not align.",
			failure.Signature),
		Detail: failure.Reason,
	})
}

func nextID(gaps []*models.Gap) int {
	max := 0
	for _, g := range gaps {
		if g.ID > max {
			max = g.ID
		}
	}
	return max + 1
}

// formulateQuery turns span text into a focused research question.
func formulateQuery(text, lead string) string {
	snippet := strings.Join(strings.Fields(text), " ")
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return fmt.Sprintf("%s %q", lead, snippet)
}
