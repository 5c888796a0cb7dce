// Package aggregate partitions classified spans into clusters of
// structurally identical patterns. Clusters are recomputed from scratch
// on every run; nothing here mutates spans.
package aggregate

import (
	"sort"
	"strings"

	"github.com/dtnitsch/docforge/models"
)

// clusteredCategories are the categories the aggregator partitions.
var clusteredCategories = []models.Category{
	models.CategoryCommand,
	models.CategoryExample,
	models.CategoryWorkflow,
}

// NearDup is a pair of clusters whose signatures are suspiciously close
// but not identical. These become potential-duplicate gaps rather than
// merged clusters: a wrong merge corrupts a template's placeholders.
type NearDup struct {
	A, B     *models.Cluster
	Distance int
}

// Result of one aggregation pass.
type Result struct {
	Clusters []*models.Cluster
	NearDups []NearDup
}

// Partition groups spans of each clustered category by exact normalized
// signature. Every qualifying span lands in exactly one cluster per
// category. Cluster IDs and member order are deterministic: members sort
// by (page, offset), clusters by (category, first member).
func Partition(spans []*models.Span, floor float64, nearDupDistance int) Result {
	var res Result
	id := 1

	for _, cat := range clusteredCategories {
		bySig := make(map[string][]*models.Span)
		var sigOrder []string

		for _, s := range spans {
			if s.Confidence(cat) < floor {
				continue
			}
			sig := Signature(s.Text)
			if sig == "" {
				continue
			}
			if _, ok := bySig[sig]; !ok {
				sigOrder = append(sigOrder, sig)
			}
			bySig[sig] = append(bySig[sig], s)
		}

		var catClusters []*models.Cluster
		for _, sig := range sigOrder {
			members := bySig[sig]
			sort.SliceStable(members, func(i, j int) bool {
				if members[i].PageID != members[j].PageID {
					return members[i].PageID < members[j].PageID
				}
				return members[i].Start < members[j].Start
			})
			cluster := &models.Cluster{
				ID:        id,
				Category:  cat,
				Signature: sig,
				Members:   members,
			}
			for _, m := range members {
				cluster.MemberIDs = append(cluster.MemberIDs, m.ID)
			}
			id++
			catClusters = append(catClusters, cluster)
		}

		res.NearDups = append(res.NearDups, findNearDups(catClusters, nearDupDistance)...)
		res.Clusters = append(res.Clusters, catClusters...)
	}

	return res
}

// findNearDups flags cluster pairs within the token edit-distance
// threshold. Only same-command pairs are compared; different command
// words are never duplicates of each other.
func findNearDups(clusters []*models.Cluster, threshold int) []NearDup {
	if threshold <= 0 {
		return nil
	}
	var dups []NearDup
	for i := 0; i < len(clusters); i++ {
		for j := i + 1; j < len(clusters); j++ {
			a := strings.Fields(clusters[i].Signature)
			b := strings.Fields(clusters[j].Signature)
			if len(a) == 0 || len(b) == 0 || a[0] != b[0] {
				continue
			}
			if d := tokenEditDistance(a, b); d <= threshold {
				dups = append(dups, NearDup{A: clusters[i], B: clusters[j], Distance: d})
			}
		}
	}
	return dups
}

// ClustersOf filters a cluster set by category.
func ClustersOf(clusters []*models.Cluster, cat models.Category) []*models.Cluster {
	var out []*models.Cluster
	for _, c := range clusters {
		if c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}
