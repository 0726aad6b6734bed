package pack

import (
	"cmp"
	"slices"

	"github.com/matzehuels/graphmap/pkg/mapgraph"
)

// DefaultTopK is the number of heaviest edges each cluster keeps.
const DefaultTopK = 3

// Prune keeps, for each of n clusters, its k heaviest incident edges (ties
// broken by lower neighbor index) and returns the union without duplicates,
// sorted by (A, B). An edge survives if either endpoint keeps it.
func Prune(edges []mapgraph.ClusterEdge, n, k int) []mapgraph.ClusterEdge {
	if k <= 0 {
		k = DefaultTopK
	}
	incident := make([][]int, n)
	for i, e := range edges {
		incident[e.A] = append(incident[e.A], i)
		incident[e.B] = append(incident[e.B], i)
	}

	keep := make(map[int]bool)
	for c, list := range incident {
		slices.SortStableFunc(list, func(x, y int) int {
			ex, ey := edges[x], edges[y]
			return cmp.Or(
				cmp.Compare(ey.Weight, ex.Weight),
				cmp.Compare(ex.Other(c), ey.Other(c)),
			)
		})
		for _, i := range list[:min(k, len(list))] {
			keep[i] = true
		}
	}

	out := make([]mapgraph.ClusterEdge, 0, len(keep))
	for i, e := range edges {
		if keep[i] {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(x, y mapgraph.ClusterEdge) int {
		return cmp.Or(cmp.Compare(x.A, y.A), cmp.Compare(x.B, y.B))
	})
	return out
}
