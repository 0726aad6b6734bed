package territory

import (
	"slices"

	"github.com/matzehuels/graphmap/pkg/geom"
)

// Adjacency is a symmetric territory relation: Adjacency[i] lists the
// territories touching territory i, sorted, without i itself.
type Adjacency [][]int

// BuildAdjacency tests all territory pairs and records those whose
// boundaries lie within tol of each other. Corner contact counts as
// touching. The Neighbors field of every territory is updated.
func BuildAdjacency(ts []Territory, tol float64) Adjacency {
	adj := make(Adjacency, len(ts))
	for i := range ts {
		if ts[i].Empty() {
			continue
		}
		for j := i + 1; j < len(ts); j++ {
			if ts[j].Empty() {
				continue
			}
			if geom.Touches(ts[i].Polygon, ts[j].Polygon, tol) {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}
	for i := range adj {
		slices.Sort(adj[i])
		ts[i].Neighbors = adj[i]
	}
	return adj
}

// Len returns the number of territories.
func (a Adjacency) Len() int { return len(a) }

// Degree returns the number of neighbors of i.
func (a Adjacency) Degree(i int) int { return len(a[i]) }

// Adjacent reports whether i and j touch.
func (a Adjacency) Adjacent(i, j int) bool {
	_, ok := slices.BinarySearch(a[i], j)
	return ok
}

// Edges returns every adjacent pair once, as (i, j) with i < j.
func (a Adjacency) Edges() [][2]int {
	var out [][2]int
	for i, ns := range a {
		for _, j := range ns {
			if i < j {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// Symmetric reports whether the relation is symmetric and loop-free.
func (a Adjacency) Symmetric() bool {
	for i, ns := range a {
		for _, j := range ns {
			if j == i || j < 0 || j >= len(a) || !a.Adjacent(j, i) {
				return false
			}
		}
	}
	return true
}
