package mapcolor

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/coloring"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
)

// adjGraph exposes adjacency lists as a gonum undirected graph with
// index-ordered node iteration, so gonum's heuristics see the same order on
// every run.
type adjGraph struct {
	adj [][]int
}

var _ graph.Undirected = adjGraph{}

func (g adjGraph) has(id int64) bool { return id >= 0 && id < int64(len(g.adj)) }

func (g adjGraph) Node(id int64) graph.Node {
	if !g.has(id) {
		return nil
	}
	return simple.Node(id)
}

func (g adjGraph) Nodes() graph.Nodes {
	nodes := make([]graph.Node, len(g.adj))
	for i := range g.adj {
		nodes[i] = simple.Node(i)
	}
	return iterator.NewOrderedNodes(nodes)
}

func (g adjGraph) From(id int64) graph.Nodes {
	if !g.has(id) {
		return graph.Empty
	}
	ns := g.adj[id]
	nodes := make([]graph.Node, len(ns))
	for i, j := range ns {
		nodes[i] = simple.Node(j)
	}
	return iterator.NewOrderedNodes(nodes)
}

func (g adjGraph) HasEdgeBetween(xid, yid int64) bool {
	if !g.has(xid) || !g.has(yid) {
		return false
	}
	for _, j := range g.adj[xid] {
		if int64(j) == yid {
			return true
		}
	}
	return false
}

func (g adjGraph) Edge(uid, vid int64) graph.Edge { return g.EdgeBetween(uid, vid) }

func (g adjGraph) EdgeBetween(xid, yid int64) graph.Edge {
	if !g.HasEdgeBetween(xid, yid) {
		return nil
	}
	return simple.Edge{F: simple.Node(xid), T: simple.Node(yid)}
}

// welshPowell returns a proper coloring with colors relabelled by first
// appearance in vertex order.
func welshPowell(adj [][]int) (int, []int, error) {
	if len(adj) == 0 {
		return 0, nil, nil
	}
	_, raw, err := coloring.WelshPowell(adjGraph{adj: adj}, nil)
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "welsh-powell coloring")
	}
	relabel := make(map[int]int)
	out := make([]int, len(adj))
	for i := range adj {
		c := raw[int64(i)]
		r, ok := relabel[c]
		if !ok {
			r = len(relabel)
			relabel[c] = r
		}
		out[i] = r
	}
	return len(relabel), out, nil
}

// repair folds colors into k colors and then applies min-conflict moves
// until no move lowers the conflict count.
func repair(adj [][]int, colors []int, k int) []int {
	out := make([]int, len(colors))
	copy(out, colors)
	for i, c := range out {
		if c >= k {
			out[i] = bestColor(adj, out, i, k)
		}
	}
	for range 100 * max(1, len(adj)) {
		moved := false
		for i := range adj {
			if conflictsAt(adj, out, i, out[i]) == 0 {
				continue
			}
			c := bestColor(adj, out, i, k)
			if conflictsAt(adj, out, i, c) < conflictsAt(adj, out, i, out[i]) {
				out[i] = c
				moved = true
			}
		}
		if !moved {
			break
		}
	}
	return out
}

// bestColor returns the lowest color in [0, k) minimizing conflicts at v.
func bestColor(adj [][]int, colors []int, v, k int) int {
	best, bestN := 0, -1
	for c := 0; c < k; c++ {
		n := conflictsAt(adj, colors, v, c)
		if bestN < 0 || n < bestN {
			best, bestN = c, n
		}
	}
	return best
}

func conflictsAt(adj [][]int, colors []int, v, c int) int {
	n := 0
	for _, j := range adj[v] {
		if j != v && colors[j] == c {
			n++
		}
	}
	return n
}
