package force

import (
	"math"

	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/spatial/r2"
)

// isomapMax bounds the graph size for Isomap initialization; the all-pairs
// shortest path step is cubic.
const isomapMax = 400

// isomap embeds a connected graph by multidimensional scaling of hop
// distances, scaled so that one hop spans length. It returns nil when the
// graph is too large, disconnected, or the embedding is not finite.
func isomap(n int, edges []Edge, length float64) []r2.Vec {
	if n < 3 || n > isomapMax {
		return nil
	}
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		if e.A == e.B || e.A < 0 || e.B < 0 || e.A >= n || e.B >= n {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(e.A), simple.Node(e.B)))
	}
	if len(topo.ConnectedComponents(g)) != 1 {
		return nil
	}

	o := layout.NewOptimizerR2(g, layout.IsomapR2{}.Update)
	for o.Update() {
	}
	out := make([]r2.Vec, n)
	for i := range out {
		p := o.Coord2(int64(i))
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil
		}
		out[i] = r2.Scale(length, p)
	}
	return out
}
