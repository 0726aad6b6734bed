package pipeline

import (
	"context"
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/graphmap/pkg/graph"
	"github.com/matzehuels/graphmap/pkg/mapcolor"
	"github.com/matzehuels/graphmap/pkg/mapgraph"
	"github.com/matzehuels/graphmap/pkg/pack"
)

func packSnapshot(ctx context.Context, s *mapgraph.Snapshot, local []r2.Vec, opts Options) ([]float64, pack.Result, error) {
	return pack.PackSnapshot(ctx, s, local, opts.PackOptions())
}

// =============================================================================
// Map Document Assembly
// =============================================================================

// buildMap assembles the serialized map from the stage results.
func buildMap(res *Result) graph.Map {
	s := res.Snapshot
	tr := res.Composition.Transform
	m := graph.Map{
		Version: graph.MapVersion,
		Transform: graph.Transform{
			Offset: [2]float64{tr.Offset.X, tr.Offset.Y},
			Factor: [2]float64{tr.Factor.X, tr.Factor.Y},
			Center: [2]float64{tr.Center.X, tr.Center.Y},
		},
		Coloring: graph.ColoringStats{
			Policy:    string(res.Coloring.Policy),
			Colors:    res.Coloring.NumColors,
			Steps:     res.Coloring.Steps,
			Fallback:  !res.Coloring.Exact,
			Conflicts: res.Coloring.Conflicts,
		},
		Packing: graph.PackingStats{
			Before: overlapDoc(res.Packing.Before),
			After:  overlapDoc(res.Packing.After),
		},
	}
	if len(res.Partition.Region) > 0 {
		b := res.Partition.Region.Bound()
		m.Bounds = [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
	}

	votes := clusterVotes(s)
	m.Nodes = make([]graph.PlacedNode, s.NodeCount())
	for i, n := range s.Nodes() {
		c := s.ClusterOf(i)
		props := n.Attrs.Properties()
		if _, ok := props["label"]; !ok {
			props["label"] = n.ID
		}
		if n.Attrs.Size == nil && n.Attrs.Votes != nil && votes[c] > 0 {
			props["size"] = float64(*n.Attrs.Votes) / votes[c]
		}
		p := res.Composition.Positions[i]
		m.Nodes[i] = graph.PlacedNode{ID: n.ID, Cluster: c, X: p.X, Y: p.Y, Props: props}
	}

	scale := math.Max(math.Abs(tr.Factor.X), math.Abs(tr.Factor.Y))
	m.Territories = make([]graph.Territory, len(res.Partition.Territories))
	for i, t := range res.Partition.Territories {
		center := tr.Apply(res.Packing.Centers[t.Cluster])
		radius := res.Radii[t.Cluster]
		if scale > 0 {
			radius /= scale
		}
		m.Territories[i] = graph.Territory{
			Index:     i,
			Cluster:   t.ClusterID,
			Center:    [2]float64{center.X, center.Y},
			Radius:    radius,
			Members:   len(t.Members),
			Color:     t.Color,
			Fill:      mapcolor.Fill(t.Color),
			Neighbors: t.Neighbors,
			Rings:     ringsDoc(t.Polygon),
		}
	}

	for _, w := range res.Warnings {
		m.Warnings = append(m.Warnings, w.Doc())
	}
	return m
}

// clusterVotes sums the votes of every cluster's members.
func clusterVotes(s *mapgraph.Snapshot) []float64 {
	out := make([]float64, s.ClusterCount())
	for i, n := range s.Nodes() {
		if n.Attrs.Votes != nil {
			out[s.ClusterOf(i)] += float64(*n.Attrs.Votes)
		}
	}
	return out
}

func overlapDoc(r pack.OverlapReport) graph.Overlap {
	return graph.Overlap{Pairs: r.Pairs, Max: r.Max, Total: r.Total, Worst: r.Worst}
}

func ringsDoc(p orb.Polygon) [][][2]float64 {
	out := make([][][2]float64, len(p))
	for i, r := range p {
		ring := make([][2]float64, len(r))
		for j, pt := range r {
			ring[j] = [2]float64{pt[0], pt[1]}
		}
		out[i] = ring
	}
	return out
}
