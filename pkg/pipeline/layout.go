package pipeline

import (
	"context"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/graphmap/pkg/layout/force"
	"github.com/matzehuels/graphmap/pkg/mapgraph"
)

// =============================================================================
// Local Layout Stage
// =============================================================================

// LocalLayout returns the local coordinate of every node, indexed like
// s.Nodes(). Clusters whose members all carry coordinates keep them; the
// others are laid out with a force simulation over their internal edges.
// With relayout set every cluster is laid out. The second result counts
// the clusters that were laid out.
func LocalLayout(ctx context.Context, s *mapgraph.Snapshot, seed uint64, relayout bool) ([]r2.Vec, int, error) {
	local := s.LocalCoords()
	laidOut := 0
	for c, cl := range s.Clusters() {
		if !relayout && hasLocal(s, cl.Members) {
			continue
		}
		pos, err := layoutCluster(ctx, s, c, cl.Members, seed)
		if err != nil {
			return nil, laidOut, err
		}
		for k, i := range cl.Members {
			local[i] = pos[k]
		}
		laidOut++
	}
	return local, laidOut, nil
}

func hasLocal(s *mapgraph.Snapshot, members []int) bool {
	for _, i := range members {
		if !s.Node(i).HasLocal {
			return false
		}
	}
	return true
}

func layoutCluster(ctx context.Context, s *mapgraph.Snapshot, c int, members []int, seed uint64) ([]r2.Vec, error) {
	index := make(map[int]int, len(members))
	for k, i := range members {
		index[i] = k
	}
	internal := s.InternalEdges(c)
	edges := make([]force.Edge, 0, len(internal))
	for _, e := range internal {
		edges = append(edges, force.Edge{A: index[e.From], B: index[e.To], Weight: e.Weight})
	}

	opts := force.DefaultOptions()
	opts.Seed = seed + uint64(c)
	opts.Init = force.InitIsomap
	res, err := force.Layout(ctx, len(members), edges, opts)
	if err != nil {
		return nil, err
	}
	return res.Positions, nil
}
