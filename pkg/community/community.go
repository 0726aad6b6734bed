// Package community assigns cluster ids to nodes that arrive without them,
// using Louvain modularity optimization from gonum.
package community

import (
	"io"
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
	"github.com/matzehuels/graphmap/pkg/mapgraph"
)

// DefaultSeed seeds the Louvain node ordering.
const DefaultSeed = 42

// Options configures [Detect].
type Options struct {
	// Resolution is the modularity resolution; zero means 1.
	Resolution float64
	Seed       uint64
	Logger     *log.Logger
}

// Result describes the detected communities.
type Result struct {
	// Communities lists member node ids per community; community c was
	// assigned cluster id strconv.Itoa(c).
	Communities [][]string
	Modularity  float64
}

// Detect runs community detection over the builder's node edges and assigns
// every node its community as cluster id. Communities are numbered by their
// first member in insertion order, so labels are stable for a given seed.
func Detect(b *mapgraph.Builder, opts Options) (Result, error) {
	if opts.Resolution <= 0 {
		opts.Resolution = 1
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	ids := b.NodeIDs()
	if len(ids) == 0 {
		return Result{}, apperrors.New(apperrors.ErrCodeEmptyInput, "no nodes to cluster")
	}
	index := make(map[string]int64, len(ids))
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i, id := range ids {
		index[id] = int64(i)
		g.AddNode(simple.Node(i))
	}

	weights := make(map[[2]int64]float64)
	from, to, weight := b.EdgeList()
	for k := range from {
		u, v := index[from[k]], index[to[k]]
		if u > v {
			u, v = v, u
		}
		weights[[2]int64{u, v}] += weight[k]
	}
	for key, w := range weights {
		if w <= 0 {
			continue
		}
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(key[0]), T: simple.Node(key[1]), W: w})
	}

	src := rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef)
	reduced := community.Modularize(g, opts.Resolution, src)
	groups := reduced.Communities()
	for _, grp := range groups {
		slices.SortFunc(grp, func(a, b graph.Node) int { return int(a.ID() - b.ID()) })
	}
	groups = slices.DeleteFunc(groups, func(grp []graph.Node) bool { return len(grp) == 0 })
	slices.SortFunc(groups, func(a, b []graph.Node) int { return int(a[0].ID() - b[0].ID()) })

	res := Result{
		Communities: make([][]string, len(groups)),
		Modularity:  community.Q(g, groups, opts.Resolution),
	}
	for c, grp := range groups {
		label := strconv.Itoa(c)
		for _, n := range grp {
			id := ids[n.ID()]
			res.Communities[c] = append(res.Communities[c], id)
			if err := b.SetCluster(id, label); err != nil {
				return Result{}, err
			}
		}
	}
	logger.Info("Detected communities", "nodes", len(ids), "communities", len(groups), "modularity", res.Modularity)
	return res, nil
}
