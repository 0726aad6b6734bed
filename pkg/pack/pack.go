package pack

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/graphmap/pkg/layout/force"
	"github.com/matzehuels/graphmap/pkg/mapgraph"
)

// Options configures [Pack].
type Options struct {
	// TopK is the number of heaviest edges kept per cluster before seeding.
	TopK int
	// Seed configures the force-directed seed layout.
	Seed force.Options
	// Collide configures collision resolution.
	Collide CollideOptions
	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns the packing defaults.
func DefaultOptions() Options {
	return Options{
		TopK: DefaultTopK,
		Seed: force.DefaultOptions(),
		Collide: CollideOptions{
			Ticks:         DefaultTicks,
			Iterations:    DefaultIterations,
			Strength:      DefaultStrength,
			VelocityDecay: DefaultVelocityDecay,
			Padding:       DefaultPadding,
		},
	}
}

// Result is a packed arrangement of clusters.
type Result struct {
	// Centers holds the final cluster centers, indexed by cluster.
	Centers []r2.Vec
	// SeedCenters holds the force-directed seed positions.
	SeedCenters []r2.Vec
	// Pruned holds the edges that drove the seed layout.
	Pruned []mapgraph.ClusterEdge
	// SeedSteps is the number of seed simulation steps run.
	SeedSteps int
	// SeedConverged reports whether the seed layout stabilized.
	SeedConverged bool
	// Before and After report circle overlap of the seed and of the
	// final packing. Padding is not counted as overlap.
	Before, After OverlapReport
}

// Pack places n = len(radii) clusters connected by edges.
//
// A single cluster, or a seed without overlaps, is returned at its seed
// position unchanged.
func Pack(ctx context.Context, radii []float64, edges []mapgraph.ClusterEdge, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	n := len(radii)
	if n == 0 {
		return Result{}, nil
	}
	for c, r := range radii {
		if r < 0 {
			return Result{}, fmt.Errorf("cluster %d: negative radius %v", c, r)
		}
	}

	pruned := Prune(edges, n, opts.TopK)
	springs := make([]force.Edge, len(pruned))
	for i, e := range pruned {
		springs[i] = force.Edge{A: e.A, B: e.B, Weight: e.Weight}
	}
	seed, err := force.Layout(ctx, n, springs, opts.Seed)
	if err != nil {
		return Result{}, fmt.Errorf("seed layout: %w", err)
	}
	logger.Debug("seeded cluster layout",
		"clusters", n, "edges", len(pruned), "steps", seed.Steps, "converged", seed.Converged)

	res := Result{
		SeedCenters:   seed.Positions,
		Pruned:        pruned,
		SeedSteps:     seed.Steps,
		SeedConverged: seed.Converged,
		Before:        Overlaps(seed.Positions, radii, 0),
	}

	collideOpts := opts.Collide
	if collideOpts.Seed == 0 {
		collideOpts.Seed = opts.Seed.Seed
	}
	centers, err := Collide(ctx, seed.Positions, radii, collideOpts)
	if err != nil {
		return Result{}, fmt.Errorf("collide: %w", err)
	}
	res.Centers = centers
	res.After = Overlaps(centers, radii, 0)
	logger.Debug("resolved collisions", "before", res.Before.String(), "after", res.After.String())
	if !res.After.Clean() {
		logger.Warn("packing left overlaps", "pairs", res.After.Pairs, "max", res.After.Max)
	}
	return res, nil
}

// PackSnapshot packs the clusters of s using local node coordinates indexed
// like s.Nodes().
func PackSnapshot(ctx context.Context, s *mapgraph.Snapshot, local []r2.Vec, opts Options) ([]float64, Result, error) {
	radii := Radii(s, local)
	res, err := Pack(ctx, radii, s.ClusterEdges(), opts)
	return radii, res, err
}
