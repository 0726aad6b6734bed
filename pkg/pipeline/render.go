package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/graphmap/pkg/compose"
	apperrors "github.com/matzehuels/graphmap/pkg/errors"
	"github.com/matzehuels/graphmap/pkg/graph"
	"github.com/matzehuels/graphmap/pkg/mapcolor"
	"github.com/matzehuels/graphmap/pkg/observability"
	"github.com/matzehuels/graphmap/pkg/territory"
)

// Render runs every stage on g and assembles the map document. It does not
// consult a cache; use [Runner.Execute] for that.
func Render(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	total := time.Now()
	res := &Result{}

	var prep Prepared
	err := stage(ctx, StagePrepare, len(g.Nodes), &res.Stats.PrepareTime, func() (err error) {
		prep, err = Prepare(g, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	s := prep.Snapshot
	res.Snapshot = s
	res.Community = prep.Community
	res.Warnings = append(res.Warnings, prep.Warnings...)
	res.Stats.NodeCount = s.NodeCount()
	res.Stats.EdgeCount = s.EdgeCount()
	res.Stats.ClusterCount = s.ClusterCount()
	res.Stats.Detected = prep.Community != nil
	res.Stats.Enriched = prep.Enriched
	if prep.Community != nil {
		logger.Info("detected communities", "clusters", s.ClusterCount(), "modularity", prep.Community.Modularity)
	}

	err = stage(ctx, StageLayout, s.NodeCount(), &res.Stats.LayoutTime, func() (err error) {
		res.Local, res.Stats.LaidOut, err = LocalLayout(ctx, s, opts.Seed, opts.Relayout)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = stage(ctx, StagePack, s.ClusterCount(), &res.Stats.PackTime, func() (err error) {
		res.Radii, res.Packing, err = packSnapshot(ctx, s, res.Local, opts)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = stage(ctx, StageCompose, s.NodeCount(), &res.Stats.ComposeTime, func() error {
		res.Composition = compose.Compose(s, res.Local, res.Packing.Centers, compose.Options{
			Target: opts.TargetBound(),
			Logger: logger,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, w := range res.Composition.Warnings {
		res.Warnings = append(res.Warnings, warningOf(w))
	}

	err = stage(ctx, StagePartition, s.ClusterCount(), &res.Stats.PartitionTime, func() (err error) {
		res.Partition, err = territory.Partition(s, res.Composition.Points(), opts.PartitionOptions())
		if err != nil {
			return err
		}
		res.Adjacency = territory.BuildAdjacency(res.Partition.Territories, res.Partition.Tolerance)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, w := range res.Partition.Warnings {
		res.Warnings = append(res.Warnings, warningOf(w))
	}

	err = stage(ctx, StageColor, len(res.Adjacency), &res.Stats.ColorTime, func() (err error) {
		res.Coloring, err = colorTerritories(ctx, res.Partition.Territories, res.Adjacency, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, coloringWarnings(res.Coloring, res.Partition.Territories)...)

	res.Map = buildMap(res)
	res.Stats.TotalTime = time.Since(total)
	logger.Info("rendered map",
		"nodes", s.NodeCount(),
		"territories", len(res.Map.Territories),
		"colors", res.Coloring.NumColors,
		"warnings", len(res.Warnings),
		"duration", res.Stats.TotalTime)
	return res, nil
}

// stage times fn and reports it to the pipeline hooks.
func stage(ctx context.Context, name string, size int, d *time.Duration, fn func() error) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name, size)
	start := time.Now()
	err := fn()
	*d = time.Since(start)
	hooks.OnStageComplete(ctx, name, *d, err)
	return err
}

func colorTerritories(ctx context.Context, ts []territory.Territory, adj territory.Adjacency, opts Options) (mapcolor.Result, error) {
	co := opts.ColorOptions()
	co.Labels = make([]string, len(ts))
	for i, t := range ts {
		co.Labels[i] = t.ClusterID
	}
	cr, err := mapcolor.Color(ctx, adj, co)
	if err != nil {
		return cr, err
	}
	for i := range ts {
		ts[i].Color = cr.Colors[i]
	}
	if !cr.Exact {
		opts.Logger.Warn("map coloring fell back", "policy", cr.Fallback, "reason", cr.Reason, "colors", cr.NumColors)
	}
	return cr, nil
}

func coloringWarnings(cr mapcolor.Result, ts []territory.Territory) []Warning {
	if cr.Exact {
		return nil
	}
	var out []Warning
	out = append(out, Warning{
		Code:    cr.Reason,
		Message: "map coloring fell back to " + string(cr.Fallback),
	})
	if len(cr.Conflicts) > 0 {
		seen := make(map[int]bool)
		var ids []string
		for _, c := range cr.Conflicts {
			for _, i := range c {
				if !seen[i] {
					seen[i] = true
					ids = append(ids, ts[i].ClusterID)
				}
			}
		}
		out = append(out, Warning{
			Code:    apperrors.ErrCodeColoringConflicts,
			Message: "adjacent territories share a color",
			IDs:     ids,
		})
	}
	return out
}
