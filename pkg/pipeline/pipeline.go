// Package pipeline provides the core render pipeline for graphmap.
//
// This package implements the complete graph → map pipeline used by the
// CLI and the HTTP API. By centralizing this logic, both entry points
// behave identically and share one cache key scheme.
//
// # Architecture
//
// A render runs six stages over a per-run immutable snapshot:
//
//  1. Prepare: enrich attributes, detect communities when no node carries
//     a cluster, build the snapshot
//  2. Layout: compute local coordinates for clusters that lack them
//  3. Pack: arrange clusters without overlap (pkg/pack)
//  4. Compose: place every node on the canvas (pkg/compose)
//  5. Partition: derive territories and their adjacency (pkg/territory)
//  6. Color: color the adjacency graph (pkg/mapcolor)
//
// The outcome is a [graph.Map] document plus the intermediate results.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, g, pipeline.Options{Fallback: "extend"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m := result.Map
//
// Or run the stages without caching:
//
//	result, err := pipeline.Render(ctx, g, opts)
package pipeline

import (
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/graphmap/pkg/cache"
	"github.com/matzehuels/graphmap/pkg/community"
	"github.com/matzehuels/graphmap/pkg/compose"
	"github.com/matzehuels/graphmap/pkg/enrich"
	apperrors "github.com/matzehuels/graphmap/pkg/errors"
	"github.com/matzehuels/graphmap/pkg/graph"
	"github.com/matzehuels/graphmap/pkg/mapcolor"
	"github.com/matzehuels/graphmap/pkg/mapgraph"
	"github.com/matzehuels/graphmap/pkg/pack"
	"github.com/matzehuels/graphmap/pkg/territory"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultRegion is the default clip region shape.
	DefaultRegion = string(territory.RegionBBox)

	// DefaultFallback is the default coloring fallback policy.
	DefaultFallback = string(mapcolor.PolicyBestEffort)
)

// Stage names reported to observability hooks.
const (
	StagePrepare   = "prepare"
	StageLayout    = "layout"
	StagePack      = "pack"
	StageCompose   = "compose"
	StagePartition = "partition"
	StageColor     = "color"
)

// ValidRegions is the set of supported clip region shapes.
var ValidRegions = map[string]bool{
	string(territory.RegionBBox): true,
	string(territory.RegionHull): true,
}

// ValidFallbacks is the set of supported coloring fallback policies.
var ValidFallbacks = map[string]bool{
	string(mapcolor.PolicyBestEffort): true,
	string(mapcolor.PolicyExtend):     true,
	string(mapcolor.PolicyFail):       true,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the render pipeline.
// This struct supports JSON serialization for API requests. Zero values
// select the defaults of the stage packages.
type Options struct {
	// Prepare options
	Resolution float64 `json:"resolution,omitempty" validate:"gte=0"` // Louvain resolution when no node has a cluster
	Relayout   bool    `json:"relayout,omitempty"`                    // Recompute local coordinates even when present

	// Pack options
	TopK          int     `json:"top_k,omitempty" validate:"gte=0"`
	Seed          uint64  `json:"seed,omitempty"`
	Ticks         int     `json:"ticks,omitempty" validate:"gte=0"`
	Iterations    int     `json:"iterations,omitempty" validate:"gte=0"`
	Strength      float64 `json:"strength,omitempty" validate:"gte=0,lte=1"`
	VelocityDecay float64 `json:"velocity_decay,omitempty" validate:"gte=0,lt=1"`
	Padding       float64 `json:"padding,omitempty" validate:"gte=0"`

	// Compose options
	Target [4]float64 `json:"target,omitzero"` // minX, minY, maxX, maxY

	// Partition options
	Region        string  `json:"region,omitempty" validate:"omitempty,oneof=bbox hull"`
	RegionPadding float64 `json:"region_padding,omitempty" validate:"gte=0"`
	Simplify      float64 `json:"simplify,omitempty" validate:"gte=0"`

	// Coloring options
	Colors   int    `json:"colors,omitempty" validate:"gte=0,lte=64"`
	MaxSteps int    `json:"max_steps,omitempty" validate:"gte=0"`
	BudgetMS int    `json:"budget_ms,omitempty" validate:"gte=0"`
	Fallback string `json:"fallback,omitempty" validate:"omitempty,oneof=best-effort extend fail"`

	// Refresh bypasses the cache lookup.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Attributes enrich.Table `json:"-"`
	Logger     *log.Logger  `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run. On a cache hit only Map,
// GraphHash, Warnings and CacheHit are set.
type Result struct {
	Map       graph.Map
	GraphHash string
	CacheHit  bool
	Warnings  []Warning
	Stats     Stats

	Snapshot    *mapgraph.Snapshot
	Community   *community.Result
	Local       []r2.Vec
	Radii       []float64
	Packing     pack.Result
	Composition compose.Composition
	Partition   territory.Result
	Adjacency   territory.Adjacency
	Coloring    mapcolor.Result
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	ClusterCount  int
	Detected      bool // Clusters came from community detection
	LaidOut       int  // Clusters that got a computed local layout
	Enriched      int  // Nodes that received table attributes
	PrepareTime   time.Duration
	LayoutTime    time.Duration
	PackTime      time.Duration
	ComposeTime   time.Duration
	PartitionTime time.Duration
	ColorTime     time.Duration
	TotalTime     time.Duration
}

// Warning is a recovered data-quality problem recorded during a run.
type Warning struct {
	Code    apperrors.Code
	Message string
	IDs     []string
}

func warningOf(e *apperrors.Error) Warning {
	return Warning{Code: e.Code, Message: e.Message, IDs: e.IDs}
}

// Doc converts the warning to its map document form.
func (w Warning) Doc() graph.Warning {
	return graph.Warning{Code: string(w.Code), Message: w.Message, IDs: w.IDs}
}

func warningsFromDoc(ws []graph.Warning) []Warning {
	out := make([]Warning, len(ws))
	for i, w := range ws {
		out[i] = Warning{Code: apperrors.Code(w.Code), Message: w.Message, IDs: w.IDs}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option ranges and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperrors.New(apperrors.ErrCodeInvalidConfig,
				"invalid %s: %v (must satisfy %s)", fe.Field(), fe.Value(), fe.ActualTag())
		}
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "invalid options")
	}
	if o.Target != ([4]float64{}) && (o.Target[0] >= o.Target[2] || o.Target[1] >= o.Target[3]) {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "invalid target %v: min must be below max", o.Target)
	}

	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Region == "" {
		o.Region = DefaultRegion
	}
	if o.Fallback == "" {
		o.Fallback = DefaultFallback
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Unvalidated returns a copy of o that [Options.ValidateAndSetDefaults]
// checks again. Use it before overriding fields of validated options.
func (o Options) Unvalidated() Options {
	o.validated = false
	return o
}

// TargetBound returns the canvas rectangle.
func (o *Options) TargetBound() orb.Bound {
	if o.Target == ([4]float64{}) {
		return compose.DefaultTarget
	}
	return orb.Bound{Min: orb.Point{o.Target[0], o.Target[1]}, Max: orb.Point{o.Target[2], o.Target[3]}}
}

// PackOptions returns the cluster packer configuration.
func (o *Options) PackOptions() pack.Options {
	p := pack.DefaultOptions()
	if o.TopK > 0 {
		p.TopK = o.TopK
	}
	p.Seed.Seed = o.Seed
	p.Collide.Seed = o.Seed
	if o.Ticks > 0 {
		p.Collide.Ticks = o.Ticks
	}
	if o.Iterations > 0 {
		p.Collide.Iterations = o.Iterations
	}
	if o.Strength > 0 {
		p.Collide.Strength = o.Strength
	}
	if o.VelocityDecay > 0 {
		p.Collide.VelocityDecay = o.VelocityDecay
	}
	if o.Padding > 0 {
		p.Collide.Padding = o.Padding
	}
	p.Logger = o.Logger
	return p
}

// PartitionOptions returns the territory partitioner configuration.
//
// A bbox region without explicit padding clips to the canvas itself, so
// territories never reach past the target rectangle. Setting RegionPadding
// clips to the padded bounding box of the composed nodes instead.
func (o *Options) PartitionOptions() territory.Options {
	p := territory.Options{
		Region:   territory.RegionMode(o.Region),
		Padding:  territory.DefaultPadding,
		Simplify: o.Simplify,
		Logger:   o.Logger,
	}
	if o.RegionPadding > 0 {
		p.Padding = o.RegionPadding
	} else if p.Region == territory.RegionBBox || p.Region == "" {
		t := o.TargetBound()
		p.Bounds = &t
	}
	return p
}

// ColorOptions returns the map colorer configuration.
func (o *Options) ColorOptions() mapcolor.Options {
	return mapcolor.Options{
		Colors:   o.Colors,
		MaxSteps: o.MaxSteps,
		Budget:   time.Duration(o.BudgetMS) * time.Millisecond,
		Fallback: mapcolor.Policy(o.Fallback),
	}
}

// MapKeyOpts returns cache key options for the rendered map.
func (o *Options) MapKeyOpts() cache.MapKeyOpts {
	p := o.PackOptions()
	c := o.ColorOptions()
	t := o.TargetBound()
	return cache.MapKeyOpts{
		TopK:          p.TopK,
		Seed:          o.Seed,
		Ticks:         p.Collide.Ticks,
		Iterations:    p.Collide.Iterations,
		Strength:      p.Collide.Strength,
		VelocityDecay: p.Collide.VelocityDecay,
		Padding:       p.Collide.Padding,
		Target:        [4]float64{t.Min[0], t.Min[1], t.Max[0], t.Max[1]},
		Region:        o.Region,
		RegionPadding: o.PartitionOptions().Padding,
		Simplify:      o.Simplify,
		Colors:        c.Colors,
		MaxSteps:      c.MaxSteps,
		Fallback:      string(c.Fallback),
	}
}
