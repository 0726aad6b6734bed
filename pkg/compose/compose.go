// Package compose places every node on the final canvas.
//
// Composition happens in two steps. Each node is first translated so that
// its cluster's local bounding-box center lands on the cluster's packed
// center. A single global affine [Transform] then maps the union of all
// coordinates into the target rectangle.
package compose

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
	"github.com/matzehuels/graphmap/pkg/mapgraph"
	"github.com/matzehuels/graphmap/pkg/pack"
)

// DefaultTarget is the canvas rectangle used when none is configured: a
// world map in degrees.
var DefaultTarget = orb.Bound{Min: orb.Point{-90, -45}, Max: orb.Point{90, 45}}

// Options configures [Compose].
type Options struct {
	// Target is the rectangle coordinates are mapped into. The zero value
	// means DefaultTarget.
	Target orb.Bound
	// Logger receives warnings about degenerate axes. Nil discards them.
	Logger *log.Logger
}

// Composition is the result of [Compose].
type Composition struct {
	// Positions holds the final coordinate of every node, indexed like
	// Snapshot.Nodes().
	Positions []r2.Vec
	// Transform maps recentered coordinates onto the canvas.
	Transform Transform
	// Warnings lists degenerate axes, as GEOMETRY_DEGENERATE errors.
	Warnings []*apperrors.Error
}

// Points returns the positions as orb points.
func (c Composition) Points() []orb.Point {
	out := make([]orb.Point, len(c.Positions))
	for i, p := range c.Positions {
		out[i] = orb.Point{p.X, p.Y}
	}
	return out
}

// Compose recenters each cluster on its packed center and fits the result
// into the target rectangle.
func Compose(s *mapgraph.Snapshot, local, centers []r2.Vec, opts Options) Composition {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	target := opts.Target
	if target.IsEmpty() {
		target = DefaultTarget
	}

	placed := Recenter(s, local, centers)
	tr, degenerate := Fit(placed, target)
	comp := Composition{Positions: make([]r2.Vec, len(placed)), Transform: tr}
	for i, p := range placed {
		comp.Positions[i] = tr.Apply(p)
	}
	for _, axis := range degenerate {
		w := apperrors.New(apperrors.ErrCodeGeometryDegenerate,
			"all coordinates share one %s value, using identity scale", axis)
		logger.Warn("degenerate composition axis", "axis", axis)
		comp.Warnings = append(comp.Warnings, w)
	}
	return comp
}

// Recenter translates every node so that its cluster's local bounding-box
// center coincides with the packed cluster center.
func Recenter(s *mapgraph.Snapshot, local, centers []r2.Vec) []r2.Vec {
	out := make([]r2.Vec, s.NodeCount())
	for c, cl := range s.Clusters() {
		pts := make([]r2.Vec, len(cl.Members))
		for k, i := range cl.Members {
			pts[k] = local[i]
		}
		min, max := pack.Bounds(pts)
		mid := r2.Scale(0.5, r2.Add(min, max))
		shift := r2.Sub(centers[c], mid)
		for _, i := range cl.Members {
			out[i] = r2.Add(local[i], shift)
		}
	}
	return out
}

// Transform is the affine map p' = (p + Offset) / Factor + Center, applied
// per axis.
type Transform struct {
	Offset r2.Vec
	Factor r2.Vec
	Center r2.Vec
}

// Identity is the transform that leaves points unchanged.
var Identity = Transform{Factor: r2.Vec{X: 1, Y: 1}}

// Apply maps p onto the canvas.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: (p.X+t.Offset.X)/t.Factor.X + t.Center.X,
		Y: (p.Y+t.Offset.Y)/t.Factor.Y + t.Center.Y,
	}
}

// Invert maps a canvas point back to packed coordinates.
func (t Transform) Invert(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: (p.X-t.Center.X)*t.Factor.X - t.Offset.X,
		Y: (p.Y-t.Center.Y)*t.Factor.Y - t.Offset.Y,
	}
}

// Fit returns the transform mapping the bounding box of pts onto target,
// together with the names of degenerate axes ("x", "y") that got factor 1.
func Fit(pts []r2.Vec, target orb.Bound) (Transform, []string) {
	tr := Identity
	tr.Center = r2.Vec{X: (target.Min[0] + target.Max[0]) / 2, Y: (target.Min[1] + target.Max[1]) / 2}
	if len(pts) == 0 {
		return tr, nil
	}
	min, max := pack.Bounds(pts)
	half := r2.Vec{X: (target.Max[0] - target.Min[0]) / 2, Y: (target.Max[1] - target.Min[1]) / 2}

	var degenerate []string
	tr.Offset = r2.Scale(-0.5, r2.Add(max, min))
	tr.Factor.X, degenerate = axisFactor(max.X-min.X, half.X, "x", degenerate)
	tr.Factor.Y, degenerate = axisFactor(max.Y-min.Y, half.Y, "y", degenerate)
	return tr, degenerate
}

func axisFactor(extent, half float64, name string, degenerate []string) (float64, []string) {
	f := (extent / 2) / half
	if extent <= 0 || half <= 0 || math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 1, append(degenerate, name)
	}
	return f, degenerate
}
