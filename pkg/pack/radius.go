package pack

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/graphmap/pkg/mapgraph"
)

// Radius returns half the diagonal of the bounding box of pts. Empty,
// single-point and coincident inputs have radius 0.
func Radius(pts []r2.Vec) float64 {
	if len(pts) < 2 {
		return 0
	}
	min, max := Bounds(pts)
	return math.Hypot(max.X-min.X, max.Y-min.Y) / 2
}

// Bounds returns the component-wise minimum and maximum of pts.
func Bounds(pts []r2.Vec) (min, max r2.Vec) {
	if len(pts) == 0 {
		return r2.Vec{}, r2.Vec{}
	}
	min, max = pts[0], pts[0]
	for _, p := range pts[1:] {
		min.X, min.Y = math.Min(min.X, p.X), math.Min(min.Y, p.Y)
		max.X, max.Y = math.Max(max.X, p.X), math.Max(max.Y, p.Y)
	}
	return min, max
}

// Radii returns the radius of every cluster of s given per-node local
// coordinates indexed like s.Nodes().
func Radii(s *mapgraph.Snapshot, local []r2.Vec) []float64 {
	out := make([]float64, s.ClusterCount())
	for c, cl := range s.Clusters() {
		pts := make([]r2.Vec, len(cl.Members))
		for k, i := range cl.Members {
			pts[k] = local[i]
		}
		out[c] = Radius(pts)
	}
	return out
}
