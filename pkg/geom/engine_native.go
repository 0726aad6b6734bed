//go:build !geos

package geom

import "github.com/paulmach/orb"

// UnionEngine names the polygon boolean backend compiled in. Build with
// -tags geos to use GEOS instead.
const UnionEngine = "edge-cancel"

// Union merges the cells of members with [Dissolve].
func Union(cells []Cell, members []int, tol float64) (Dissolved, error) {
	return Dissolve(cells, members, tol)
}

// BufferedHull returns the convex hull of pts grown outward by dist. The
// result approximates the Minkowski sum of the hull and a disc, sampled with
// segments points per circle.
func BufferedHull(pts []orb.Point, dist float64, segments int) orb.Ring {
	if segments < 4 {
		segments = DefaultBufferSegments
	}
	if dist <= 0 {
		return ConvexHull(pts)
	}
	return sampledBufferedHull(pts, dist, segments)
}
