package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Epsilon is the absolute tolerance used for point coincidence and
// half-plane side tests.
const Epsilon = 1e-9

// SignedArea returns the signed area of r: positive for counter-clockwise
// rings. r may be open or closed.
func SignedArea(r orb.Ring) float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return sum / 2
}

// Close returns r with its first point appended when r is not already
// closed.
func Close(r orb.Ring) orb.Ring {
	if len(r) == 0 || r.Closed() {
		return r
	}
	return append(r, r[0])
}

// Open returns r without its closing point.
func Open(r orb.Ring) orb.Ring {
	if len(r) > 1 && r.Closed() {
		return r[:len(r)-1]
	}
	return r
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b orb.Point) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}

// Near reports whether a and b coincide within tol.
func Near(a, b orb.Point, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol
}

// PointSegmentDist returns the distance from p to segment ab.
func PointSegmentDist(p, a, b orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return Dist(p, a)
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return Dist(p, orb.Point{a[0] + t*dx, a[1] + t*dy})
}

// SegmentDist returns the minimum distance between segments ab and cd.
func SegmentDist(a, b, c, d orb.Point) float64 {
	if segmentsIntersect(a, b, c, d) {
		return 0
	}
	return math.Min(
		math.Min(PointSegmentDist(a, c, d), PointSegmentDist(b, c, d)),
		math.Min(PointSegmentDist(c, a, b), PointSegmentDist(d, a, b)),
	)
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func segmentsIntersect(a, b, c, d orb.Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// ConvexContains reports whether p lies inside or on the convex
// counter-clockwise ring r, within tol.
func ConvexContains(r orb.Ring, p orb.Point, tol float64) bool {
	r = Open(r)
	n := len(r)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		l := Dist(a, b)
		if l == 0 {
			continue
		}
		if cross(a, b, p)/l < -tol {
			return false
		}
	}
	return true
}
