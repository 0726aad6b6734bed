package geom

import (
	"cmp"
	"math"
	"slices"

	"github.com/paulmach/orb"
)

// DefaultBufferSegments is the number of samples per full circle used by
// BufferedHull.
const DefaultBufferSegments = 16

// ConvexHull returns the closed counter-clockwise convex hull of pts using
// Andrew's monotone chain. Collinear points are dropped. Fewer than three
// distinct points yield a degenerate ring of those points.
func ConvexHull(pts []orb.Point) orb.Ring {
	ps := slices.Clone(pts)
	slices.SortFunc(ps, func(a, b orb.Point) int {
		return cmp.Or(cmp.Compare(a[0], b[0]), cmp.Compare(a[1], b[1]))
	})
	ps = slices.Compact(ps)
	if len(ps) < 3 {
		return Close(orb.Ring(ps))
	}

	hull := make(orb.Ring, 0, 2*len(ps))
	for _, p := range ps {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(ps) - 2; i >= 0; i-- {
		p := ps[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// The last point equals the first, so the ring is already closed.
	return hull
}

// sampledBufferedHull grows the hull of pts by sampling a circle of radius
// dist around every hull vertex.
func sampledBufferedHull(pts []orb.Point, dist float64, segments int) orb.Ring {
	hull := Open(ConvexHull(pts))
	grown := make([]orb.Point, 0, len(hull)*segments)
	for _, p := range hull {
		for k := 0; k < segments; k++ {
			a := 2 * math.Pi * float64(k) / float64(segments)
			grown = append(grown, orb.Point{p[0] + dist*math.Cos(a), p[1] + dist*math.Sin(a)})
		}
	}
	return ConvexHull(grown)
}

// PaddedBound returns the closed counter-clockwise ring of b grown by pad on
// every side.
func PaddedBound(b orb.Bound, pad float64) orb.Ring {
	b = b.Pad(pad)
	return orb.Ring{
		{b.Min[0], b.Min[1]},
		{b.Max[0], b.Min[1]},
		{b.Max[0], b.Max[1]},
		{b.Min[0], b.Max[1]},
		{b.Min[0], b.Min[1]},
	}
}

// BoundOf returns the bounding box of pts.
func BoundOf(pts []orb.Point) orb.Bound {
	return orb.MultiPoint(pts).Bound()
}
