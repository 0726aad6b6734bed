package geom

import "github.com/paulmach/orb"

// Touches reports whether polygons a and b share boundary within tol: their
// bounds intersect after padding and some pair of boundary segments lies
// within tol of each other.
func Touches(a, b orb.Polygon, tol float64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if !a.Bound().Pad(tol).Intersects(b.Bound()) {
		return false
	}
	for _, ra := range a {
		for i := 0; i+1 < len(ra); i++ {
			p, q := ra[i], ra[i+1]
			sb := orb.Bound{Min: p, Max: p}.Extend(q).Pad(tol)
			for _, rb := range b {
				for j := 0; j+1 < len(rb); j++ {
					r, s := rb[j], rb[j+1]
					if !sb.Intersects(orb.Bound{Min: r, Max: r}.Extend(s)) {
						continue
					}
					if SegmentDist(p, q, r, s) <= tol {
						return true
					}
				}
			}
		}
	}
	return false
}
