package geom

import "github.com/paulmach/orb"

// Boundary labels a cell edge that lies on the clip region boundary.
const Boundary = -1

// labeled is an open polygon whose edge i runs from pts[i] to
// pts[(i+1)%n] and carries labels[i].
type labeled struct {
	pts    []orb.Point
	labels []int
}

func newLabeled(r orb.Ring, label int) labeled {
	pts := append([]orb.Point(nil), Open(r)...)
	labels := make([]int, len(pts))
	for i := range labels {
		labels[i] = label
	}
	return labeled{pts: pts, labels: labels}
}

// clipBisector clips p to the half-plane of points at least as close to s as
// to t. The new edge along the bisector is labeled with label.
func clipBisector(p labeled, s, t orb.Point, label int) labeled {
	m := orb.Point{(s[0] + t[0]) / 2, (s[1] + t[1]) / 2}
	d := orb.Point{t[0] - s[0], t[1] - s[1]}
	return clipHalfPlane(p, func(q orb.Point) float64 {
		return (q[0]-m[0])*d[0] + (q[1]-m[1])*d[1]
	}, label)
}

// clipHalfPlane keeps the part of p where side(q) <= 0 (Sutherland-Hodgman
// for a single plane). Edge labels follow the segments they came from.
func clipHalfPlane(p labeled, side func(orb.Point) float64, label int) labeled {
	n := len(p.pts)
	if n == 0 {
		return p
	}
	out := labeled{
		pts:    make([]orb.Point, 0, n+2),
		labels: make([]int, 0, n+2),
	}
	emit := func(q orb.Point, l int) {
		out.pts = append(out.pts, q)
		out.labels = append(out.labels, l)
	}
	for k := 0; k < n; k++ {
		a, b := p.pts[k], p.pts[(k+1)%n]
		sa, sb := side(a), side(b)
		inA, inB := sa <= Epsilon, sb <= Epsilon
		switch {
		case inA && inB:
			emit(a, p.labels[k])
		case inA && !inB:
			emit(a, p.labels[k])
			emit(lerp(a, b, sa/(sa-sb)), label)
		case !inA && inB:
			emit(lerp(a, b, sa/(sa-sb)), p.labels[k])
		}
	}
	return dedupe(out)
}

func lerp(a, b orb.Point, t float64) orb.Point {
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
}

// dedupe merges consecutive near-coincident vertices. The zero-length edge
// is dropped and the later vertex keeps its label.
func dedupe(p labeled) labeled {
	const tol = 1e-12
	changed := true
	for changed && len(p.pts) > 0 {
		changed = false
		n := len(p.pts)
		for k := 0; k < n; k++ {
			next := (k + 1) % n
			if next == k || !Near(p.pts[k], p.pts[next], tol) {
				continue
			}
			p.pts = append(p.pts[:k], p.pts[k+1:]...)
			p.labels = append(p.labels[:k], p.labels[k+1:]...)
			changed = true
			break
		}
	}
	if len(p.pts) < 3 {
		return labeled{}
	}
	return p
}
