package geom

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var (
	// ErrEmptyGroup is returned by [Dissolve] when no member has a cell.
	ErrEmptyGroup = errors.New("geom: group has no cells")

	// ErrBrokenRing is returned by [Dissolve] when the boundary edges do not
	// chain into closed rings.
	ErrBrokenRing = errors.New("geom: boundary does not close")

	// ErrNoOuterRing is returned by [Dissolve] when every chained ring is a
	// hole or has no area.
	ErrNoOuterRing = errors.New("geom: no outer ring")
)

// Dissolved is the merged polygon of a group of cells.
type Dissolved struct {
	// Polygon is the largest outer ring followed by the holes inside it.
	Polygon orb.Polygon
	// Parts is the number of outer rings found. Parts > 1 means the group
	// was not contiguous and smaller parts were dropped.
	Parts int
	// DroppedArea is the total area of the dropped parts.
	DroppedArea float64
}

type edge struct {
	a, b orb.Point
}

// Dissolve merges the cells of members into a single polygon. Edges labeled
// with another member cancel out; the rest are chained into rings, with
// endpoints matched within tol.
func Dissolve(cells []Cell, members []int, tol float64) (Dissolved, error) {
	in := make(map[int]bool, len(members))
	for _, m := range members {
		in[m] = true
	}

	var edges []edge
	for _, m := range members {
		c := cells[m]
		if c.Empty() {
			continue
		}
		for i, l := range c.Labels {
			if i+1 >= len(c.Ring) {
				break
			}
			if l != Boundary && in[l] {
				continue
			}
			if Dist(c.Ring[i], c.Ring[i+1]) <= tol {
				continue
			}
			edges = append(edges, edge{a: c.Ring[i], b: c.Ring[i+1]})
		}
	}
	if len(edges) == 0 {
		return Dissolved{}, ErrEmptyGroup
	}

	rings, err := chain(edges, tol)
	if err != nil {
		return Dissolved{}, err
	}

	var outers, holes []orb.Ring
	for _, r := range rings {
		switch a := SignedArea(r); {
		case a > 0:
			outers = append(outers, r)
		case a < 0:
			holes = append(holes, r)
		}
	}
	if len(outers) == 0 {
		return Dissolved{}, ErrNoOuterRing
	}

	best, bestArea, total := 0, 0.0, 0.0
	for i, r := range outers {
		a := planar.Area(r)
		total += a
		if a > bestArea {
			best, bestArea = i, a
		}
	}
	poly := orb.Polygon{outers[best]}
	for _, h := range holes {
		if planar.RingContains(outers[best], h[0]) {
			poly = append(poly, h)
		}
	}
	return Dissolved{Polygon: poly, Parts: len(outers), DroppedArea: total - bestArea}, nil
}

// LargestCell returns the member cell with the largest area as a polygon.
func LargestCell(cells []Cell, members []int) (orb.Polygon, bool) {
	best, bestArea := -1, 0.0
	for _, m := range members {
		if cells[m].Empty() {
			continue
		}
		if a := planar.Area(cells[m].Ring); best < 0 || a > bestArea {
			best, bestArea = m, a
		}
	}
	if best < 0 {
		return nil, false
	}
	return orb.Polygon{cells[best].Ring.Clone()}, true
}

// chain links directed edges head to tail into closed rings.
func chain(edges []edge, tol float64) ([]orb.Ring, error) {
	if tol <= 0 {
		tol = Epsilon
	}
	grid := 2 * tol
	key := func(p orb.Point) [2]int64 {
		return [2]int64{int64(math.Floor(p[0] / grid)), int64(math.Floor(p[1] / grid))}
	}
	starts := make(map[[2]int64][]int, len(edges))
	for i, e := range edges {
		k := key(e.a)
		starts[k] = append(starts[k], i)
	}
	used := make([]bool, len(edges))

	next := func(cur edge) int {
		k := key(cur.b)
		best, bestTurn := -1, math.Inf(1)
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for _, j := range starts[[2]int64{k[0] + dx, k[1] + dy}] {
					if used[j] || !Near(edges[j].a, cur.b, tol) {
						continue
					}
					// Prefer the most clockwise continuation so that rings
					// touching at a single vertex stay separate.
					if t := turn(cur, edges[j]); t < bestTurn {
						best, bestTurn = j, t
					}
				}
			}
		}
		return best
	}

	var rings []orb.Ring
	for i := range edges {
		if used[i] {
			continue
		}
		used[i] = true
		start := edges[i]
		ring := orb.Ring{start.a}
		cur := start
		for !Near(cur.b, start.a, tol) {
			j := next(cur)
			if j < 0 {
				return nil, ErrBrokenRing
			}
			used[j] = true
			ring = append(ring, edges[j].a)
			cur = edges[j]
		}
		if len(ring) >= 3 {
			rings = append(rings, append(ring, ring[0]))
		}
	}
	return rings, nil
}

func turn(in, out edge) float64 {
	ux, uy := in.b[0]-in.a[0], in.b[1]-in.a[1]
	vx, vy := out.b[0]-out.a[0], out.b[1]-out.a[1]
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}
