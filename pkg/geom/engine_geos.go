//go:build geos

package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"
)

// UnionEngine names the polygon boolean backend compiled in.
const UnionEngine = "geos"

// ErrGEOS wraps a failure reported by the GEOS library.
var ErrGEOS = errors.New("geom: geos")

// Union merges the cells of members with a GEOS unary union. Coordinates
// are snapped to a grid of size tol first, which closes the floating point
// gaps between neighboring cells. The result follows the [Dissolved]
// conventions of [Dissolve].
func Union(cells []Cell, members []int, tol float64) (d Dissolved, err error) {
	ctx := geos.NewContext()
	var polys []*geos.Geom
	for _, m := range members {
		if c := cells[m]; !c.Empty() {
			polys = append(polys, ctx.NewPolygon([][][]float64{toCoords(c.Ring)}))
		}
	}
	if len(polys) == 0 {
		return Dissolved{}, ErrEmptyGroup
	}
	// go-geos panics with the GEOS error message.
	defer func() {
		if r := recover(); r != nil {
			d, err = Dissolved{}, fmt.Errorf("%w: %v", ErrGEOS, r)
		}
	}()

	all := ctx.NewCollection(geos.TypeIDMultiPolygon, polys)
	var u *geos.Geom
	if tol > 0 {
		u = all.UnaryUnionPrec(tol)
	} else {
		u = all.UnaryUnion()
	}
	if u == nil || u.IsEmpty() {
		return Dissolved{}, ErrNoOuterRing
	}

	var parts []*geos.Geom
	switch u.TypeID() {
	case geos.TypeIDPolygon:
		parts = []*geos.Geom{u}
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		for i := range u.NumGeometries() {
			if p := u.Geometry(i); p.TypeID() == geos.TypeIDPolygon && !p.IsEmpty() {
				parts = append(parts, p)
			}
		}
	}
	if len(parts) == 0 {
		return Dissolved{}, ErrNoOuterRing
	}

	best, bestArea, total := 0, 0.0, 0.0
	for i, p := range parts {
		a := p.Area()
		total += a
		if a > bestArea {
			best, bestArea = i, a
		}
	}
	return Dissolved{Polygon: fromPolygon(parts[best]), Parts: len(parts), DroppedArea: total - bestArea}, nil
}

// BufferedHull returns the convex hull of pts grown outward by dist with a
// GEOS buffer, using segments points per circle.
func BufferedHull(pts []orb.Point, dist float64, segments int) (r orb.Ring) {
	if segments < 4 {
		segments = DefaultBufferSegments
	}
	if dist <= 0 || len(pts) == 0 {
		return ConvexHull(pts)
	}
	defer func() {
		if recover() != nil {
			r = sampledBufferedHull(pts, dist, segments)
		}
	}()
	ctx := geos.NewContext()
	coords := make([][]float64, len(pts))
	for i, p := range pts {
		coords[i] = []float64{p[0], p[1]}
	}
	mp := ctx.NewCollection(geos.TypeIDMultiPoint, ctx.NewPoints(coords))
	buf := mp.ConvexHull().Buffer(dist, max(1, segments/4))
	if buf.TypeID() != geos.TypeIDPolygon || buf.IsEmpty() {
		return sampledBufferedHull(pts, dist, segments)
	}
	return orient(fromRing(buf.ExteriorRing()), true)
}

func toCoords(r orb.Ring) [][]float64 {
	r = Close(r)
	out := make([][]float64, len(r))
	for i, p := range r {
		out[i] = []float64{p[0], p[1]}
	}
	return out
}

func fromRing(g *geos.Geom) orb.Ring {
	coords := g.CoordSeq().ToCoords()
	r := make(orb.Ring, len(coords))
	for i, c := range coords {
		r[i] = orb.Point{c[0], c[1]}
	}
	return Close(r)
}

// fromPolygon converts a GEOS polygon to an orb polygon with a
// counter-clockwise shell and clockwise holes.
func fromPolygon(g *geos.Geom) orb.Polygon {
	poly := orb.Polygon{orient(fromRing(g.ExteriorRing()), true)}
	for i := range g.NumInteriorRings() {
		poly = append(poly, orient(fromRing(g.InteriorRing(i)), false))
	}
	return poly
}

func orient(r orb.Ring, ccw bool) orb.Ring {
	if a := SignedArea(r); a != 0 && math.Signbit(a) == ccw {
		r.Reverse()
	}
	return r
}
