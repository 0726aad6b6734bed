package geom

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/fogleman/delaunay"
	"github.com/paulmach/orb"
)

// Cell is the bounded Voronoi cell of one site.
//
// Ring is closed and counter-clockwise. Labels[i] is the provenance of the
// edge Ring[i]→Ring[i+1]: the index of the site across that edge, or
// [Boundary]. A skipped site has an empty Ring.
type Cell struct {
	Site   int
	Ring   orb.Ring
	Labels []int
}

// Empty reports whether the cell has no area.
func (c Cell) Empty() bool { return len(c.Ring) < 4 }

// SkipReason explains why a site got no cell.
type SkipReason int

const (
	// SkipDuplicate marks a site coincident with an earlier site.
	SkipDuplicate SkipReason = iota + 1
	// SkipOutside marks a site outside the clip region.
	SkipOutside
	// SkipDegenerate marks a site whose clipped cell collapsed.
	SkipDegenerate
)

func (r SkipReason) String() string {
	switch r {
	case SkipDuplicate:
		return "duplicate site"
	case SkipOutside:
		return "site outside region"
	case SkipDegenerate:
		return "degenerate cell"
	default:
		return fmt.Sprintf("SkipReason(%d)", int(r))
	}
}

// Skipped records a site that produced no cell.
type Skipped struct {
	Site   int
	Reason SkipReason
}

// Tessellation is the result of [Voronoi].
type Tessellation struct {
	// Cells is indexed by site.
	Cells []Cell
	// Skipped lists sites without a cell, in site order.
	Skipped []Skipped
	// Triangulated is false when the Delaunay triangulation failed and
	// every site was used as a neighbor candidate.
	Triangulated bool
}

// Voronoi returns the Voronoi cells of sites clipped to the convex
// counter-clockwise region.
//
// Neighbor candidates come from the Delaunay triangulation of the accepted
// sites. When triangulation fails (fewer than three sites, or all collinear)
// every other accepted site is a candidate, which is exact but quadratic.
func Voronoi(sites []orb.Point, region orb.Ring) Tessellation {
	t := Tessellation{Cells: make([]Cell, len(sites))}
	for i := range t.Cells {
		t.Cells[i].Site = i
	}

	scale := regionScale(region)
	tol := Epsilon * scale
	seen := make(map[[2]int64]int)
	var accepted []int
	for i, p := range sites {
		if !ConvexContains(region, p, tol) {
			t.Skipped = append(t.Skipped, Skipped{Site: i, Reason: SkipOutside})
			continue
		}
		key := quantize(p, tol)
		if _, dup := seen[key]; dup {
			t.Skipped = append(t.Skipped, Skipped{Site: i, Reason: SkipDuplicate})
			continue
		}
		seen[key] = i
		accepted = append(accepted, i)
	}

	neighbors, ok := delaunayNeighbors(sites, accepted)
	t.Triangulated = ok

	for _, i := range accepted {
		cell := newLabeled(region, Boundary)
		cands := neighbors[i]
		if !ok {
			cands = accepted
		}
		// Nearest first keeps intermediate polygons small.
		cands = slices.Clone(cands)
		slices.SortFunc(cands, func(a, b int) int {
			return cmp.Compare(Dist(sites[i], sites[a]), Dist(sites[i], sites[b]))
		})
		for _, j := range cands {
			if j == i {
				continue
			}
			cell = clipBisector(cell, sites[i], sites[j], j)
			if len(cell.pts) == 0 {
				break
			}
		}
		if len(cell.pts) == 0 {
			t.Skipped = append(t.Skipped, Skipped{Site: i, Reason: SkipDegenerate})
			continue
		}
		// One closing point per cell keeps Labels[i] on edge i even when
		// the first and last vertex coincide.
		t.Cells[i].Ring = append(orb.Ring(slices.Clone(cell.pts)), cell.pts[0])
		t.Cells[i].Labels = cell.labels
	}
	slices.SortFunc(t.Skipped, func(a, b Skipped) int { return a.Site - b.Site })
	return t
}

// delaunayNeighbors maps each accepted site to its Delaunay neighbors. It
// reports false when the triangulation failed.
func delaunayNeighbors(sites []orb.Point, accepted []int) (map[int][]int, bool) {
	if len(accepted) < 3 {
		return nil, false
	}
	pts := make([]delaunay.Point, len(accepted))
	for k, i := range accepted {
		pts[k] = delaunay.Point{X: sites[i][0], Y: sites[i][1]}
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil || len(tri.Triangles) == 0 {
		return nil, false
	}

	sets := make(map[int]map[int]struct{}, len(accepted))
	link := func(a, b int) {
		if sets[a] == nil {
			sets[a] = make(map[int]struct{})
		}
		sets[a][b] = struct{}{}
	}
	for k := 0; k+2 < len(tri.Triangles); k += 3 {
		a := accepted[tri.Triangles[k]]
		b := accepted[tri.Triangles[k+1]]
		c := accepted[tri.Triangles[k+2]]
		link(a, b)
		link(b, a)
		link(b, c)
		link(c, b)
		link(c, a)
		link(a, c)
	}
	out := make(map[int][]int, len(sets))
	for i, set := range sets {
		ns := make([]int, 0, len(set))
		for j := range set {
			ns = append(ns, j)
		}
		slices.Sort(ns)
		out[i] = ns
	}
	for _, i := range accepted {
		if len(out[i]) == 0 {
			// A site left out of every triangle: triangulation is unusable.
			return nil, false
		}
	}
	return out, true
}

func regionScale(r orb.Ring) float64 {
	b := r.Bound()
	s := math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	if s <= 0 {
		return 1
	}
	return s
}

func quantize(p orb.Point, tol float64) [2]int64 {
	return [2]int64{int64(math.Round(p[0] / tol)), int64(math.Round(p[1] / tol))}
}
