//go:build !geos

package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func TestUnion_IsDissolve(t *testing.T) {
	if UnionEngine != "edge-cancel" {
		t.Fatalf("UnionEngine = %q", UnionEngine)
	}
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4, 4}}
	tess := Voronoi(randomSites(12, 9, b), PaddedBound(b, 0))
	members := []int{0, 1, 2, 3, 4, 5}
	u, errU := Union(tess.Cells, members, 1e-7)
	d, errD := Dissolve(tess.Cells, members, 1e-7)
	if (errU == nil) != (errD == nil) {
		t.Fatalf("errors differ: %v vs %v", errU, errD)
	}
	if u.Parts != d.Parts || planar.Area(u.Polygon) != planar.Area(d.Polygon) {
		t.Errorf("Union = %+v, Dissolve = %+v", u, d)
	}
}
