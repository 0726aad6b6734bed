//go:build geos

package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func TestUnion_AgreesWithDissolve(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}
	sites := randomSites(60, 5, b)
	tess := Voronoi(sites, PaddedBound(b, 0.5))
	var members []int
	for i, p := range sites {
		if p[0] < 5 {
			members = append(members, i)
		}
	}

	want, err := Dissolve(tess.Cells, members, 1e-7)
	if err != nil {
		t.Fatalf("Dissolve() error = %v", err)
	}
	got, err := Union(tess.Cells, members, 1e-7)
	if err != nil {
		t.Fatalf("Union() error = %v", err)
	}
	if got.Parts != want.Parts {
		t.Errorf("Parts = %d, want %d", got.Parts, want.Parts)
	}
	if a, w := planar.Area(got.Polygon), planar.Area(want.Polygon); math.Abs(a-w) > 1e-5 {
		t.Errorf("area = %v, want %v", a, w)
	}
}

func TestBufferedHull_MatchesSampled(t *testing.T) {
	pts := []orb.Point{{0, 0}, {4, 0}, {2, 3}}
	got := planar.Area(BufferedHull(pts, 1, 32))
	want := planar.Area(sampledBufferedHull(pts, 1, 32))
	if math.Abs(got-want) > 0.05*want {
		t.Errorf("GEOS buffer area = %v, sampled %v", got, want)
	}
}
