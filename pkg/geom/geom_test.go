package geom

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func randomSites(n int, seed uint64, b orb.Bound) []orb.Point {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	pts := make([]orb.Point, n)
	for i := range pts {
		pts[i] = orb.Point{
			b.Min[0] + rng.Float64()*(b.Max[0]-b.Min[0]),
			b.Min[1] + rng.Float64()*(b.Max[1]-b.Min[1]),
		}
	}
	return pts
}

func TestSignedArea(t *testing.T) {
	ccw := orb.Ring{{0, 0}, {2, 0}, {2, 1}, {0, 1}, {0, 0}}
	if got := SignedArea(ccw); got != 2 {
		t.Errorf("SignedArea(ccw) = %v, want 2", got)
	}
	cw := orb.Ring{{0, 0}, {0, 1}, {2, 1}, {2, 0}, {0, 0}}
	if got := SignedArea(cw); got != -2 {
		t.Errorf("SignedArea(cw) = %v, want -2", got)
	}
}

func TestConvexHull(t *testing.T) {
	pts := []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}, {0.5, 0}}
	hull := ConvexHull(pts)
	if !hull.Closed() {
		t.Fatal("hull not closed")
	}
	if len(hull) != 5 {
		t.Errorf("hull has %d points, want 5 (interior and collinear points dropped)", len(hull))
	}
	if a := SignedArea(hull); math.Abs(a-1) > 1e-12 {
		t.Errorf("hull area = %v, want 1 (counter-clockwise)", a)
	}
}

func TestBufferedHull(t *testing.T) {
	pts := []orb.Point{{0, 0}, {4, 0}, {2, 3}}
	r := BufferedHull(pts, 1, 16)
	for _, p := range pts {
		if PointSegmentDist(p, r[0], r[1]) < 0.9 {
			t.Errorf("point %v is within 0.9 of the buffered boundary", p)
		}
		if !ConvexContains(r, p, 0) {
			t.Errorf("buffered hull does not contain %v", p)
		}
	}
	single := BufferedHull([]orb.Point{{5, 5}}, 2, 8)
	if a := SignedArea(single); a <= 0 {
		t.Errorf("buffered single point area = %v, want > 0", a)
	}
}

func TestPaddedBound(t *testing.T) {
	r := PaddedBound(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 1}}, 1)
	if a := SignedArea(r); a != 12 {
		t.Errorf("area = %v, want 12", a)
	}
}

func TestVoronoi_TwoSites(t *testing.T) {
	region := PaddedBound(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 1}}, 0)
	tess := Voronoi([]orb.Point{{0.5, 0.5}, {1.5, 0.5}}, region)

	if tess.Triangulated {
		t.Error("two sites cannot be triangulated")
	}
	for i, c := range tess.Cells {
		if a := planar.Area(c.Ring); math.Abs(a-1) > 1e-9 {
			t.Errorf("cell %d area = %v, want 1", i, a)
		}
	}
	var shared int
	for _, l := range tess.Cells[0].Labels {
		if l == 1 {
			shared++
		}
	}
	if shared != 1 {
		t.Errorf("cell 0 has %d edges labeled 1, want 1", shared)
	}
}

func TestVoronoi_CoversRegion(t *testing.T) {
	b := orb.Bound{Min: orb.Point{-10, -5}, Max: orb.Point{10, 5}}
	region := PaddedBound(b, 1)
	sites := randomSites(60, 7, b)
	tess := Voronoi(sites, region)

	if !tess.Triangulated {
		t.Error("expected a Delaunay triangulation")
	}
	if len(tess.Skipped) != 0 {
		t.Errorf("skipped = %v, want none", tess.Skipped)
	}
	var total float64
	for i, c := range tess.Cells {
		if SignedArea(c.Ring) <= 0 {
			t.Errorf("cell %d is not counter-clockwise", i)
		}
		if !planar.RingContains(c.Ring, sites[i]) {
			t.Errorf("cell %d does not contain its site", i)
		}
		if len(c.Labels) != len(c.Ring)-1 {
			t.Errorf("cell %d has %d labels for %d edges", i, len(c.Labels), len(c.Ring)-1)
		}
		total += planar.Area(c.Ring)
	}
	if want := planar.Area(region); math.Abs(total-want) > 1e-6 {
		t.Errorf("cell areas sum to %v, want %v", total, want)
	}
}

func TestVoronoi_ZeroAreaRegion(t *testing.T) {
	for _, b := range []orb.Bound{
		{Min: orb.Point{0, 0}, Max: orb.Point{0, 0}},
		{Min: orb.Point{0, 0}, Max: orb.Point{10, 0}},
	} {
		tess := Voronoi([]orb.Point{{0, 0}}, PaddedBound(b, 0))
		for i, c := range tess.Cells {
			if len(c.Ring) > 0 && len(c.Labels) != len(c.Ring)-1 {
				t.Errorf("bound %v cell %d has %d labels for %d ring points", b, i, len(c.Labels), len(c.Ring))
			}
		}
		// Must not panic whatever the cell looks like.
		_, _ = Dissolve(tess.Cells, []int{0}, 1e-9)
	}
}

func TestVoronoi_SkipsDuplicatesAndOutside(t *testing.T) {
	region := PaddedBound(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4, 4}}, 0)
	sites := []orb.Point{{1, 1}, {3, 1}, {1, 1}, {2, 3}, {9, 9}}
	tess := Voronoi(sites, region)

	want := []Skipped{{Site: 2, Reason: SkipDuplicate}, {Site: 4, Reason: SkipOutside}}
	if len(tess.Skipped) != len(want) {
		t.Fatalf("skipped = %v, want %v", tess.Skipped, want)
	}
	for i := range want {
		if tess.Skipped[i] != want[i] {
			t.Errorf("skipped[%d] = %v, want %v", i, tess.Skipped[i], want[i])
		}
	}
	if !tess.Cells[2].Empty() || !tess.Cells[4].Empty() {
		t.Error("skipped sites should have empty cells")
	}
}

func TestDissolve_AllCells(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}
	region := PaddedBound(b, 0.5)
	sites := randomSites(40, 3, b)
	tess := Voronoi(sites, region)

	members := make([]int, len(sites))
	for i := range members {
		members[i] = i
	}
	d, err := Dissolve(tess.Cells, members, 1e-7)
	if err != nil {
		t.Fatalf("Dissolve() error = %v", err)
	}
	if d.Parts != 1 {
		t.Errorf("Parts = %d, want 1", d.Parts)
	}
	if got, want := planar.Area(d.Polygon), planar.Area(region); math.Abs(got-want) > 1e-6 {
		t.Errorf("area = %v, want %v", got, want)
	}
}

func TestDissolve_ContainsMembers(t *testing.T) {
	// A jittered 6x6 grid; the three left columns form one contiguous group.
	rng := rand.New(rand.NewPCG(11, 11^0xdeadbeef))
	var sites []orb.Point
	var members []int
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			if x < 3 {
				members = append(members, len(sites))
			}
			sites = append(sites, orb.Point{
				float64(x) + 0.5 + (rng.Float64()-0.5)*0.4,
				float64(y) + 0.5 + (rng.Float64()-0.5)*0.4,
			})
		}
	}
	region := PaddedBound(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{6, 6}}, 0)
	tess := Voronoi(sites, region)

	d, err := Dissolve(tess.Cells, members, 1e-7)
	if err != nil {
		t.Fatalf("Dissolve() error = %v", err)
	}
	if d.Parts != 1 {
		t.Errorf("Parts = %d, want 1", d.Parts)
	}
	for _, m := range members {
		if !planar.PolygonContains(d.Polygon, sites[m]) {
			t.Errorf("dissolved polygon does not contain member %d", m)
		}
	}
}

func TestDissolve_Multipart(t *testing.T) {
	region := PaddedBound(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{3, 1}}, 0)
	sites := []orb.Point{{0.5, 0.5}, {1.5, 0.5}, {2.5, 0.5}}
	tess := Voronoi(sites, region)

	d, err := Dissolve(tess.Cells, []int{0, 2}, 1e-9)
	if err != nil {
		t.Fatalf("Dissolve() error = %v", err)
	}
	if d.Parts != 2 {
		t.Errorf("Parts = %d, want 2", d.Parts)
	}
	if math.Abs(d.DroppedArea-1) > 1e-9 {
		t.Errorf("DroppedArea = %v, want 1", d.DroppedArea)
	}
	if math.Abs(planar.Area(d.Polygon)-1) > 1e-9 {
		t.Errorf("kept area = %v, want 1", planar.Area(d.Polygon))
	}
}

func TestDissolve_Hole(t *testing.T) {
	// A 3x3 grid of sites: the ring of eight outer cells surrounds the center.
	region := PaddedBound(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{3, 3}}, 0)
	var sites []orb.Point
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			sites = append(sites, orb.Point{float64(x) + 0.5, float64(y) + 0.5})
		}
	}
	tess := Voronoi(sites, region)
	d, err := Dissolve(tess.Cells, []int{0, 1, 2, 3, 5, 6, 7, 8}, 1e-7)
	if err != nil {
		t.Fatalf("Dissolve() error = %v", err)
	}
	if len(d.Polygon) != 2 {
		t.Fatalf("polygon has %d rings, want outer plus one hole", len(d.Polygon))
	}
	if SignedArea(d.Polygon[1]) >= 0 {
		t.Error("hole should be clockwise")
	}
	if math.Abs(planar.Area(d.Polygon)-8) > 1e-6 {
		t.Errorf("area = %v, want 8", planar.Area(d.Polygon))
	}
}

func TestUnion(t *testing.T) {
	grid := func(n int) []orb.Point {
		var sites []orb.Point
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				sites = append(sites, orb.Point{float64(x) + 0.5, float64(y) + 0.5})
			}
		}
		return sites
	}
	tests := []struct {
		name    string
		bound   orb.Bound
		sites   []orb.Point
		members []int
		parts   int
		rings   int
		area    float64
	}{
		{"whole grid", orb.Bound{Max: orb.Point{3, 3}}, grid(3), []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, 1, 1, 9},
		{"row", orb.Bound{Max: orb.Point{3, 3}}, grid(3), []int{0, 1, 2}, 1, 1, 3},
		{"two parts", orb.Bound{Max: orb.Point{3, 1}}, []orb.Point{{0.5, 0.5}, {1.5, 0.5}, {2.5, 0.5}}, []int{0, 2}, 2, 1, 1},
		{"hole", orb.Bound{Max: orb.Point{3, 3}}, grid(3), []int{0, 1, 2, 3, 5, 6, 7, 8}, 1, 2, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tess := Voronoi(tt.sites, PaddedBound(tt.bound, 0))
			d, err := Union(tess.Cells, tt.members, 1e-7)
			if err != nil {
				t.Fatalf("Union() [%s] error = %v", UnionEngine, err)
			}
			if d.Parts != tt.parts {
				t.Errorf("Parts = %d, want %d", d.Parts, tt.parts)
			}
			if len(d.Polygon) != tt.rings {
				t.Errorf("rings = %d, want %d", len(d.Polygon), tt.rings)
			}
			if got := planar.Area(d.Polygon); math.Abs(got-tt.area) > 1e-6 {
				t.Errorf("area = %v, want %v", got, tt.area)
			}
			if SignedArea(d.Polygon[0]) <= 0 {
				t.Error("outer ring should be counter-clockwise")
			}
			for i, h := range d.Polygon[1:] {
				if SignedArea(h) >= 0 {
					t.Errorf("hole %d should be clockwise", i)
				}
			}
		})
	}
	if _, err := Union(make([]Cell, 2), []int{0, 1}, 1e-7); !errors.Is(err, ErrEmptyGroup) {
		t.Errorf("Union() of empty cells error = %v, want ErrEmptyGroup", err)
	}
}

func TestDissolve_EmptyGroup(t *testing.T) {
	cells := []Cell{{Site: 0}}
	if _, err := Dissolve(cells, []int{0}, 1e-9); err != ErrEmptyGroup {
		t.Errorf("Dissolve() error = %v, want ErrEmptyGroup", err)
	}
}

func TestLargestCell(t *testing.T) {
	region := PaddedBound(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4, 1}}, 0)
	tess := Voronoi([]orb.Point{{0.5, 0.5}, {1.5, 0.5}, {3, 0.5}}, region)
	poly, ok := LargestCell(tess.Cells, []int{0, 2})
	if !ok {
		t.Fatal("LargestCell() found nothing")
	}
	if a := planar.Area(poly); math.Abs(a-1.75) > 1e-9 {
		t.Errorf("area = %v, want 1.75", a)
	}
}

func TestTouches(t *testing.T) {
	square := func(x, y float64) orb.Polygon {
		return orb.Polygon{{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}}
	}
	tests := []struct {
		name string
		a, b orb.Polygon
		want bool
	}{
		{"shared edge", square(0, 0), square(1, 0), true},
		{"shared corner", square(0, 0), square(1, 1), true},
		{"gap", square(0, 0), square(1.5, 0), false},
		{"within tolerance", square(0, 0), square(1+1e-8, 0), true},
		{"empty", square(0, 0), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Touches(tt.a, tt.b, 1e-6); got != tt.want {
				t.Errorf("Touches() = %v, want %v", got, tt.want)
			}
			if got := Touches(tt.b, tt.a, 1e-6); got != tt.want {
				t.Errorf("Touches() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegmentDist(t *testing.T) {
	if d := SegmentDist(orb.Point{0, 0}, orb.Point{2, 2}, orb.Point{0, 2}, orb.Point{2, 0}); d != 0 {
		t.Errorf("crossing segments distance = %v, want 0", d)
	}
	if d := SegmentDist(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{0, 1}, orb.Point{1, 1}); d != 1 {
		t.Errorf("parallel segments distance = %v, want 1", d)
	}
}
