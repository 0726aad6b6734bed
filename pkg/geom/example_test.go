package geom_test

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/matzehuels/graphmap/pkg/geom"
)

func ExampleVoronoi() {
	region := geom.PaddedBound(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{3, 1}}, 0)
	sites := []orb.Point{{0.5, 0.5}, {1.5, 0.5}, {2.5, 0.5}}

	tess := geom.Voronoi(sites, region)
	for _, c := range tess.Cells {
		fmt.Printf("site %d: area %.2f\n", c.Site, planar.Area(c.Ring))
	}

	// Merging the first two cells cancels the edge between them.
	d, _ := geom.Dissolve(tess.Cells, []int{0, 1}, 1e-9)
	fmt.Printf("merged: area %.2f, parts %d\n", planar.Area(d.Polygon), d.Parts)
	// Output:
	// site 0: area 1.00
	// site 1: area 1.00
	// site 2: area 1.00
	// merged: area 2.00, parts 1
}
