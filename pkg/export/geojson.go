package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/graphmap/pkg/graph"
)

// Points returns the point layer of m.
func Points(m graph.Map) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, n := range m.Nodes {
		f := geojson.NewFeature(orb.Point{n.X, n.Y})
		for k, v := range n.Props {
			f.Properties[k] = v
		}
		f.Properties["id"] = n.ID
		f.Properties["parent"] = n.Cluster
		fc.Append(f)
	}
	return fc
}

// Borders returns the territory layer of m. Territories without rings are
// left out.
func Borders(m graph.Map) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range m.Territories {
		poly := Polygon(t)
		if len(poly) == 0 {
			continue
		}
		f := geojson.NewFeature(poly)
		f.ID = t.Index
		f.Properties["fill"] = t.Fill
		f.Properties["cluster"] = t.Cluster
		f.Properties["color"] = t.Color
		fc.Append(f)
	}
	return fc
}

// Polygon converts the rings of t to an orb polygon.
func Polygon(t graph.Territory) orb.Polygon {
	poly := make(orb.Polygon, 0, len(t.Rings))
	for _, ring := range t.Rings {
		r := make(orb.Ring, len(ring))
		for i, p := range ring {
			r[i] = orb.Point(p)
		}
		poly = append(poly, r)
	}
	return poly
}
