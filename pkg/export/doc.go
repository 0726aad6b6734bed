// Package export writes the artifacts of a rendered [graph.Map].
//
// # Layers
//
// [Points] builds the point layer: one GeoJSON Point feature per node with
// its attribute properties, its "id" and its "parent" territory index.
// [Borders] builds the border layer: one Polygon feature per territory with
// the feature id set to the territory index and "fill" and "cluster"
// properties. Both follow RFC 7946 and are encoded by paulmach/orb/geojson.
//
// # Search Index
//
// [SearchIndex] groups nodes by the lower-cased first letter of their label
// into rows of [label, x, y, id], written as names/<letter>.json.
//
// # Debug Output
//
// [ToDOT] renders the territory adjacency graph as Graphviz DOT and
// [RenderSVG] turns it into SVG with goccy/go-graphviz.
//
// # Writing
//
// [Write] writes every artifact under one directory and reports the file
// names in [Files].
package export
