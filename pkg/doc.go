// Package pkg provides the core libraries for graphmap.
//
// # Overview
//
// graphmap turns a weighted relationship graph into a map. Clusters of
// related nodes become contiguous territories on a bounded canvas, and
// neighboring territories never share a color. The pipeline runs:
//
//	graph.json (+ attribute CSV)
//	         ↓
//	    [enrich] + [community] (attributes, cluster ids)
//	         ↓
//	    [mapgraph] snapshot
//	         ↓
//	    [layout/force] local layouts → [pack] cluster circles
//	         ↓
//	    [compose] canvas placement
//	         ↓
//	    [territory] Voronoi partition + adjacency ([geom])
//	         ↓
//	    [mapcolor] territory colors
//	         ↓
//	    [export] GeoJSON layers, search index, DOT/SVG → [tiles]
//
// [pipeline] runs these stages for the CLI and the HTTP API. [cache] and
// [store] keep results and runs; [config] reads graphmap.toml; [observability]
// carries the metrics hooks.
//
// # Quick Start
//
//	g, _ := graph.ReadGraphFile("graph.json")
//	res, _ := pipeline.Render(ctx, g, pipeline.Options{})
//	_, _ = export.Write(ctx, res.Map, "out", export.Options{Map: true})
//
// [enrich]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/enrich
// [community]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/community
// [mapgraph]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/mapgraph
// [layout/force]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/layout/force
// [pack]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/pack
// [compose]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/compose
// [territory]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/territory
// [geom]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/geom
// [mapcolor]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/mapcolor
// [export]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/export
// [tiles]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/tiles
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/graphmap/pkg/observability
package pkg
