// Package graph provides serialization types for input graphs and rendered
// maps.
//
// This package defines the canonical wire format for graphmap's data, used
// for JSON files, API requests and responses, caching and the run store.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph]: input graph (this package)
//   - pkg/mapgraph.Snapshot: internal immutable graph
//   - [Map]: result of a render run (territories, positions, statistics)
//
// Use [ToSnapshot]/[FromSnapshot] to convert between the input format and
// the internal snapshot.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format. Cluster ids and local coordinates are
// optional; edge weights default to 1:
//
//	{
//	  "nodes": [
//	    {"id": "13", "cluster": "2", "x": 0.4, "y": -1.2, "weight": 812,
//	     "attrs": {"label": "Catan", "ratings": 7.1}}
//	  ],
//	  "edges": [{"from": "13", "to": "822", "weight": 3}],
//	  "cluster_edges": [{"a": "2", "b": "5", "weight": 10}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("games.json")   // File → Graph
//	snap, _ := graph.ToSnapshot(g)              // Graph → Snapshot
//	graph.WriteGraphFile(g, "out.json")         // Graph → File
//
// # DOT Input
//
// [ParseDOT] reads Graphviz DOT through goccy/go-graphviz. Node attributes
// cluster, x, y (or pos), weight and label fill the node fields; nodes in a
// "cluster_<id>" subgraph inherit its id. [ReadFile] picks JSON or DOT by
// [Format] or file extension, and [ClusterDOT] writes one document per
// cluster back out:
//
//	g, _ := graph.ReadFile("games.dot", "")
//
// # Map Serialization
//
// A [Map] is versioned with [MapVersion]; readers reject newer versions.
//
//	m, _ := graph.ReadMapFile("map.json")
//	for _, t := range m.Territories {
//	    fmt.Println(t.Cluster, t.Fill, len(t.Neighbors))
//	}
//
// # Concurrency
//
// All functions are safe for concurrent use on distinct values.
package graph
