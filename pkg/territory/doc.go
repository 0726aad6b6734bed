// Package territory partitions the canvas into one region per cluster and
// derives the territory adjacency graph.
//
// [Partition] computes the Voronoi cell of every node inside a clip region
// and dissolves the cells of each cluster into a single polygon. Problems
// are recovered locally and reported as warnings, never as errors:
//
//   - UNION_MULTIPART: the cluster's cells are not contiguous; the largest
//     part (with its holes) is kept.
//   - UNION_FAILURE: the cell boundary could not be chained into rings; the
//     largest member cell is used instead.
//   - GEOMETRY_DEGENERATE: duplicate or out-of-region nodes got no cell, or
//     a cluster ended up without any area.
//
// [BuildAdjacency] tests every territory pair for touching boundaries and
// returns a symmetric relation without self-loops.
package territory
