// Package geom provides the planar geometry used to partition a map canvas
// into territories.
//
// All geometry uses [github.com/paulmach/orb] types. Rings are closed (the
// last point repeats the first); outer rings are counter-clockwise and holes
// clockwise, matching RFC 7946.
//
// # Voronoi Cells
//
// [Voronoi] computes the Voronoi cell of every site, clipped to a convex
// region. Each cell is built by successive half-plane clipping of the region
// against the perpendicular bisectors between its site and the site's
// Delaunay neighbors. Every cell edge records its provenance: the index of
// the site on the other side, or [Boundary] for region edges.
//
// # Union
//
// [Union] merges a group of cells into one polygon. The default build uses
// [Dissolve]: edges whose provenance is another member of the group are
// interior and cancel, and the remaining edges are chained into rings. The
// union of Voronoi cells is always formed by whole cell edges, so no general
// overlay is needed. Built with -tags geos, Union and BufferedHull run on
// GEOS through github.com/twpayne/go-geos instead (requires libgeos).
// [UnionEngine] names the active backend.
//
// # Clip Regions
//
// [PaddedBound] and [BufferedHull] produce the convex regions used to bound
// the tessellation.
package geom
