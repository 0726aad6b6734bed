// Package pack arranges cluster circles on the plane without overlap.
//
// Each cluster is reduced to a circle whose radius is half the diagonal of
// its members' local bounding box ([Radius]). Packing runs in three stages:
//
//  1. [Prune] keeps each cluster's heaviest inter-cluster edges, so that the
//     seed layout is driven by strong relations only.
//  2. A weighted force-directed layout (pkg/layout/force) of the pruned
//     cluster graph provides seed centers.
//  3. [Collide] resolves overlaps with a fixed budget of collision ticks,
//     each running several relaxation iterations.
//
// An [OverlapReport] of the seed and of the final packing is returned so that
// callers can judge packing quality.
package pack
