// Package mapgraph provides the per-run graph snapshot consumed by the map
// pipeline.
//
// # Overview
//
// A [Snapshot] is an immutable arena of nodes, clusters and weighted edges
// built once per run by a [Builder]. Nodes and clusters are addressed by
// dense integer indices; string ids are resolved through index maps. Nothing
// in a snapshot is mutated after [Builder.Build] returns, so every pipeline
// stage derives its own coordinate and polygon state from it.
//
// # Clusters
//
// Every node belongs to exactly one cluster, named by the node's Cluster
// field. Clusters are ordered by a natural sort of their ids (numeric ids
// compare by value), members keep node insertion order, and the
// representative of a cluster is its highest-weight member.
//
// # Inter-cluster edges
//
// Node edges whose endpoints lie in different clusters are aggregated into
// [ClusterEdge] values by summing their weights. Explicit cluster edges added
// with [Builder.AddClusterEdge] are summed into the same pairs.
//
// # Attributes
//
// Node attributes are an explicit [Attributes] record with named optional
// fields, validated when the node is added.
package mapgraph
