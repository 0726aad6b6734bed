package graph

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/graphmap/pkg/mapgraph"
)

// DefaultEdgeWeight is used for edges that omit a weight.
const DefaultEdgeWeight = 1.0

// =============================================================================
// Graph - Input Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for input graphs.
//
// Cluster ids and local coordinates are optional on the wire: a graph
// without clusters is partitioned by community detection and a graph
// without coordinates is laid out per cluster before packing.
type Graph struct {
	Nodes        []Node        `json:"nodes" bson:"nodes"`
	Edges        []Edge        `json:"edges,omitempty" bson:"edges,omitempty"`
	ClusterEdges []ClusterEdge `json:"cluster_edges,omitempty" bson:"cluster_edges,omitempty"`
}

// Node is a serialized input node.
type Node struct {
	ID      string              `json:"id" bson:"id"`
	Cluster string              `json:"cluster,omitempty" bson:"cluster,omitempty"`
	X       *float64            `json:"x,omitempty" bson:"x,omitempty"` // Local x inside the cluster layout
	Y       *float64            `json:"y,omitempty" bson:"y,omitempty"` // Local y inside the cluster layout
	Weight  float64             `json:"weight,omitempty" bson:"weight,omitempty"`
	Attrs   mapgraph.Attributes `json:"attrs,omitzero" bson:"attrs,omitempty"`
}

// Edge is a serialized undirected node edge. A nil weight means
// [DefaultEdgeWeight].
type Edge struct {
	From   string   `json:"from" bson:"from"`
	To     string   `json:"to" bson:"to"`
	Weight *float64 `json:"weight,omitempty" bson:"weight,omitempty"`
}

// ClusterEdge is an explicit inter-cluster edge, summed with the
// aggregated node edges of the same cluster pair.
type ClusterEdge struct {
	A      string  `json:"a" bson:"a"`
	B      string  `json:"b" bson:"b"`
	Weight float64 `json:"weight" bson:"weight"`
}

// HasClusters reports whether every node carries a cluster id.
func (g Graph) HasClusters() bool {
	for _, n := range g.Nodes {
		if n.Cluster == "" {
			return false
		}
	}
	return true
}

// =============================================================================
// Graph ↔ Snapshot Conversion
// =============================================================================

// ToBuilder loads g into a [mapgraph.Builder] without building it, so that
// callers can assign missing clusters first.
func ToBuilder(g Graph) (*mapgraph.Builder, error) {
	b := mapgraph.NewBuilder()
	for _, nj := range g.Nodes {
		n := mapgraph.Node{
			ID:      nj.ID,
			Cluster: nj.Cluster,
			Weight:  nj.Weight,
			Attrs:   nj.Attrs,
		}
		if nj.X != nil && nj.Y != nil {
			n.Local = r2.Vec{X: *nj.X, Y: *nj.Y}
			n.HasLocal = true
		}
		if err := b.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}
	for _, ej := range g.Edges {
		w := DefaultEdgeWeight
		if ej.Weight != nil {
			w = *ej.Weight
		}
		if err := b.AddEdge(ej.From, ej.To, w); err != nil {
			return nil, fmt.Errorf("add edge %s-%s: %w", ej.From, ej.To, err)
		}
	}
	for _, ce := range g.ClusterEdges {
		if err := b.AddClusterEdge(ce.A, ce.B, ce.Weight); err != nil {
			return nil, fmt.Errorf("add cluster edge %s-%s: %w", ce.A, ce.B, err)
		}
	}
	return b, nil
}

// ToSnapshot converts g into an immutable snapshot. Every node must carry a
// cluster id.
func ToSnapshot(g Graph) (*mapgraph.Snapshot, error) {
	b, err := ToBuilder(g)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// FromSnapshot converts a snapshot back to its serialization format.
// Explicit cluster edges are not preserved: the snapshot only keeps their
// aggregated sums.
func FromSnapshot(s *mapgraph.Snapshot) Graph {
	out := Graph{
		Nodes: make([]Node, s.NodeCount()),
		Edges: make([]Edge, s.EdgeCount()),
	}
	for i, n := range s.Nodes() {
		nj := Node{ID: n.ID, Cluster: n.Cluster, Weight: n.Weight, Attrs: n.Attrs}
		if n.HasLocal {
			nj.X = mapgraph.Ptr(n.Local.X)
			nj.Y = mapgraph.Ptr(n.Local.Y)
		}
		out.Nodes[i] = nj
	}
	for i, e := range s.Edges() {
		ej := Edge{From: s.Node(e.From).ID, To: s.Node(e.To).ID}
		if e.Weight != DefaultEdgeWeight {
			ej.Weight = mapgraph.Ptr(e.Weight)
		}
		out.Edges[i] = ej
	}
	return out
}
