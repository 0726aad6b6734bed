package mapgraph

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrInvalidNodeID is returned by [Builder.AddNode] when the node id is empty
	// or contains control characters.
	ErrInvalidNodeID = errors.New("invalid node ID")

	// ErrDuplicateNodeID is returned by [Builder.AddNode] when a node with the
	// same id was already added.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [Builder.AddEdge] when an endpoint does not
	// name an added node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownCluster is returned by [Builder.Build] when an explicit cluster
	// edge names a cluster no node belongs to.
	ErrUnknownCluster = errors.New("unknown cluster")

	// ErrInvalidWeight is returned when a node or edge weight is negative,
	// NaN or infinite.
	ErrInvalidWeight = errors.New("invalid weight")
)

// Node is a vertex of the input graph.
//
// Local is the node's coordinate inside its cluster's own layout and is only
// meaningful when HasLocal is true.
type Node struct {
	ID       string
	Cluster  string
	Local    r2.Vec
	HasLocal bool
	Weight   float64
	Attrs    Attributes
}

// Edge is an undirected weighted edge between two node indices.
type Edge struct {
	From, To int
	Weight   float64
}

// ClusterEdge is an aggregated inter-cluster edge. A is always less than B.
type ClusterEdge struct {
	A, B   int
	Weight float64
}

// Other returns the endpoint of e that is not c.
func (e ClusterEdge) Other(c int) int {
	if e.A == c {
		return e.B
	}
	return e.A
}

// Cluster groups the nodes sharing a community label.
type Cluster struct {
	ID string
	// Members holds node indices in insertion order.
	Members []int
	// Representative is the node index of the highest-weight member.
	Representative int
}

// Snapshot is the immutable per-run graph. The slices returned by its
// accessors are shared with the snapshot and must be treated as read-only.
type Snapshot struct {
	nodes        []Node
	edges        []Edge
	clusters     []Cluster
	clusterEdges []ClusterEdge
	nodeCluster  []int
	nodeIndex    map[string]int
	clusterIndex map[string]int
}

// Nodes returns all nodes in insertion order.
func (s *Snapshot) Nodes() []Node { return s.nodes }

// Node returns the node at index i.
func (s *Snapshot) Node(i int) Node { return s.nodes[i] }

// NodeIndex resolves a node id to its index.
func (s *Snapshot) NodeIndex(id string) (int, bool) {
	i, ok := s.nodeIndex[id]
	return i, ok
}

// NodeCount returns the number of nodes.
func (s *Snapshot) NodeCount() int { return len(s.nodes) }

// Edges returns the node-level edges in insertion order.
func (s *Snapshot) Edges() []Edge { return s.edges }

// EdgeCount returns the number of node-level edges.
func (s *Snapshot) EdgeCount() int { return len(s.edges) }

// Clusters returns all clusters in natural id order.
func (s *Snapshot) Clusters() []Cluster { return s.clusters }

// Cluster returns the cluster at index c.
func (s *Snapshot) Cluster(c int) Cluster { return s.clusters[c] }

// ClusterIndex resolves a cluster id to its index.
func (s *Snapshot) ClusterIndex(id string) (int, bool) {
	c, ok := s.clusterIndex[id]
	return c, ok
}

// ClusterCount returns the number of clusters.
func (s *Snapshot) ClusterCount() int { return len(s.clusters) }

// ClusterOf returns the cluster index of node i.
func (s *Snapshot) ClusterOf(i int) int { return s.nodeCluster[i] }

// ClusterEdges returns the aggregated inter-cluster edges, sorted by (A, B).
func (s *Snapshot) ClusterEdges() []ClusterEdge { return s.clusterEdges }

// HasLocalCoords reports whether every node carries a local coordinate.
func (s *Snapshot) HasLocalCoords() bool {
	for _, n := range s.nodes {
		if !n.HasLocal {
			return false
		}
	}
	return true
}

// LocalCoords returns the local coordinate of every node, indexed like Nodes.
// Nodes without a local coordinate yield the zero vector.
func (s *Snapshot) LocalCoords() []r2.Vec {
	out := make([]r2.Vec, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.Local
	}
	return out
}

// InternalEdges returns the node edges whose endpoints both lie in cluster c.
func (s *Snapshot) InternalEdges(c int) []Edge {
	var out []Edge
	for _, e := range s.edges {
		if s.nodeCluster[e.From] == c && s.nodeCluster[e.To] == c {
			out = append(out, e)
		}
	}
	return out
}
