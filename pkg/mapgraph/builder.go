package mapgraph

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
)

// Builder accumulates nodes and edges and produces a [Snapshot].
// A Builder is single-use: call Build once after all additions.
type Builder struct {
	nodes        []Node
	edges        []Edge
	nodeIndex    map[string]int
	clusterLinks []clusterLink
}

type clusterLink struct {
	a, b   string
	weight float64
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{nodeIndex: make(map[string]int)}
}

// AddNode validates and adds a node. The node's attributes are validated
// here so that a snapshot never carries an invalid attribute record.
func (b *Builder) AddNode(n Node) error {
	if err := apperrors.ValidateNodeID(n.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNodeID, err)
	}
	if _, exists := b.nodeIndex[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if !validWeight(n.Weight) {
		return ErrInvalidWeight
	}
	if n.HasLocal && (!finite(n.Local.X) || !finite(n.Local.Y)) {
		return fmt.Errorf("node %s: non-finite local coordinate", n.ID)
	}
	if err := n.Attrs.Validate(); err != nil {
		return err
	}
	b.nodeIndex[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
	return nil
}

// AddEdge adds an undirected weighted edge between two added nodes.
// Self-loops are ignored.
func (b *Builder) AddEdge(from, to string, weight float64) error {
	fi, ok := b.nodeIndex[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	ti, ok := b.nodeIndex[to]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	if !validWeight(weight) {
		return ErrInvalidWeight
	}
	if fi == ti {
		return nil
	}
	b.edges = append(b.edges, Edge{From: fi, To: ti, Weight: weight})
	return nil
}

// AddClusterEdge records an explicit inter-cluster edge. Cluster ids are
// resolved in Build, once membership is known. Self-loops are ignored.
func (b *Builder) AddClusterEdge(a, c string, weight float64) error {
	if !validWeight(weight) {
		return ErrInvalidWeight
	}
	if a == c {
		return nil
	}
	b.clusterLinks = append(b.clusterLinks, clusterLink{a: a, b: c, weight: weight})
	return nil
}

// NodeIDs returns the ids of all added nodes in insertion order.
func (b *Builder) NodeIDs() []string {
	ids := make([]string, len(b.nodes))
	for i, n := range b.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Unclustered returns the ids of nodes without a cluster assignment.
func (b *Builder) Unclustered() []string {
	var ids []string
	for _, n := range b.nodes {
		if n.Cluster == "" {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// EdgeList returns the added node edges as id pairs with weights.
func (b *Builder) EdgeList() (from, to []string, weight []float64) {
	for _, e := range b.edges {
		from = append(from, b.nodes[e.From].ID)
		to = append(to, b.nodes[e.To].ID)
		weight = append(weight, e.Weight)
	}
	return from, to, weight
}

// SetCluster assigns a cluster to an added node. It is used by community
// detection before Build.
func (b *Builder) SetCluster(id, cluster string) error {
	i, ok := b.nodeIndex[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	b.nodes[i].Cluster = cluster
	return nil
}

// Build validates cluster membership and returns the snapshot.
//
// Build returns an EMPTY_INPUT error when no nodes were added and an
// INVALID_INPUT error listing the offending node ids when some nodes lack a
// cluster.
func (b *Builder) Build() (*Snapshot, error) {
	if len(b.nodes) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeEmptyInput, "graph has no nodes")
	}
	if missing := b.Unclustered(); len(missing) > 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput,
			"%d nodes have no cluster assignment", len(missing)).WithIDs(truncate(missing, 20)...)
	}

	s := &Snapshot{
		nodes:        slices.Clone(b.nodes),
		edges:        slices.Clone(b.edges),
		nodeIndex:    make(map[string]int, len(b.nodes)),
		clusterIndex: make(map[string]int),
		nodeCluster:  make([]int, len(b.nodes)),
	}
	for id, i := range b.nodeIndex {
		s.nodeIndex[id] = i
	}

	var ids []string
	seen := make(map[string]bool)
	for _, n := range s.nodes {
		if !seen[n.Cluster] {
			seen[n.Cluster] = true
			ids = append(ids, n.Cluster)
		}
	}
	slices.SortFunc(ids, CompareIDs)
	s.clusters = make([]Cluster, len(ids))
	for c, id := range ids {
		s.clusters[c] = Cluster{ID: id, Representative: -1}
		s.clusterIndex[id] = c
	}
	for i, n := range s.nodes {
		c := s.clusterIndex[n.Cluster]
		s.nodeCluster[i] = c
		cl := &s.clusters[c]
		cl.Members = append(cl.Members, i)
		if cl.Representative < 0 || n.Weight > s.nodes[cl.Representative].Weight {
			cl.Representative = i
		}
	}

	agg := make(map[[2]int]float64)
	for _, e := range s.edges {
		ca, cb := s.nodeCluster[e.From], s.nodeCluster[e.To]
		if ca == cb {
			continue
		}
		agg[pairKey(ca, cb)] += e.Weight
	}
	for _, l := range b.clusterLinks {
		ca, ok := s.clusterIndex[l.a]
		if !ok {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, ErrUnknownCluster,
				"cluster edge %s-%s", l.a, l.b).WithIDs(l.a)
		}
		cb, ok := s.clusterIndex[l.b]
		if !ok {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, ErrUnknownCluster,
				"cluster edge %s-%s", l.a, l.b).WithIDs(l.b)
		}
		agg[pairKey(ca, cb)] += l.weight
	}
	for k, w := range agg {
		s.clusterEdges = append(s.clusterEdges, ClusterEdge{A: k[0], B: k[1], Weight: w})
	}
	slices.SortFunc(s.clusterEdges, func(x, y ClusterEdge) int {
		return cmp.Or(cmp.Compare(x.A, y.A), cmp.Compare(x.B, y.B))
	})

	return s, nil
}

// CompareIDs orders ids naturally: two integer ids compare by value, any
// other pair compares lexicographically with integers first.
func CompareIDs(a, b string) int {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		return cmp.Or(cmp.Compare(ai, bi), cmp.Compare(a, b))
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	return cmp.Compare(a, b)
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func validWeight(w float64) bool { return finite(w) && w >= 0 }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func truncate(ids []string, n int) []string {
	if len(ids) <= n {
		return ids
	}
	return ids[:n]
}
