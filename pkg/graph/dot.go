package graph

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// =============================================================================
// Input Formats
// =============================================================================

// Format is an input graph file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
)

// ParseFormat maps a format name to a [Format]. The empty name selects
// detection by file extension.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case "":
		return "", nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatDOT, "gv":
		return FormatDOT, nil
	default:
		return "", fmt.Errorf("unknown graph format %q: want json or dot", name)
	}
}

// DetectFormat picks the format from the file extension: .dot and .gv are
// DOT, everything else JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		return FormatDOT
	default:
		return FormatJSON
	}
}

// ReadFile reads a graph file in the given format, detecting it from the
// extension when format is empty.
func ReadFile(path string, format Format) (Graph, error) {
	if format == "" {
		format = DetectFormat(path)
	}
	if format == FormatDOT {
		return ReadDOTFile(path)
	}
	return ReadGraphFile(path)
}

// =============================================================================
// DOT Input
// =============================================================================

// Node and edge attributes understood by [ParseDOT].
const (
	DOTCluster = "cluster"
	DOTX       = "x"
	DOTY       = "y"
	DOTPos     = "pos"
	DOTWeight  = "weight"
	DOTLabel   = "label"
)

// clusterPrefix marks Graphviz cluster subgraphs.
const clusterPrefix = "cluster"

// ReadDOTFile reads a Graphviz DOT file.
func ReadDOTFile(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	return ParseDOT(data)
}

// ReadDOT reads a Graphviz DOT graph from r.
func ReadDOT(r io.Reader) (Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Graph{}, fmt.Errorf("read: %w", err)
	}
	return ParseDOT(data)
}

// ParseDOT converts a DOT graph into a [Graph].
//
// Node attributes map onto node fields: cluster, x and y (or pos as
// "x,y"), weight and label. A node without a cluster attribute inherits the
// name of its innermost cluster subgraph with the "cluster" prefix and a
// following "_" removed. Edge weight defaults to [DefaultEdgeWeight]; edge
// direction is ignored.
func ParseDOT(data []byte) (Graph, error) {
	g, err := graphviz.ParseBytes(data)
	if err != nil {
		return Graph{}, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	clusters := make(map[string]string)
	if err := subgraphClusters(g, "", clusters); err != nil {
		return Graph{}, err
	}

	var out Graph
	for n, err := g.FirstNode(); n != nil || err != nil; n, err = g.NextNode(n) {
		if err != nil {
			return Graph{}, fmt.Errorf("walk nodes: %w", err)
		}
		node, err := dotNode(n, clusters)
		if err != nil {
			return Graph{}, err
		}
		out.Nodes = append(out.Nodes, node)
	}

	for n, err := g.FirstNode(); n != nil || err != nil; n, err = g.NextNode(n) {
		if err != nil {
			return Graph{}, fmt.Errorf("walk nodes: %w", err)
		}
		for e, err := g.FirstOut(n); e != nil || err != nil; e, err = g.NextOut(e) {
			if err != nil {
				return Graph{}, fmt.Errorf("walk edges: %w", err)
			}
			edge, err := dotEdge(e)
			if err != nil {
				return Graph{}, err
			}
			out.Edges = append(out.Edges, edge)
		}
	}
	return out, nil
}

// subgraphClusters records the innermost cluster subgraph of every node.
func subgraphClusters(g *cgraph.Graph, inherited string, into map[string]string) error {
	for sub, err := g.FirstSubGraph(); sub != nil || err != nil; sub, err = sub.NextSubGraph() {
		if err != nil {
			return fmt.Errorf("walk subgraphs: %w", err)
		}
		name, err := sub.Name()
		if err != nil {
			return fmt.Errorf("subgraph name: %w", err)
		}
		cluster := inherited
		if id, ok := clusterID(name); ok {
			cluster = id
		}
		if cluster != "" {
			for n, err := sub.FirstNode(); n != nil || err != nil; n, err = sub.NextNode(n) {
				if err != nil {
					return fmt.Errorf("walk subgraph %s: %w", name, err)
				}
				id, err := n.Name()
				if err != nil {
					return fmt.Errorf("node name: %w", err)
				}
				into[id] = cluster
			}
		}
		if err := subgraphClusters(sub, cluster, into); err != nil {
			return err
		}
	}
	return nil
}

// clusterID strips the Graphviz cluster prefix from a subgraph name.
func clusterID(name string) (string, bool) {
	if !strings.HasPrefix(name, clusterPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(strings.TrimPrefix(name, clusterPrefix), "_")
	if id == "" {
		return "", false
	}
	return id, true
}

func dotNode(n *cgraph.Node, clusters map[string]string) (Node, error) {
	id, err := n.Name()
	if err != nil {
		return Node{}, fmt.Errorf("node name: %w", err)
	}
	node := Node{ID: id, Cluster: n.GetStr(DOTCluster)}
	if node.Cluster == "" {
		node.Cluster = clusters[id]
	}

	if w := n.GetStr(DOTWeight); w != "" {
		v, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return Node{}, fmt.Errorf("node %s: invalid weight %q", id, w)
		}
		node.Weight = v
	}

	x, y := n.GetStr(DOTX), n.GetStr(DOTY)
	if pos := n.GetStr(DOTPos); pos != "" && x == "" && y == "" {
		px, py, ok := strings.Cut(strings.TrimSuffix(pos, "!"), ",")
		if !ok {
			return Node{}, fmt.Errorf("node %s: invalid pos %q", id, pos)
		}
		x, y = px, py
	}
	switch {
	case x != "" && y != "":
		vx, errX := strconv.ParseFloat(strings.TrimSpace(x), 64)
		vy, errY := strconv.ParseFloat(strings.TrimSpace(y), 64)
		if errX != nil || errY != nil {
			return Node{}, fmt.Errorf("node %s: invalid coordinates (%q, %q)", id, x, y)
		}
		node.X, node.Y = &vx, &vy
	case x != "" || y != "":
		return Node{}, fmt.Errorf("node %s: x and y must be set together", id)
	}

	// Graphviz fills an empty label with the node name placeholder.
	if label := n.GetStr(DOTLabel); label != "" && label != `\N` && label != id {
		node.Attrs.Label = &label
	}
	return node, nil
}

func dotEdge(e *cgraph.Edge) (Edge, error) {
	tail, err := e.Tail()
	if err != nil {
		return Edge{}, fmt.Errorf("edge tail: %w", err)
	}
	head, err := e.Head()
	if err != nil {
		return Edge{}, fmt.Errorf("edge head: %w", err)
	}
	from, err := tail.Name()
	if err != nil {
		return Edge{}, fmt.Errorf("node name: %w", err)
	}
	to, err := head.Name()
	if err != nil {
		return Edge{}, fmt.Errorf("node name: %w", err)
	}
	edge := Edge{From: from, To: to}
	if w := e.GetStr(DOTWeight); w != "" {
		v, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return Edge{}, fmt.Errorf("edge %s-%s: invalid weight %q", from, to, w)
		}
		if v != DefaultEdgeWeight {
			edge.Weight = &v
		}
	}
	return edge, nil
}

// =============================================================================
// DOT Output
// =============================================================================

// ClusterDOT returns one DOT document per cluster of g, keyed by cluster
// id. Each document holds the cluster's nodes with their attributes and the
// edges between them, in a form [ParseDOT] reads back. Nodes without a
// cluster are left out.
func ClusterDOT(g Graph) map[string]string {
	members := make(map[string][]Node)
	clusterOf := make(map[string]string, len(g.Nodes))
	var order []string
	for _, n := range g.Nodes {
		if n.Cluster == "" {
			continue
		}
		if _, ok := members[n.Cluster]; !ok {
			order = append(order, n.Cluster)
		}
		members[n.Cluster] = append(members[n.Cluster], n)
		clusterOf[n.ID] = n.Cluster
	}

	out := make(map[string]string, len(order))
	for _, c := range order {
		var b strings.Builder
		fmt.Fprintf(&b, "graph %s {\n", strconv.Quote(clusterPrefix+"_"+c))
		for _, n := range members[c] {
			fmt.Fprintf(&b, "  %s [%s=%s", strconv.Quote(n.ID), DOTCluster, strconv.Quote(c))
			if n.X != nil && n.Y != nil {
				fmt.Fprintf(&b, ", %s=%q, %s=%q", DOTX, formatFloat(*n.X), DOTY, formatFloat(*n.Y))
			}
			if n.Weight != 0 {
				fmt.Fprintf(&b, ", %s=%q", DOTWeight, formatFloat(n.Weight))
			}
			if n.Attrs.Label != nil {
				fmt.Fprintf(&b, ", %s=%s", DOTLabel, strconv.Quote(*n.Attrs.Label))
			}
			b.WriteString("];\n")
		}
		for _, e := range g.Edges {
			if clusterOf[e.From] != c || clusterOf[e.To] != c {
				continue
			}
			fmt.Fprintf(&b, "  %s -- %s", strconv.Quote(e.From), strconv.Quote(e.To))
			if e.Weight != nil {
				fmt.Fprintf(&b, " [%s=%q]", DOTWeight, formatFloat(*e.Weight))
			}
			b.WriteString(";\n")
		}
		b.WriteString("}\n")
		out[c] = b.String()
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
