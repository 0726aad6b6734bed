package export

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/graphmap/pkg/graph"
)

// ToDOT converts the territory adjacency graph of m to Graphviz DOT. Each
// territory is a filled node labelled with its cluster id and member count;
// each adjacency is one undirected edge.
func ToDOT(m graph.Map) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, t := range m.Territories {
		label := fmt.Sprintf("%s\n(%d)", t.Cluster, t.Members)
		fmt.Fprintf(&buf, "  t%d [label=%q, fillcolor=%q];\n", t.Index, label, t.Fill)
	}

	buf.WriteString("\n")
	for _, t := range m.Territories {
		for _, j := range t.Neighbors {
			if t.Index < j {
				fmt.Fprintf(&buf, "  t%d -- t%d;\n", t.Index, j)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// WriteClusterDOT writes one DOT file per cluster of g under
// dir/[ClustersDir] and returns their paths relative to dir, sorted. Nodes
// without a cluster id take it from m, matched by node id.
func WriteClusterDOT(dir string, g graph.Graph, m graph.Map) ([]string, error) {
	g = withMapClusters(g, m)
	docs := graph.ClusterDOT(g)
	if err := os.RemoveAll(filepath.Join(dir, ClustersDir)); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(dir, ClustersDir), 0o755); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(docs))
	for id, doc := range docs {
		name := filepath.Join(ClustersDir, url.PathEscape(id)+".dot")
		if err := os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644); err != nil {
			return nil, fmt.Errorf("write cluster %s: %w", id, err)
		}
		out = append(out, name)
	}
	slices.Sort(out)
	return out, nil
}

func withMapClusters(g graph.Graph, m graph.Map) graph.Graph {
	if g.HasClusters() {
		return g
	}
	byIndex := make(map[int]string, len(m.Territories))
	for _, t := range m.Territories {
		byIndex[t.Index] = t.Cluster
	}
	byNode := make(map[string]string, len(m.Nodes))
	for _, n := range m.Nodes {
		if c, ok := byIndex[n.Cluster]; ok {
			byNode[n.ID] = c
		}
	}
	nodes := slices.Clone(g.Nodes)
	for i := range nodes {
		if nodes[i].Cluster == "" {
			nodes[i].Cluster = byNode[nodes[i].ID]
		}
	}
	g.Nodes = nodes
	return g
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag to a zero-origin viewBox with
// matching width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
