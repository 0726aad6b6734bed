package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/graphmap/pkg/graph"
)

func sampleMap() graph.Map {
	return graph.Map{
		Version: graph.MapVersion,
		Nodes: []graph.PlacedNode{
			{ID: "13", Cluster: 0, X: -10, Y: 5, Props: map[string]any{"label": "Catan", "size": 0.6}},
			{ID: "822", Cluster: 0, X: -12, Y: 3, Props: map[string]any{"label": "Carcassonne", "size": 0.4}},
			{ID: "9209", Cluster: 1, X: 20, Y: -4, Props: map[string]any{"label": "Ticket to Ride"}},
			{ID: "x1", Cluster: 1, X: 22, Y: -6},
		},
		Territories: []graph.Territory{
			{Index: 0, Cluster: "euro", Members: 2, Color: 0, Fill: "#516ebc", Neighbors: []int{1},
				Rings: [][][2]float64{{{-90, -45}, {0, -45}, {0, 45}, {-90, 45}, {-90, -45}}}},
			{Index: 1, Cluster: "family", Members: 2, Color: 1, Fill: "#153477", Neighbors: []int{0},
				Rings: [][][2]float64{{{0, -45}, {90, -45}, {90, 45}, {0, 45}, {0, -45}}}},
		},
	}
}

func TestPoints(t *testing.T) {
	fc := Points(sampleMap())
	if len(fc.Features) != 4 {
		t.Fatalf("features = %d, want 4", len(fc.Features))
	}
	f := fc.Features[2]
	if f.Geometry.(orb.Point) != (orb.Point{20, -4}) {
		t.Errorf("geometry = %v", f.Geometry)
	}
	if f.Properties["parent"] != 1 || f.Properties["id"] != "9209" || f.Properties["label"] != "Ticket to Ride" {
		t.Errorf("properties = %v", f.Properties)
	}
}

func TestBorders(t *testing.T) {
	fc := Borders(sampleMap())
	if len(fc.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(fc.Features))
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	back, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatal(err)
	}
	f := back.Features[1]
	if f.Properties["fill"] != "#153477" || f.Properties["cluster"] != "family" {
		t.Errorf("properties = %v", f.Properties)
	}
	if id, _ := f.ID.(float64); id != 1 {
		t.Errorf("feature id = %v, want 1", f.ID)
	}
	if _, ok := f.Geometry.(orb.Polygon); !ok {
		t.Errorf("geometry = %T, want orb.Polygon", f.Geometry)
	}
}

func TestSearchIndex(t *testing.T) {
	idx := SearchIndex(sampleMap())
	if got := IndexKeys(idx); !slices.Equal(got, []string{"c", "t", "x"}) {
		t.Fatalf("keys = %v", got)
	}
	if len(idx["c"]) != 2 || idx["c"][0].Label != "Catan" || idx["c"][1].ID != "822" {
		t.Errorf("c = %v", idx["c"])
	}
	data, err := json.Marshal(idx["t"])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[["Ticket to Ride",20,-4,"9209"]]` {
		t.Errorf("json = %s", data)
	}
	var back []NameEntry
	if err := json.Unmarshal(data, &back); err != nil || back[0] != idx["t"][0] {
		t.Errorf("round trip = %v, %v", back, err)
	}
}

func TestIndexKey(t *testing.T) {
	tests := map[string]string{
		"Catan":  "c",
		" azul":  "a",
		"Ärger":  "ä",
		"7 Wond": "7",
		".hack":  "_",
		"":       "",
	}
	for in, want := range tests {
		if got := indexKey(in); got != want {
			t.Errorf("indexKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleMap())
	if !strings.HasPrefix(dot, "graph G {") {
		t.Errorf("dot does not start with graph header:\n%s", dot)
	}
	if strings.Count(dot, " -- ") != 1 || !strings.Contains(dot, "t0 -- t1;") {
		t.Errorf("dot edges wrong:\n%s", dot)
	}
	if !strings.Contains(dot, `fillcolor="#153477"`) {
		t.Errorf("dot missing fill:\n%s", dot)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, NamesDir, "z.json")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := Write(context.Background(), sampleMap(), dir, Options{Map: true, DOT: true})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, f := range files.All() {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale index file kept")
	}
	if len(files.Names) != 3 {
		t.Errorf("names = %v", files.Names)
	}
	if _, err := graph.ReadMapFile(filepath.Join(dir, MapFile)); err != nil {
		t.Errorf("map file unreadable: %v", err)
	}
}

func TestWriteClusterDOT(t *testing.T) {
	// Clusters come from the map for nodes the input left unassigned.
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "13"}, {ID: "822"}, {ID: "9209"}, {ID: "x1"}},
		Edges: []graph.Edge{{From: "13", To: "822"}, {From: "822", To: "9209"}},
	}
	dir := t.TempDir()
	names, err := WriteClusterDOT(dir, g, sampleMap())
	if err != nil {
		t.Fatalf("WriteClusterDOT: %v", err)
	}
	want := []string{filepath.Join(ClustersDir, "euro.dot"), filepath.Join(ClustersDir, "family.dot")}
	if !slices.Equal(names, want) {
		t.Fatalf("files = %v, want %v", names, want)
	}

	euro, err := graph.ReadDOTFile(filepath.Join(dir, names[0]))
	if err != nil {
		t.Fatalf("ReadDOTFile: %v", err)
	}
	if len(euro.Nodes) != 2 || len(euro.Edges) != 1 {
		t.Errorf("euro = %d nodes, %d edges, want 2 and 1", len(euro.Nodes), len(euro.Edges))
	}
	for _, n := range euro.Nodes {
		if n.Cluster != "euro" {
			t.Errorf("node %s cluster = %q", n.ID, n.Cluster)
		}
	}
}
