package community

import (
	"slices"
	"testing"

	"github.com/matzehuels/graphmap/pkg/mapgraph"
)

// twoCliques builds two 4-cliques joined by a single light edge.
func twoCliques(t *testing.T) *mapgraph.Builder {
	t.Helper()
	b := mapgraph.NewBuilder()
	for _, id := range []string{"a", "b", "c", "d", "w", "x", "y", "z"} {
		if err := b.AddNode(mapgraph.Node{ID: id, Weight: 1}); err != nil {
			t.Fatal(err)
		}
	}
	for _, grp := range [][]string{{"a", "b", "c", "d"}, {"w", "x", "y", "z"}} {
		for i := range grp {
			for j := i + 1; j < len(grp); j++ {
				if err := b.AddEdge(grp[i], grp[j], 5); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	if err := b.AddEdge("d", "w", 1); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestDetectTwoCliques(t *testing.T) {
	b := twoCliques(t)
	res, err := Detect(b, Options{})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	want := [][]string{{"a", "b", "c", "d"}, {"w", "x", "y", "z"}}
	if len(res.Communities) != 2 {
		t.Fatalf("Communities = %v, want %v", res.Communities, want)
	}
	for i := range want {
		if !slices.Equal(res.Communities[i], want[i]) {
			t.Errorf("community %d = %v, want %v", i, res.Communities[i], want[i])
		}
	}
	if res.Modularity <= 0 {
		t.Errorf("Modularity = %v, want > 0", res.Modularity)
	}

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.ClusterCount() != 2 {
		t.Errorf("ClusterCount = %d, want 2", s.ClusterCount())
	}
	if s.Cluster(0).ID != "0" || s.Cluster(1).ID != "1" {
		t.Errorf("cluster ids = %q, %q", s.Cluster(0).ID, s.Cluster(1).ID)
	}
}

func TestDetectIsolatedNodes(t *testing.T) {
	b := mapgraph.NewBuilder()
	for _, id := range []string{"p", "q", "r"} {
		if err := b.AddNode(mapgraph.Node{ID: id, Weight: 1}); err != nil {
			t.Fatal(err)
		}
	}
	res, err := Detect(b, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Communities) != 3 {
		t.Errorf("Communities = %v, want 3 singletons", res.Communities)
	}
	if len(b.Unclustered()) != 0 {
		t.Errorf("Unclustered = %v", b.Unclustered())
	}
}

func TestDetectEmpty(t *testing.T) {
	if _, err := Detect(mapgraph.NewBuilder(), Options{}); err == nil {
		t.Fatal("expected error for empty builder")
	}
}
