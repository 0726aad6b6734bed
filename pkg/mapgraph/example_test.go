package mapgraph_test

import (
	"fmt"

	"github.com/matzehuels/graphmap/pkg/mapgraph"
)

func ExampleBuilder() {
	b := mapgraph.NewBuilder()
	_ = b.AddNode(mapgraph.Node{ID: "catan", Cluster: "1", Weight: 120})
	_ = b.AddNode(mapgraph.Node{ID: "carcassonne", Cluster: "1", Weight: 90})
	_ = b.AddNode(mapgraph.Node{ID: "gloomhaven", Cluster: "2", Weight: 60})
	_ = b.AddEdge("catan", "carcassonne", 5)
	_ = b.AddEdge("catan", "gloomhaven", 2)

	s, err := b.Build()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	rep := s.Cluster(0).Representative
	fmt.Println("Clusters:", s.ClusterCount())
	fmt.Println("Representative of 1:", s.Node(rep).ID)
	fmt.Println("Cluster edges:", s.ClusterEdges())
	// Output:
	// Clusters: 2
	// Representative of 1: catan
	// Cluster edges: [{0 1 2}]
}
