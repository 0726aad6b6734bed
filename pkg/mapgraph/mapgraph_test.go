package mapgraph

import (
	"errors"
	"slices"
	"testing"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
)

func mustBuild(t *testing.T, nodes []Node, edges [][3]any) *Snapshot {
	t.Helper()
	b := NewBuilder()
	for _, n := range nodes {
		if err := b.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s) error = %v", n.ID, err)
		}
	}
	for _, e := range edges {
		if err := b.AddEdge(e[0].(string), e[1].(string), e[2].(float64)); err != nil {
			t.Fatalf("AddEdge() error = %v", err)
		}
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return s
}

func TestBuild_NaturalClusterOrder(t *testing.T) {
	s := mustBuild(t, []Node{
		{ID: "a", Cluster: "10"},
		{ID: "b", Cluster: "2"},
		{ID: "c", Cluster: "x"},
		{ID: "d", Cluster: "1"},
	}, nil)

	var got []string
	for _, c := range s.Clusters() {
		got = append(got, c.ID)
	}
	want := []string{"1", "2", "10", "x"}
	if !slices.Equal(got, want) {
		t.Errorf("cluster order = %v, want %v", got, want)
	}
}

func TestBuild_Representative(t *testing.T) {
	s := mustBuild(t, []Node{
		{ID: "a", Cluster: "0", Weight: 1},
		{ID: "b", Cluster: "0", Weight: 5},
		{ID: "c", Cluster: "0", Weight: 5},
	}, nil)

	if got := s.Cluster(0).Representative; got != 1 {
		t.Errorf("Representative = %d, want 1 (first max-weight member)", got)
	}
}

func TestBuild_AggregatesClusterEdges(t *testing.T) {
	s := mustBuild(t, []Node{
		{ID: "a", Cluster: "0"},
		{ID: "b", Cluster: "0"},
		{ID: "c", Cluster: "1"},
		{ID: "d", Cluster: "2"},
	}, [][3]any{
		{"a", "b", 9.0},
		{"a", "c", 1.0},
		{"b", "c", 2.0},
		{"d", "a", 4.0},
	})

	want := []ClusterEdge{{A: 0, B: 1, Weight: 3}, {A: 0, B: 2, Weight: 4}}
	if got := s.ClusterEdges(); !slices.Equal(got, want) {
		t.Errorf("ClusterEdges() = %v, want %v", got, want)
	}
	if got := len(s.InternalEdges(0)); got != 1 {
		t.Errorf("InternalEdges(0) = %d, want 1", got)
	}
}

func TestBuild_ExplicitClusterEdges(t *testing.T) {
	b := NewBuilder()
	_ = b.AddNode(Node{ID: "a", Cluster: "p"})
	_ = b.AddNode(Node{ID: "b", Cluster: "q"})
	_ = b.AddEdge("a", "b", 1)
	_ = b.AddClusterEdge("q", "p", 2)

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := []ClusterEdge{{A: 0, B: 1, Weight: 3}}
	if got := s.ClusterEdges(); !slices.Equal(got, want) {
		t.Errorf("ClusterEdges() = %v, want %v", got, want)
	}

	b = NewBuilder()
	_ = b.AddNode(Node{ID: "a", Cluster: "p"})
	_ = b.AddClusterEdge("p", "zz", 1)
	if _, err := b.Build(); !errors.Is(err, ErrUnknownCluster) {
		t.Errorf("Build() error = %v, want ErrUnknownCluster", err)
	}
}

func TestBuild_Errors(t *testing.T) {
	if _, err := NewBuilder().Build(); !apperrors.Is(err, apperrors.ErrCodeEmptyInput) {
		t.Errorf("empty Build() error = %v, want EMPTY_INPUT", err)
	}

	b := NewBuilder()
	_ = b.AddNode(Node{ID: "a", Cluster: "0"})
	_ = b.AddNode(Node{ID: "b"})
	_, err := b.Build()
	if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("Build() error = %v, want INVALID_INPUT", err)
	}
	if ids := apperrors.GetIDs(err); !slices.Equal(ids, []string{"b"}) {
		t.Errorf("GetIDs() = %v, want [b]", ids)
	}
}

func TestBuilder_AddNodeErrors(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want error
	}{
		{"empty id", Node{ID: ""}, ErrInvalidNodeID},
		{"negative weight", Node{ID: "n", Weight: -1}, ErrInvalidWeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewBuilder().AddNode(tt.node); !errors.Is(err, tt.want) {
				t.Errorf("AddNode() error = %v, want %v", err, tt.want)
			}
		})
	}

	b := NewBuilder()
	_ = b.AddNode(Node{ID: "n"})
	if err := b.AddNode(Node{ID: "n"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate AddNode() error = %v", err)
	}
	if err := b.AddEdge("n", "missing", 1); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("AddEdge() error = %v, want ErrUnknownNode", err)
	}
}

func TestAttributes_Validate(t *testing.T) {
	tests := []struct {
		name    string
		attrs   Attributes
		wantErr bool
	}{
		{"empty", Attributes{}, false},
		{"valid", Attributes{Rating: Ptr(7.5), MinPlayers: Ptr(2), MaxPlayers: Ptr(4)}, false},
		{"rating out of range", Attributes{Rating: Ptr(11.0)}, true},
		{"size out of range", Attributes{Size: Ptr(1.5)}, true},
		{"players inverted", Attributes{MinPlayers: Ptr(5), MaxPlayers: Ptr(2)}, true},
		{"time inverted", Attributes{MinTime: Ptr(90), MaxTime: Ptr(30)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.attrs.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAttributes_MergeAndProperties(t *testing.T) {
	a := Attributes{Label: Ptr("Catan")}
	merged := a.Merge(Attributes{Label: Ptr("other"), Year: Ptr(1995)})

	p := merged.Properties()
	if p["label"] != "Catan" {
		t.Errorf("label = %v, want Catan", p["label"])
	}
	if p["year"] != 1995 {
		t.Errorf("year = %v, want 1995", p["year"])
	}
	if _, ok := p["ratings"]; ok {
		t.Error("unset field should be omitted")
	}
	if a.Year != nil {
		t.Error("Merge mutated receiver")
	}
}

func TestCompareIDs(t *testing.T) {
	ids := []string{"b", "10", "a", "9", "-1"}
	slices.SortFunc(ids, CompareIDs)
	want := []string{"-1", "9", "10", "a", "b"}
	if !slices.Equal(ids, want) {
		t.Errorf("sorted = %v, want %v", ids, want)
	}
}
