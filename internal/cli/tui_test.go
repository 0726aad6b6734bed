package cli

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/graphmap/pkg/graph"
)

func testMap() graph.Map {
	ring := [][][2]float64{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	return graph.Map{
		Version: graph.MapVersion,
		Nodes: []graph.PlacedNode{
			{ID: "a1", Cluster: 0}, {ID: "b1", Cluster: 1}, {ID: "b2", Cluster: 1},
			{ID: "c1", Cluster: 2}, {ID: "c2", Cluster: 2}, {ID: "c3", Cluster: 2},
		},
		Territories: []graph.Territory{
			{Index: 0, Cluster: "a", Members: 1, Color: 0, Fill: "#4e79a7", Neighbors: []int{1}, Rings: ring},
			{Index: 1, Cluster: "b", Members: 2, Color: 1, Fill: "#f28e2b", Neighbors: []int{0, 2}, Rings: ring},
			{Index: 2, Cluster: "c", Members: 3, Color: 0, Fill: "#4e79a7", Neighbors: []int{1}, Rings: ring},
		},
		Coloring: graph.ColoringStats{Policy: "exact", Colors: 2},
		Warnings: []graph.Warning{{Code: "UNION_MULTIPART", Message: "kept largest part", IDs: []string{"c"}}},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m TerritoryListModel, keys ...string) (TerritoryListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(TerritoryListModel)
	}
	return m, cmd
}

func TestTerritoryListNavigation(t *testing.T) {
	m := NewTerritoryListModel(testMap())

	m, _ = press(m, "down", "down", "down")
	if sel, _ := m.Selected(); sel.Cluster != "c" {
		t.Errorf("selected %q after moving past the end, want c", sel.Cluster)
	}

	m, _ = press(m, "up", "k")
	if sel, _ := m.Selected(); sel.Cluster != "a" {
		t.Errorf("selected %q, want a", sel.Cluster)
	}
}

func TestTerritoryListSort(t *testing.T) {
	m := NewTerritoryListModel(testMap())

	m, _ = press(m, "s")
	if sel, _ := m.Selected(); sel.Cluster != "c" {
		t.Errorf("first by members = %q, want c", sel.Cluster)
	}

	m, _ = press(m, "s")
	if sel, _ := m.Selected(); sel.Cluster != "b" {
		t.Errorf("first by neighbors = %q, want b", sel.Cluster)
	}

	m, _ = press(m, "s")
	if sel, _ := m.Selected(); sel.Cluster != "a" {
		t.Errorf("first by index = %q, want a", sel.Cluster)
	}
}

func TestTerritoryListDetail(t *testing.T) {
	m := NewTerritoryListModel(testMap())
	m, _ = press(m, "down", "down", "enter")
	if !m.Detail {
		t.Fatal("enter should open the detail view")
	}

	view := m.View()
	for _, want := range []string{"Cluster c", "c1, c2, c3", "UNION_MULTIPART"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q", want)
		}
	}

	m, cmd := press(m, "esc")
	if m.Detail {
		t.Error("esc should close the detail view")
	}
	if cmd != nil {
		t.Error("esc in the detail view should not quit")
	}
}

func TestTerritoryListQuit(t *testing.T) {
	_, cmd := press(NewTerritoryListModel(testMap()), "q")
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPrintTerritories(t *testing.T) {
	var buf bytes.Buffer
	if err := printTerritories(&buf, NewTerritoryListModel(testMap())); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Territories", "Cluster", "Neighbors", "1 warnings"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "▸") {
		t.Error("plain table should not show a cursor")
	}
}
