package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/graphmap/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// maxDetailMembers bounds the member ids listed in the detail pane.
const maxDetailMembers = 12

// =============================================================================
// TerritoryListModel - Interactive territory browser
// =============================================================================

// territorySort is the ordering of the territory list.
type territorySort int

const (
	sortByIndex territorySort = iota
	sortByMembers
	sortByNeighbors
)

func (s territorySort) String() string {
	switch s {
	case sortByMembers:
		return "members"
	case sortByNeighbors:
		return "neighbors"
	default:
		return "index"
	}
}

// TerritoryListModel is the bubbletea model behind `graphmap inspect`.
type TerritoryListModel struct {
	Map    graph.Map
	Cursor int
	Height int
	Offset int
	Detail bool

	order   []int // territory positions in display order
	sortBy  territorySort
	members map[int][]string // territory index -> node ids
}

// NewTerritoryListModel creates a browser over the territories of m.
func NewTerritoryListModel(m graph.Map) TerritoryListModel {
	members := make(map[int][]string)
	for _, n := range m.Nodes {
		members[n.Cluster] = append(members[n.Cluster], n.ID)
	}
	model := TerritoryListModel{
		Map:     m,
		Height:  15,
		members: members,
	}
	model.sort()
	return model
}

func (m TerritoryListModel) Init() tea.Cmd {
	return nil
}

func (m TerritoryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.Detail && msg.String() == "esc" {
				m.Detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.order)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Detail = !m.Detail
		case "s":
			m.sortBy = (m.sortBy + 1) % 3
			m.sort()
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// Selected returns the territory under the cursor.
func (m TerritoryListModel) Selected() (graph.Territory, bool) {
	if len(m.order) == 0 {
		return graph.Territory{}, false
	}
	return m.Map.Territories[m.order[m.Cursor]], true
}

func (m *TerritoryListModel) sort() {
	ts := m.Map.Territories
	m.order = make([]int, len(ts))
	for i := range m.order {
		m.order[i] = i
	}
	key := func(i int) int {
		switch m.sortBy {
		case sortByMembers:
			return ts[i].Members
		case sortByNeighbors:
			return len(ts[i].Neighbors)
		}
		return -ts[i].Index
	}
	sort.SliceStable(m.order, func(a, b int) bool {
		return key(m.order[a]) > key(m.order[b])
	})
}

func (m TerritoryListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Territories"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.summary()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  s sort  q quit"))
	b.WriteString("\n\n")

	if m.Detail {
		if t, ok := m.Selected(); ok {
			b.WriteString(m.detailView(t))
			return b.String()
		}
	}

	b.WriteString(m.tableView(m.Offset, min(m.Offset+m.Height, len(m.order)), m.Cursor))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] sorted by %s", m.Cursor+1, len(m.order), m.sortBy)))

	return b.String()
}

func (m TerritoryListModel) summary() string {
	c := m.Map.Coloring
	s := fmt.Sprintf("%d nodes · %d colors · %s", len(m.Map.Nodes), c.Colors, c.Policy)
	if len(c.Conflicts) > 0 {
		s += fmt.Sprintf(" · %d conflicts", len(c.Conflicts))
	}
	if len(m.Map.Warnings) > 0 {
		s += fmt.Sprintf(" · %d warnings", len(m.Map.Warnings))
	}
	return s
}

// tableView renders rows [from, to) of the display order. cursor < 0
// renders without a selection.
func (m TerritoryListModel) tableView(from, to, cursor int) string {
	ts := m.Map.Territories
	conflicted := m.conflicted()

	rows := [][]string{}
	for i := from; i < to; i++ {
		t := ts[m.order[i]]
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		conflict := ""
		if conflicted[t.Index] {
			conflict = iconWarning
		}
		rows = append(rows, []string{
			marker,
			t.Cluster,
			strconv.Itoa(t.Members),
			swatch(t.Fill) + " " + strconv.Itoa(t.Color),
			strconv.Itoa(len(t.Neighbors)),
			fmt.Sprintf("%.1f, %.1f", t.Center[0], t.Center[1]),
			conflict,
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Cluster", "Members", "Color", "Neighbors", "Center", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			base := lipgloss.NewStyle()
			if col == 6 {
				return base.Foreground(colorYellow)
			}
			if from+row == cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			if col == 5 {
				return base.Foreground(colorDim)
			}
			return base
		})
	return tbl.Render()
}

func (m TerritoryListModel) detailView(t graph.Territory) string {
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(lipgloss.NewStyle().Foreground(colorGray).Width(12).Render(key))
		b.WriteString(" ")
		b.WriteString(StyleValue.Render(value))
		b.WriteString("\n")
	}

	b.WriteString(listSelectedStyle.Render("Cluster " + t.Cluster))
	b.WriteString("\n\n")
	line("Index", strconv.Itoa(t.Index))
	line("Members", strconv.Itoa(t.Members))
	line("Color", swatch(t.Fill)+" "+strconv.Itoa(t.Color)+" "+t.Fill)
	line("Center", fmt.Sprintf("%.2f, %.2f", t.Center[0], t.Center[1]))
	line("Radius", fmt.Sprintf("%.2f", t.Radius))
	line("Rings", strconv.Itoa(len(t.Rings)))

	names := make([]string, 0, len(t.Neighbors))
	for _, n := range t.Neighbors {
		if n >= 0 && n < len(m.Map.Territories) {
			names = append(names, m.Map.Territories[n].Cluster)
		}
	}
	line("Neighbors", orDash(strings.Join(names, ", ")))

	ids := m.members[t.Index]
	shown := ids
	if len(shown) > maxDetailMembers {
		shown = shown[:maxDetailMembers]
	}
	nodes := strings.Join(shown, ", ")
	if len(ids) > len(shown) {
		nodes += fmt.Sprintf(" … +%d", len(ids)-len(shown))
	}
	line("Nodes", orDash(nodes))

	for _, w := range m.Map.Warnings {
		for _, id := range w.IDs {
			if id == t.Cluster {
				b.WriteString("\n")
				b.WriteString(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(w.Code+": "+w.Message))
				break
			}
		}
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("⏎/esc back"))
	return b.String()
}

// conflicted returns the territory indices involved in a coloring conflict.
func (m TerritoryListModel) conflicted() map[int]bool {
	out := make(map[int]bool)
	for _, c := range m.Map.Coloring.Conflicts {
		out[c[0]] = true
		out[c[1]] = true
	}
	return out
}

// =============================================================================
// Helpers
// =============================================================================

// swatch renders a two-cell block in the fill color.
func swatch(fill string) string {
	if fill == "" {
		return "  "
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(fill)).Render("  ")
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
