package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphmap/pkg/graph"
)

// inspectCommand creates the inspect command for browsing a rendered map.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect [map.json]",
		Short: "Browse the territories of a rendered map",
		Long: `Browse the territories of a rendered map.

Opens an interactive list of territories with their member counts, colors and
neighbors. Press enter on a territory for its details. With --plain, or when
stdout is not a terminal, the table is printed once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := graph.ReadMapFile(args[0])
			if err != nil {
				return err
			}
			model := NewTerritoryListModel(m)
			if plain || !isTerminal(os.Stdout) {
				return printTerritories(cmd.OutOrStdout(), model)
			}
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the territory table and exit")
	return cmd
}

// printTerritories writes the full territory table without a selection.
func printTerritories(w io.Writer, m TerritoryListModel) error {
	_, err := fmt.Fprintf(w, "%s  %s\n%s\n", StyleTitle.Render("Territories"), StyleDim.Render(m.summary()),
		m.tableView(0, len(m.order), -1))
	return err
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
