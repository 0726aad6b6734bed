package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphmap/pkg/config"
	"github.com/matzehuels/graphmap/pkg/export"
	"github.com/matzehuels/graphmap/pkg/graph"
)

func TestParseCanvas(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    [4]float64
		wantErr bool
	}{
		{"plain", "-180,-90,180,90", [4]float64{-180, -90, 180, 90}, false},
		{"spaces", " 0, 0 ,10, 5", [4]float64{0, 0, 10, 5}, false},
		{"too few", "0,0,10", [4]float64{}, true},
		{"not a number", "0,0,ten,5", [4]float64{}, true},
		{"empty", "", [4]float64{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCanvas(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCanvas(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseCanvas(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApplyConfigFlagsOverrideFile(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.configPath = writeConfig(t, `
[pack]
seed = 7

[coloring]
colors = 5
`)

	cfg := config.Default()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Uint64Var(&cfg.Pack.Seed, "seed", cfg.Pack.Seed, "")
	cmd.Flags().IntVar(&cfg.Coloring.Colors, "colors", cfg.Coloring.Colors, "")
	if err := cmd.ParseFlags([]string{"--seed", "9"}); err != nil {
		t.Fatal(err)
	}

	if err := c.applyConfig(cmd, &cfg); err != nil {
		t.Fatalf("applyConfig() error: %v", err)
	}
	if cfg.Pack.Seed != 9 {
		t.Errorf("seed = %d, want 9 from the flag", cfg.Pack.Seed)
	}
	if cfg.Coloring.Colors != 5 {
		t.Errorf("colors = %d, want 5 from the file", cfg.Coloring.Colors)
	}
	if cfg.Partition.Region != "bbox" {
		t.Errorf("region = %q, want the default", cfg.Partition.Region)
	}
}

func TestApplyConfigInvalid(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.configPath = writeConfig(t, "[coloring]\nfallback = \"retry\"\n")

	cfg := config.Default()
	cmd := &cobra.Command{Use: "test"}
	if err := c.applyConfig(cmd, &cfg); err == nil {
		t.Error("applyConfig() should reject an unknown fallback")
	}
}

func TestApplyConfigInvalidFlag(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.configPath = writeConfig(t, "")

	cfg := config.Default()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&cfg.Partition.Region, "region", cfg.Partition.Region, "")
	if err := cmd.ParseFlags([]string{"--region", "circle"}); err != nil {
		t.Fatal(err)
	}
	if err := c.applyConfig(cmd, &cfg); err == nil {
		t.Error("applyConfig() should validate flag values")
	}
}

func ptr(v float64) *float64 { return &v }

func writeGraph(t *testing.T) string {
	t.Helper()
	n := func(id, cluster string, x, y float64) graph.Node {
		return graph.Node{ID: id, Cluster: cluster, X: ptr(x), Y: ptr(y)}
	}
	g := graph.Graph{
		Nodes: []graph.Node{
			n("a1", "a", 0, 0), n("a2", "a", 10, 0), n("a3", "a", 5, 8),
			n("b1", "b", 0, 0), n("b2", "b", 10, 0), n("b3", "b", 5, 8),
		},
		Edges: []graph.Edge{
			{From: "a1", To: "a2"}, {From: "b1", To: "b2"}, {From: "a3", To: "b3"},
		},
	}
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := graph.WriteGraphFile(g, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRender(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	cfg.Output.DOT = true

	ctx := withLogger(context.Background(), c.Logger)
	if err := c.runRender(ctx, writeGraph(t), cfg, renderFlags{noCache: true}); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	for _, name := range []string{export.PointsFile, export.BordersFile, export.MapFile} {
		if _, err := os.Stat(filepath.Join(cfg.Output.Dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	m, err := graph.ReadMapFile(filepath.Join(cfg.Output.Dir, export.MapFile))
	if err != nil {
		t.Fatalf("ReadMapFile() error: %v", err)
	}
	if len(m.Territories) != 2 {
		t.Errorf("territories = %d, want 2", len(m.Territories))
	}
}

func TestRunRenderMissingInput(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()

	err := c.runRender(context.Background(), filepath.Join(t.TempDir(), "missing.json"), cfg, renderFlags{noCache: true})
	if err == nil {
		t.Error("runRender() should fail for a missing graph file")
	}
}

const twoClusterDOT = `graph g {
  subgraph cluster_a {
    a1 [x=0, y=0]; a2 [x=10, y=0]; a3 [x=5, y=8];
    a1 -- a2;
  }
  subgraph cluster_b {
    b1 [pos="0,0"]; b2 [pos="10,0"]; b3 [pos="5,8"];
    b1 -- b2 [weight=2];
  }
  a3 -- b3;
}
`

func TestRunRenderDOT(t *testing.T) {
	for _, tt := range []struct {
		name   string
		file   string
		format string
	}{
		{"extension", "graph.dot", ""},
		{"flag", "graph.txt", "dot"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			input := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(input, []byte(twoClusterDOT), 0o644); err != nil {
				t.Fatal(err)
			}
			c := New(&bytes.Buffer{}, log.InfoLevel)
			cfg := config.Default()
			cfg.Output.Dir = t.TempDir()

			ctx := withLogger(context.Background(), c.Logger)
			rf := renderFlags{noCache: true, format: tt.format, clusterDOT: true}
			if err := c.runRender(ctx, input, cfg, rf); err != nil {
				t.Fatalf("runRender() error: %v", err)
			}
			m, err := graph.ReadMapFile(filepath.Join(cfg.Output.Dir, export.MapFile))
			if err != nil {
				t.Fatal(err)
			}
			if len(m.Territories) != 2 {
				t.Errorf("territories = %d, want 2", len(m.Territories))
			}
			for _, id := range []string{"a", "b"} {
				if _, err := os.Stat(filepath.Join(cfg.Output.Dir, export.ClustersDir, id+".dot")); err != nil {
					t.Errorf("missing cluster file for %s: %v", id, err)
				}
			}
		})
	}
}

func TestRunRenderUnknownFormat(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()

	err := c.runRender(context.Background(), writeGraph(t), cfg, renderFlags{noCache: true, format: "graphml"})
	if err == nil {
		t.Error("runRender() should reject an unknown format")
	}
}
