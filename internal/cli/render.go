package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/graphmap/pkg/config"
	"github.com/matzehuels/graphmap/pkg/enrich"
	"github.com/matzehuels/graphmap/pkg/export"
	"github.com/matzehuels/graphmap/pkg/graph"
	"github.com/matzehuels/graphmap/pkg/observability"
	"github.com/matzehuels/graphmap/pkg/pipeline"
	"github.com/matzehuels/graphmap/pkg/tiles"
)

// maxWarnings bounds the warnings printed after a render.
const maxWarnings = 10

// renderFlags holds the render flags that have no config file key.
type renderFlags struct {
	attributes string // CSV attribute table
	canvas     string // "minX,minY,maxX,maxY"
	format     string // input format; empty detects from the extension
	clusterDOT bool   // write one DOT file per cluster
	noCache    bool
	refresh    bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	cfg := config.Default()
	var rf renderFlags

	cmd := &cobra.Command{
		Use:   "render [graph.json|graph.dot]",
		Short: "Render a graph document into map layers",
		Long: `Render a graph document into map layers.

The graph is packed, partitioned into territories and colored. The output
directory receives points.geojson, borders.geojson, map.json and the search
index under names/. With --tiles, tippecanoe turns both layers into vector
tiles under tiles/.

The input is a JSON graph document or a Graphviz DOT file, chosen by
--format or the file extension. DOT nodes carry cluster, x, y and weight
attributes; nodes inside a "cluster_<id>" subgraph inherit that id.

Nodes without a cluster id are clustered by community detection. Clusters
without local coordinates are laid out with a force simulation.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.applyConfig(cmd, &cfg); err != nil {
				return err
			}
			if _, err := graph.ParseFormat(rf.format); err != nil {
				return err
			}
			if rf.canvas != "" {
				b, err := parseCanvas(rf.canvas)
				if err != nil {
					return err
				}
				cfg.Canvas.Bounds = b
			}
			return c.runRender(cmd.Context(), args[0], cfg, rf)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.Output.Dir, "out", "o", cfg.Output.Dir, "output directory")
	f.StringVarP(&rf.attributes, "attributes", "a", "", "CSV attribute table merged into the nodes")
	f.StringVar(&rf.format, "format", "", "input format: json, dot (default: from the extension)")
	f.StringVar(&cfg.Output.KeyColumn, "key-column", cfg.Output.KeyColumn, "CSV column holding node ids")
	f.BoolVar(&rf.noCache, "no-cache", false, "disable caching")
	f.BoolVar(&rf.refresh, "refresh", false, "recompute even when the map is cached")

	// Pack flags
	f.IntVar(&cfg.Pack.TopK, "top-k", cfg.Pack.TopK, "strongest inter-cluster edges kept per cluster (0: default)")
	f.Uint64Var(&cfg.Pack.Seed, "seed", cfg.Pack.Seed, "random seed")
	f.IntVar(&cfg.Pack.Ticks, "ticks", cfg.Pack.Ticks, "collision ticks (0: default)")
	f.Float64Var(&cfg.Pack.Padding, "padding", cfg.Pack.Padding, "gap between packed clusters (0: default)")
	f.Float64Var(&cfg.Pack.Resolution, "resolution", cfg.Pack.Resolution, "community detection resolution (0: default)")
	f.BoolVar(&cfg.Pack.Relayout, "relayout", cfg.Pack.Relayout, "recompute local layouts even when coordinates are present")

	// Partition and canvas flags
	f.StringVar(&cfg.Partition.Region, "region", cfg.Partition.Region, "clip region: bbox, hull")
	f.Float64Var(&cfg.Partition.Simplify, "simplify", cfg.Partition.Simplify, "territory simplification tolerance")
	f.StringVar(&rf.canvas, "canvas", "", "target rectangle minX,minY,maxX,maxY")

	// Coloring flags
	f.IntVar(&cfg.Coloring.Colors, "colors", cfg.Coloring.Colors, "number of territory colors")
	f.IntVar(&cfg.Coloring.MaxSteps, "max-steps", cfg.Coloring.MaxSteps, "coloring search ceiling (0: default)")
	f.DurationVar(&cfg.Coloring.Budget, "budget", cfg.Coloring.Budget, "coloring search time budget (0: none)")
	f.StringVar(&cfg.Coloring.Fallback, "fallback", cfg.Coloring.Fallback, "coloring fallback: best-effort, extend, fail")

	// Output flags
	f.BoolVar(&cfg.Output.DOT, "dot", cfg.Output.DOT, "write the territory adjacency graph as DOT")
	f.BoolVar(&cfg.Output.SVG, "svg", cfg.Output.SVG, "render the territory adjacency graph as SVG")
	f.BoolVar(&rf.clusterDOT, "cluster-dot", false, "write each cluster's subgraph as DOT under clusters/")
	f.BoolVar(&cfg.Output.Tiles, "tiles", cfg.Output.Tiles, "generate vector tiles with tippecanoe")
	f.StringVar(&cfg.Output.Tippecanoe, "tippecanoe", cfg.Output.Tippecanoe, "tippecanoe binary")

	return cmd
}

// runRender renders input and writes the layers under cfg.Output.Dir.
func (c *CLI) runRender(ctx context.Context, input string, cfg config.Config, rf renderFlags) error {
	logger := loggerFromContext(ctx)

	format, err := graph.ParseFormat(rf.format)
	if err != nil {
		return err
	}
	g, err := graph.ReadFile(input, format)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	opts := cfg.Options()
	opts.Refresh = rf.refresh
	opts.Logger = logger
	if rf.attributes != "" {
		table, issues, err := enrich.ReadCSVFile(rf.attributes, enrich.Options{KeyColumn: cfg.Output.KeyColumn})
		if err != nil {
			return fmt.Errorf("load attributes %s: %w", rf.attributes, err)
		}
		for _, e := range issues {
			logger.Warn("Skipped attribute", "ids", e.IDs, "reason", e.Message)
		}
		opts.Attributes = table
	}

	runner, err := c.newRunner(ctx, cfg.Cache, rf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering map...")
	prev := observability.Pipeline()
	observability.SetPipelineHooks(stageHooks{PipelineHooks: prev, spinner: spinner})
	defer observability.SetPipelineHooks(prev)
	spinner.Start()

	res, err := runner.Execute(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered map", "territories", len(res.Map.Territories), "cache_hit", res.CacheHit)

	out := cfg.Output.Dir
	files, err := export.Write(ctx, res.Map, out, export.Options{
		Map:    true,
		DOT:    cfg.Output.DOT,
		SVG:    cfg.Output.SVG,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("write layers: %w", err)
	}

	printSuccess("Map complete")
	for _, name := range []string{files.Points, files.Borders, files.Map, files.DOT, files.SVG} {
		if name != "" {
			printFile(filepath.Join(out, name))
		}
	}
	printDetail("%d search index files under %s", len(files.Names), filepath.Join(out, export.NamesDir))
	if rf.clusterDOT {
		names, err := export.WriteClusterDOT(out, g, res.Map)
		if err != nil {
			return fmt.Errorf("write cluster DOT files: %w", err)
		}
		printDetail("%d cluster DOT files under %s", len(names), filepath.Join(out, export.ClustersDir))
	}

	if cfg.Output.Tiles {
		if err := c.generateTiles(ctx, out, cfg.Output); err != nil {
			return err
		}
	}

	printMapStats(res)
	printWarnings(res.Warnings)
	printNewline()
	printNextStep("Inspect", appName+" inspect "+filepath.Join(out, export.MapFile))
	return nil
}

// generateTiles runs tippecanoe over both layers.
func (c *CLI) generateTiles(ctx context.Context, out string, cfg config.Output) error {
	opts := tiles.Options{Binary: cfg.Tippecanoe, Extra: cfg.TippecanoeArgs, Logger: loggerFromContext(ctx)}
	for _, layer := range []string{export.PointsFile, export.BordersFile} {
		name := strings.TrimSuffix(layer, filepath.Ext(layer))
		dir := filepath.Join(out, "tiles", name)
		spinner := newSpinnerWithContext(ctx, "Generating "+name+" tiles...")
		spinner.Start()
		if err := tiles.Generate(ctx, filepath.Join(out, layer), dir, opts); err != nil {
			spinner.StopWithError("Tile generation failed")
			return fmt.Errorf("generate %s tiles: %w", name, err)
		}
		spinner.Stop()
		printFile(dir)
	}
	return nil
}

func printWarnings(ws []pipeline.Warning) {
	for i, w := range ws {
		if i == maxWarnings {
			printDetail("... and %d more warnings", len(ws)-maxWarnings)
			break
		}
		msg := fmt.Sprintf("%s: %s", w.Code, w.Message)
		if len(w.IDs) > 0 {
			msg += " [" + strings.Join(w.IDs, ", ") + "]"
		}
		printWarning("%s", msg)
	}
}

// parseCanvas parses "minX,minY,maxX,maxY".
func parseCanvas(s string) ([4]float64, error) {
	var b [4]float64
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return b, fmt.Errorf("invalid canvas %q: want minX,minY,maxX,maxY", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return b, fmt.Errorf("invalid canvas %q: %w", s, err)
		}
		b[i] = v
	}
	return b, nil
}

// applyConfig loads the config file into cfg and then re-applies every flag
// set on the command line, so flags override the file.
func (c *CLI) applyConfig(cmd *cobra.Command, cfg *config.Config) error {
	set := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) { set[f.Name] = f.Value.String() })

	loaded, err := c.loadConfig()
	if err != nil {
		return err
	}
	*cfg = loaded
	for name, v := range set {
		if err := cmd.Flags().Set(name, v); err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
	}
	return cfg.Validate()
}
