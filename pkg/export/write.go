package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphmap/pkg/graph"
)

// Artifact file names inside the output directory.
const (
	PointsFile  = "points.geojson"
	BordersFile = "borders.geojson"
	MapFile     = "map.json"
	NamesDir    = "names"
	DOTFile     = "adjacency.dot"
	SVGFile     = "adjacency.svg"
	ClustersDir = "clusters"
)

// Options configures [Write].
type Options struct {
	// Map also writes the map document itself.
	Map bool
	// DOT writes the adjacency graph as DOT; SVG additionally renders it.
	DOT    bool
	SVG    bool
	Logger *log.Logger
}

// Files lists the written artifacts relative to the output directory.
type Files struct {
	Points  string   `json:"points"`
	Borders string   `json:"borders"`
	Map     string   `json:"map,omitempty"`
	Names   []string `json:"names"`
	DOT     string   `json:"dot,omitempty"`
	SVG     string   `json:"svg,omitempty"`
}

// All returns every written file.
func (f Files) All() []string {
	out := []string{f.Points, f.Borders}
	for _, s := range []string{f.Map, f.DOT, f.SVG} {
		if s != "" {
			out = append(out, s)
		}
	}
	return append(out, f.Names...)
}

// Write writes the artifacts of m under dir. Stale search index files from
// an earlier run are removed first.
func Write(ctx context.Context, m graph.Map, dir string, opts Options) (Files, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, err
	}

	files := Files{Points: PointsFile, Borders: BordersFile}
	if err := writeJSON(filepath.Join(dir, PointsFile), Points(m)); err != nil {
		return Files{}, fmt.Errorf("write points: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, BordersFile), Borders(m)); err != nil {
		return Files{}, fmt.Errorf("write borders: %w", err)
	}
	if opts.Map {
		if err := graph.WriteMapFile(m, filepath.Join(dir, MapFile)); err != nil {
			return Files{}, fmt.Errorf("write map: %w", err)
		}
		files.Map = MapFile
	}

	names, err := writeNames(filepath.Join(dir, NamesDir), SearchIndex(m))
	if err != nil {
		return Files{}, fmt.Errorf("write search index: %w", err)
	}
	files.Names = names

	if opts.DOT || opts.SVG {
		dot := ToDOT(m)
		if err := os.WriteFile(filepath.Join(dir, DOTFile), []byte(dot), 0o644); err != nil {
			return Files{}, err
		}
		files.DOT = DOTFile
		if opts.SVG {
			svg, err := RenderSVG(ctx, dot)
			if err != nil {
				return Files{}, err
			}
			if err := os.WriteFile(filepath.Join(dir, SVGFile), svg, 0o644); err != nil {
				return Files{}, err
			}
			files.SVG = SVGFile
		}
	}

	logger.Debug("Wrote artifacts", "dir", dir, "files", len(files.All()))
	return files, nil
}

func writeNames(dir string, idx map[string][]NameEntry) ([]string, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var out []string
	for _, key := range IndexKeys(idx) {
		name := filepath.Join(NamesDir, key+".json")
		if err := writeJSON(filepath.Join(dir, key+".json"), idx[key]); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
