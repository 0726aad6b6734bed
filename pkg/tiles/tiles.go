// Package tiles generates vector tiles from the point layer by shelling out
// to tippecanoe.
//
// Requires tippecanoe: brew install tippecanoe (macOS), or build it from
// https://github.com/felt/tippecanoe (Linux).
package tiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultBinary is the tippecanoe executable looked up on PATH.
const DefaultBinary = "tippecanoe"

// ErrNotInstalled is returned when the tippecanoe binary cannot be found.
var ErrNotInstalled = errors.New("tippecanoe not installed")

// Options configures [Generate].
type Options struct {
	// Binary overrides the executable name or path.
	Binary string
	// Extra arguments appended before the input file.
	Extra  []string
	Logger *log.Logger
}

// Args returns the tippecanoe argument list for writing an uncompressed tile
// directory from input.
func Args(input, outDir string, extra ...string) []string {
	args := []string{
		"--no-tile-compression",
		"-zg",
		"--drop-densest-as-needed",
		"--extend-zooms-if-still-dropping",
		"--output-to-directory", outDir,
	}
	args = append(args, extra...)
	return append(args, input, "--force")
}

// Generate runs tippecanoe on the GeoJSON file input and writes tiles into
// outDir, replacing earlier output.
func Generate(ctx context.Context, input, outDir string, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	bin := opts.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("%w: install with:\n  macOS:  brew install tippecanoe\n  Linux:  build from https://github.com/felt/tippecanoe", ErrNotInstalled)
	}

	args := Args(input, outDir, opts.Extra...)
	cmd := exec.CommandContext(ctx, path, args...)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	start := time.Now()
	logger.Info("Generating tiles", "input", input, "out", outDir)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("tippecanoe: %v: %s", err, bytes.TrimSpace(errBuf.Bytes()))
	}
	logger.Info("Generated tiles", "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
