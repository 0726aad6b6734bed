// Package cli implements the graphmap command-line interface.
//
// # Commands
//
//   - render: turn a graph document into map layers, optionally tiles
//   - serve: run the HTTP API
//   - inspect: browse the territories of a rendered map
//   - cache: manage the local result cache
//   - completion: generate shell completion scripts
//
// All commands read graphmap.toml (see pkg/config) when present; flags
// override the file. --verbose (-v) switches logging to debug level.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphmap/pkg/buildinfo"
	"github.com/matzehuels/graphmap/pkg/cache"
	"github.com/matzehuels/graphmap/pkg/config"
	"github.com/matzehuels/graphmap/pkg/pipeline"
	"github.com/matzehuels/graphmap/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "graphmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag; empty means config.Find.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "graphmap draws relationship graphs as maps",
		Long: `graphmap turns a large weighted relationship graph into a map: clusters of
related items become contiguous territories packed onto a bounded canvas and
colored so that neighboring territories never share a color.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $GRAPHMAP_CONFIG or ./graphmap.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the first file config.Find
// locates, or the defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		path = config.Find()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		c.Logger.Debug("Loaded config", "path", path)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Cache, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.KeyPrefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.KeyPrefix)
	}
	runner := pipeline.NewRunner(cc, keyer, c.Logger)
	if cfg.TTL > 0 {
		runner.TTL = cfg.TTL
	}
	return runner, nil
}

func newCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == "redis" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// newStore opens the configured run store. A "none" backend keeps runs in a
// temporary directory that lives as long as the process.
func newStore(ctx context.Context, cfg config.Store) (store.Store, error) {
	switch cfg.Backend {
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:          cfg.MongoURI,
			Database:     cfg.Database,
			Collection:   cfg.Collection,
			ArtifactRoot: cfg.Dir,
		})
	case "none":
		dir, err := os.MkdirTemp("", appName+"-runs-")
		if err != nil {
			return nil, fmt.Errorf("create run dir: %w", err)
		}
		return store.NewFileStore(dir)
	default:
		return store.NewFileStore(cfg.Dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/graphmap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
