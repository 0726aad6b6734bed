package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphmap/internal/api"
	"github.com/matzehuels/graphmap/pkg/buildinfo"
	"github.com/matzehuels/graphmap/pkg/config"
	"github.com/matzehuels/graphmap/pkg/observability"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

POST /render renders a graph document, stores the run and returns its map.
Stored runs and their artifacts are served under /runs. Prometheus metrics
are exposed at /metrics.

Render options in a request start from the [pack], [partition], [coloring]
and [canvas] sections of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.applyConfig(cmd, &cfg); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "listen address")
	f.Int64Var(&cfg.Server.Concurrency, "concurrency", cfg.Server.Concurrency, "renders allowed in flight")
	f.StringVar(&cfg.Cache.Backend, "cache", cfg.Cache.Backend, "cache backend: file, redis, none")
	f.StringVar(&cfg.Cache.RedisAddr, "redis-addr", cfg.Cache.RedisAddr, "redis address for the redis cache")
	f.StringVar(&cfg.Store.Backend, "store", cfg.Store.Backend, "run store backend: file, mongo, none")
	f.StringVar(&cfg.Store.MongoURI, "mongo-uri", cfg.Store.MongoURI, "MongoDB URI for the mongo store")
	f.BoolVar(&cfg.Output.DOT, "dot", cfg.Output.DOT, "add the adjacency DOT graph to every run")
	f.BoolVar(&cfg.Output.SVG, "svg", cfg.Output.SVG, "add the adjacency SVG to every run")

	return cmd
}

// runServe wires the cache, store and metrics into the API and serves until
// ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, cfg.Cache, false)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer runner.Close()

	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewPrometheus(reg)
	observability.SetPipelineHooks(observability.TeePipeline(metrics, observability.NewLogHooks(logger)))
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	srv := api.New(runner, st, api.Options{
		Defaults:        cfg.Options(),
		Concurrency:     cfg.Server.Concurrency,
		CORSOrigins:     cfg.Server.CORSOrigins,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		DOT:             cfg.Output.DOT,
		SVG:             cfg.Output.SVG,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Metrics:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:          logger,
	})

	printInfo("graphmap %s", buildinfo.Short())
	printKeyValue("Listening", "http://"+displayAddr(cfg.Server.Addr))
	printKeyValue("Cache", cfg.Cache.Backend)
	printKeyValue("Store", cfg.Store.Backend)
	return srv.Run(ctx, cfg.Server.Addr)
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
