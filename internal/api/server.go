// Package api serves the render pipeline over HTTP.
//
// Routes:
//
//	POST /render                   render a graph, store the run, return its map
//	GET  /runs                     list stored runs, newest first
//	GET  /runs/{id}                one run with its map
//	GET  /runs/{id}/{artifact...}  one artifact file of a run
//	GET  /healthz                  liveness
//	GET  /metrics                  Prometheus metrics
//
// Renders are CPU bound and run one at a time by default; Options.Concurrency
// raises the limit.
package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/graphmap/pkg/graph"
	"github.com/matzehuels/graphmap/pkg/pipeline"
	"github.com/matzehuels/graphmap/pkg/store"
)

// Defaults for [Options].
const (
	DefaultConcurrency     = 1
	DefaultMaxBodyBytes    = 64 << 20
	DefaultShutdownTimeout = 10 * time.Second
	DefaultListLimit       = 50
)

// Options configures a [Server].
type Options struct {
	// Defaults are the render options requests start from.
	Defaults pipeline.Options
	// Concurrency bounds the number of renders in flight.
	Concurrency int64
	// CORSOrigins lists the allowed origins. Empty allows none.
	CORSOrigins  []string
	MaxBodyBytes int64
	// DOT and SVG add the adjacency graph to every run's artifacts.
	DOT, SVG        bool
	ShutdownTimeout time.Duration
	// Metrics serves /metrics. Nil uses the default Prometheus registry.
	Metrics http.Handler
	Logger  *log.Logger
}

// executor is the part of [pipeline.Runner] the server calls.
type executor interface {
	Execute(ctx context.Context, g graph.Graph, opts pipeline.Options) (*pipeline.Result, error)
}

// Server is the HTTP front end of a [pipeline.Runner] and a [store.Store].
type Server struct {
	runner executor
	store  store.Store
	sem    *semaphore.Weighted
	opts   Options
	logger *log.Logger
}

// New creates a server. The runner and store stay owned by the caller.
func New(runner *pipeline.Runner, st store.Store, opts Options) *Server {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{
		runner: runner,
		store:  st,
		sem:    semaphore.NewWeighted(opts.Concurrency),
		opts:   opts,
		logger: logger,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	r.Post("/render", s.render)
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.listRuns)
		r.Get("/{id}", s.getRun)
		r.Get("/{id}/*", s.getArtifact)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
