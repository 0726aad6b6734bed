package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphmap/pkg/cache"
	"github.com/matzehuels/graphmap/pkg/enrich"
	"github.com/matzehuels/graphmap/pkg/graph"
	"github.com/matzehuels/graphmap/pkg/observability"
)

// cacheKind labels map entries in cache hooks.
const cacheKind = "map"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is the expiry of cached maps.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.DefaultTTL,
	}
}

// Execute renders g into a map, serving it from the cache when the same
// graph was rendered with the same options before.
func (r *Runner) Execute(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()

	hash, err := GraphHash(g, opts.Attributes)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.MapKey(hash, opts.MapKeyOpts())

	if !opts.Refresh {
		if res, ok := r.lookup(ctx, key); ok {
			res.GraphHash = hash
			res.Stats.TotalTime = time.Since(start)
			r.Logger.Info("map served from cache", "hash", hash[:12], "territories", len(res.Map.Territories))
			observability.Pipeline().OnRunComplete(ctx, runStats(res), res.Stats.TotalTime, nil)
			return res, nil
		}
	}

	res, err := Render(ctx, g, opts)
	if err != nil {
		observability.Pipeline().OnRunComplete(ctx, observability.RunStats{Nodes: len(g.Nodes)}, time.Since(start), err)
		return nil, err
	}
	res.GraphHash = hash
	observability.Pipeline().OnRunComplete(ctx, runStats(res), res.Stats.TotalTime, nil)

	if data, err := graph.MarshalMap(res.Map); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKind, len(data))
		}
	}
	return res, nil
}

// lookup returns the cached map under key. Unreadable entries count as misses.
func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKind)
		return nil, false
	}
	m, err := graph.UnmarshalMap(data)
	if err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "key", key, "error", err)
		observability.Cache().OnCacheMiss(ctx, cacheKind)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKind)
	return &Result{
		Map:      m,
		CacheHit: true,
		Warnings: warningsFromDoc(m.Warnings),
	}, true
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// GraphHash returns the content hash of g together with the attribute
// table that will be merged into it.
func GraphHash(g graph.Graph, table enrich.Table) (string, error) {
	return cache.HashJSON(struct {
		Graph      graph.Graph  `json:"graph"`
		Attributes enrich.Table `json:"attributes,omitempty"`
	}{g, table})
}

func runStats(res *Result) observability.RunStats {
	m := res.Map
	return observability.RunStats{
		Nodes:       len(m.Nodes),
		Clusters:    len(m.Territories),
		Territories: len(m.Territories),
		Colors:      m.Coloring.Colors,
		Warnings:    len(m.Warnings),
		Fallback:    m.Coloring.Fallback,
		CacheHit:    res.CacheHit,
	}
}
