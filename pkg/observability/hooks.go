// Package observability lets the pipeline, the caches and the HTTP server
// report what they do without depending on a metrics backend.
//
// Each event category is an interface with a no-op default. Programs
// register implementations once at startup; library code fetches the
// current implementation at the call site:
//
//	observability.Pipeline().OnStageStart(ctx, "pack", clusterCount)
//	// ... pack clusters ...
//	observability.Pipeline().OnStageComplete(ctx, "pack", elapsed, err)
//
// [Prometheus] implements every interface on client_golang collectors and
// [LogHooks] writes the same events to a charmbracelet logger. `graphmap
// serve` registers both, combined with [TeePipeline].
package observability

import (
	"context"
	"time"
)

// RunStats summarizes one completed render run.
type RunStats struct {
	Nodes       int
	Clusters    int
	Territories int
	Colors      int
	Warnings    int
	Fallback    bool
	CacheHit    bool
}

// PipelineHooks receives events from the render pipeline. size is the
// stage's input size, nodes or clusters depending on the stage.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage string, size int)
	OnStageComplete(ctx context.Context, stage string, duration time.Duration, err error)
	OnRunComplete(ctx context.Context, stats RunStats, duration time.Duration, err error)
}

// CacheHooks receives events from cache lookups and writes. keyType is the
// key prefix, e.g. "map".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP server. route is the matched
// route pattern, not the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string, int)                      {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnRunComplete(context.Context, RunStats, time.Duration, error)  {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
