package observability

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes pipeline and cache events to a logger at debug level.
// Failed stages and runs are logged as warnings and errors.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to logger. A nil logger discards.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnStageStart(_ context.Context, stage string, size int) {
	h.logger.Debug("stage started", "stage", stage, "size", size)
}

func (h *LogHooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("stage failed", "stage", stage, "elapsed", d, "err", err)
		return
	}
	h.logger.Debug("stage done", "stage", stage, "elapsed", d)
}

func (h *LogHooks) OnRunComplete(_ context.Context, st RunStats, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("render failed", "nodes", st.Nodes, "elapsed", d, "err", err)
		return
	}
	h.logger.Info("rendered",
		"nodes", st.Nodes,
		"territories", st.Territories,
		"colors", st.Colors,
		"warnings", st.Warnings,
		"fallback", st.Fallback,
		"cache_hit", st.CacheHit,
		"elapsed", d,
	)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// TeePipeline returns hooks forwarding every event to each of hs in order.
func TeePipeline(hs ...PipelineHooks) PipelineHooks {
	return teePipeline(hs)
}

type teePipeline []PipelineHooks

func (t teePipeline) OnStageStart(ctx context.Context, stage string, size int) {
	for _, h := range t {
		h.OnStageStart(ctx, stage, size)
	}
}

func (t teePipeline) OnStageComplete(ctx context.Context, stage string, d time.Duration, err error) {
	for _, h := range t {
		h.OnStageComplete(ctx, stage, d, err)
	}
}

func (t teePipeline) OnRunComplete(ctx context.Context, st RunStats, d time.Duration, err error) {
	for _, h := range t {
		h.OnRunComplete(ctx, st, d, err)
	}
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ PipelineHooks = teePipeline(nil)
)
