package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "graphmap"

// Prometheus implements [PipelineHooks], [CacheHooks] and [HTTPHooks] with
// Prometheus collectors registered on the given registerer.
type Prometheus struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	territories   prometheus.Histogram
	warnings      prometheus.Counter
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	inFlight      prometheus.Gauge
	requests      *prometheus.CounterVec
	reqDuration   *prometheus.HistogramVec
}

// NewPrometheus creates and registers the collectors. It panics if a
// collector is already registered on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stages that returned an error.",
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed render runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of whole render runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		territories: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_territories",
			Help:      "Territories per successful run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_warnings_total",
			Help:      "Data-quality warnings recorded by runs.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes.",
		}, []string{"type", "op"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"type"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests.",
		}, []string{"method", "route", "code"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of served HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		p.stageDuration, p.stageErrors, p.runs, p.runDuration, p.territories, p.warnings,
		p.cacheOps, p.cacheBytes, p.inFlight, p.requests, p.reqDuration,
	)
	return p
}

func (p *Prometheus) OnStageStart(context.Context, string, int) {}

func (p *Prometheus) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		p.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (p *Prometheus) OnRunComplete(_ context.Context, st RunStats, d time.Duration, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case st.CacheHit:
		outcome = "cached"
	case st.Fallback:
		outcome = "fallback"
	}
	p.runs.WithLabelValues(outcome).Inc()
	if err != nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
	p.territories.Observe(float64(st.Territories))
	p.warnings.Add(float64(st.Warnings))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {
	p.inFlight.Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.inFlight.Dec()
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.reqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
