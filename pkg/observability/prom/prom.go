// Package prom exports observability hooks as Prometheus metrics.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeLabel = "outcome"
	Succeeded    = "succeeded"
	Failed       = "failed"
	KeyLabel     = "key_type"
	MethodLabel  = "method"
	RouteLabel   = "route"
	CodeLabel    = "code"
)

// Hooks implements every observability hook interface on one set of
// collectors.
type Hooks struct {
	searches    *prometheus.CounterVec
	attempts    *prometheus.CounterVec
	attemptTime prometheus.Histogram
	searchTime  prometheus.Histogram
	bestCost    prometheus.Gauge
	parses      *prometheus.CounterVec
	renders     *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec
	requests    *prometheus.CounterVec
	requestTime *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Hooks, error) {
	h := &Hooks{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_searches_total",
			Help: "Ordering searches finished, by whether every net was routed",
		}, []string{OutcomeLabel}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_attempts_total",
			Help: "Net orderings tried",
		}, []string{OutcomeLabel}),
		attemptTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "router_attempt_duration_seconds",
			Help:    "Time spent routing one net ordering",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		searchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "router_search_duration_seconds",
			Help:    "Wall-clock time of an ordering search",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		bestCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "router_last_cost",
			Help: "Grid usage of the most recent search result",
		}),
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_parses_total",
			Help: "Input files parsed",
		}, []string{OutcomeLabel}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_renders_total",
			Help: "Rendered outputs",
		}, []string{"format", OutcomeLabel}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_cache_hits_total",
			Help: "Cache lookups that found an entry",
		}, []string{KeyLabel}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_cache_misses_total",
			Help: "Cache lookups that found nothing",
		}, []string{KeyLabel}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}, []string{KeyLabel}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_http_requests_total",
			Help: "HTTP responses sent",
		}, []string{MethodLabel, RouteLabel, CodeLabel}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "router_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{MethodLabel, RouteLabel}),
	}

	for _, c := range []prometheus.Collector{
		h.searches, h.attempts, h.attemptTime, h.searchTime, h.bestCost,
		h.parses, h.renders, h.cacheHits, h.cacheMisses, h.cacheBytes,
		h.requests, h.requestTime,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func outcome(ok bool) string {
	if ok {
		return Succeeded
	}
	return Failed
}

func (h *Hooks) OnSearchStart(context.Context, int) {}

func (h *Hooks) OnAttempt(_ context.Context, err error, _ int, d time.Duration) {
	h.attempts.WithLabelValues(outcome(err == nil)).Inc()
	h.attemptTime.Observe(d.Seconds())
}

func (h *Hooks) OnSearchComplete(_ context.Context, _ int, cost int, complete, _ bool, d time.Duration) {
	h.searches.WithLabelValues(outcome(complete)).Inc()
	h.searchTime.Observe(d.Seconds())
	h.bestCost.Set(float64(cost))
}

func (h *Hooks) OnParseStart(context.Context, string) {}

func (h *Hooks) OnParseComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	h.parses.WithLabelValues(outcome(err == nil)).Inc()
}

func (h *Hooks) OnRenderStart(context.Context, string) {}

func (h *Hooks) OnRenderComplete(_ context.Context, format string, _ time.Duration, err error) {
	h.renders.WithLabelValues(format, outcome(err == nil)).Inc()
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheHits.WithLabelValues(keyType).Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheMisses.WithLabelValues(keyType).Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *Hooks) OnRequest(context.Context, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.requestTime.WithLabelValues(method, route).Observe(d.Seconds())
}
