// Package metrics exposes Prometheus collectors for the HTTP, RPC and grab board paths.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bordertrade"

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	RPCRequests       *prometheus.CounterVec
	AllocationPreview *prometheus.CounterVec
	GrabClaims        *prometheus.CounterVec
	GrabBoardsOpen    prometheus.Gauge
	UsageResets       prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "REST requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "REST request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs by procedure and result code.",
		}, []string{"procedure", "code"}),
		AllocationPreview: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_previews_total",
			Help:      "Allocation previews by mode and whether the result covered the order.",
		}, []string{"mode", "valid"}),
		GrabClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grab_claims_total",
			Help:      "Grab board claims by outcome.",
		}, []string{"outcome"}),
		GrabBoardsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "grab_boards_open",
			Help:      "Grab boards that still have unclaimed slots.",
		}),
		UsageResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monthly_usage_resets_total",
			Help:      "Completed monthly usage resets.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.RPCRequests,
		m.AllocationPreview,
		m.GrabClaims,
		m.GrabBoardsOpen,
		m.UsageResets,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePreview counts one allocation preview.
func (m *Metrics) ObservePreview(mode string, valid bool) {
	if m == nil {
		return
	}
	v := "false"
	if valid {
		v = "true"
	}
	m.AllocationPreview.WithLabelValues(mode, v).Inc()
}

// ObserveClaim counts one grab claim outcome ("accepted", "full", "duplicate", ...).
func (m *Metrics) ObserveClaim(outcome string) {
	if m == nil {
		return
	}
	m.GrabClaims.WithLabelValues(outcome).Inc()
}

// SetOpenBoards records the current number of open grab boards.
func (m *Metrics) SetOpenBoards(n int) {
	if m == nil {
		return
	}
	m.GrabBoardsOpen.Set(float64(n))
}

// ObserveUsageReset counts one monthly usage reset.
func (m *Metrics) ObserveUsageReset() {
	if m == nil {
		return
	}
	m.UsageResets.Inc()
}
