// Package metrics provides Prometheus metrics for httpfetch.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Default histogram buckets for request latency.
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds all Prometheus metric collectors.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	FetchDuration  *prometheus.HistogramVec
	FetchResponses *prometheus.CounterVec
	FetchFailures  *prometheus.CounterVec
}

// New creates a Metrics instance with a custom registry and all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "httpfetch_http_requests_total",
			Help: "Total inbound HTTP requests.",
		}, []string{"method", "status_code", "path_prefix"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "httpfetch_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency in seconds.",
			Buckets: defaultBuckets,
		}, []string{"method", "status_code", "path_prefix"}),

		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "httpfetch_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed.",
		}),

		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "httpfetch_fetch_duration_seconds",
			Help:    "Outbound fetch latency in seconds, including retries.",
			Buckets: defaultBuckets,
		}, []string{"method", "proxied"}),

		FetchResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "httpfetch_fetch_responses_total",
			Help: "Total outbound responses by method and status code.",
		}, []string{"method", "status_code"}),

		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "httpfetch_fetch_failures_total",
			Help: "Total outbound fetches that produced no usable response.",
		}, []string{"method"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.FetchDuration,
		m.FetchResponses,
		m.FetchFailures,
	)

	return m
}

// knownMethods lists the allowed HTTP method label values (bounded cardinality).
var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// NormalizeMethod returns a bounded HTTP method label for Prometheus metrics.
// Non-standard methods are mapped to "other" to prevent cardinality explosion.
func NormalizeMethod(method string) string {
	if knownMethods[method] {
		return method
	}
	return "other"
}

// fixedRoutes are matched exactly and label as themselves.
var fixedRoutes = map[string]bool{"/healthz": true, "/proxy/status": true, "/metrics": true}

// NormalizePath maps an inbound request path to a route label.
//
// /fetch is the only route that absorbs suffixes: anything below it labels as
// "/fetch", so a caller appending segments cannot grow the label set. The
// fixed routes match exactly and everything else is "other".
func NormalizePath(path string) string {
	if fixedRoutes[path] {
		return path
	}
	if path == "/fetch" || strings.HasPrefix(path, "/fetch/") {
		return "/fetch"
	}
	return "other"
}
