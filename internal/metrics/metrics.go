// Package metrics exposes the Prometheus instrumentation for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service records into. All collectors
// register against a private registry so tests can build isolated
// instances.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	UploadsAccepted *prometheus.CounterVec
	RowsExtracted   *prometheus.CounterVec
	ExtractDuration *prometheus.HistogramVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	ReportsBuilt    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsdiary",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "opsdiary",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		UploadsAccepted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsdiary",
			Name:      "uploads_total",
			Help:      "Workbook uploads by dataset kind and outcome.",
		}, []string{"kind", "outcome"}),
		RowsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsdiary",
			Name:      "rows_extracted_total",
			Help:      "Canonical records produced per dataset kind.",
		}, []string{"kind"}),
		ExtractDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "opsdiary",
			Name:      "extract_duration_seconds",
			Help:      "Workbook extraction latency per dataset kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "opsdiary",
			Name:      "cache_hits_total",
			Help:      "Result cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "opsdiary",
			Name:      "cache_misses_total",
			Help:      "Result cache misses.",
		}),
		ReportsBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsdiary",
			Name:      "reports_built_total",
			Help:      "Diary reports rendered, by output format.",
		}, []string{"format"}),
	}
}

// Handler serves the /metrics scrape endpoint for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
