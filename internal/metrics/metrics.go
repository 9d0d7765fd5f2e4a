// Package metrics exposes Prometheus collectors for the ledger service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector the service records to. Collectors are
// registered on their own registry so tests can build independent instances.
type Metrics struct {
	Registry *prometheus.Registry

	Computations    prometheus.Counter
	ComputeDuration prometheus.Histogram
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	Writes          *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Computations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "computations_total",
			Help:      "Number of ledger computations run.",
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "splitledger",
			Name:      "compute_duration_seconds",
			Help:      "Time spent loading a group snapshot and computing its balances.",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "balance_cache_hits_total",
			Help:      "Balance reports served from cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "balance_cache_misses_total",
			Help:      "Balance reports that had to be computed.",
		}),
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "ledger_writes_total",
			Help:      "Expenses and settlements written, by event type.",
		}, []string{"type"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "splitledger",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.Registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.Computations,
		m.ComputeDuration,
		m.CacheHits,
		m.CacheMisses,
		m.Writes,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
