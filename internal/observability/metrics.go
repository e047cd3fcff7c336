package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application.
// Each Collector owns its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	CollectionsCreated prometheus.Counter
	CollectionsDeleted *prometheus.CounterVec
	ContentDeleted     prometheus.Counter
	BlobDeleteFailures prometheus.Counter

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// NewCollector creates a metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		CollectionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_created_total",
			Help:      "Total number of collections created",
		}),
		CollectionsDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collections_deleted_total",
				Help:      "Total number of collections removed, by delete mode",
			},
			[]string{"mode"},
		),
		ContentDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_deleted_total",
			Help:      "Total number of content items removed",
		}),
		BlobDeleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_delete_failures_total",
			Help:      "Best-effort file deletions that failed",
		}),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.CollectionsCreated,
		c.CollectionsDeleted,
		c.ContentDeleted,
		c.BlobDeleteFailures,
		c.CacheHits,
		c.CacheMisses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry exposes the underlying registry (tests gather from it)
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) CacheHit(cache string)  { c.CacheHits.WithLabelValues(cache).Inc() }
func (c *Collector) CacheMiss(cache string) { c.CacheMisses.WithLabelValues(cache).Inc() }

func (c *Collector) CollectionCreated() { c.CollectionsCreated.Inc() }

func (c *Collector) CollectionsRemoved(mode string, n int64) {
	c.CollectionsDeleted.WithLabelValues(mode).Add(float64(n))
}

func (c *Collector) ContentRemoved(n int64) { c.ContentDeleted.Add(float64(n)) }

func (c *Collector) BlobDeleteFailed() { c.BlobDeleteFailures.Inc() }
