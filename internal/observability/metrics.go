// Package observability holds the Prometheus metrics collector.
package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the service.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Pipeline metrics
	SubmissionsIngested prometheus.Counter
	IdempotentHits      prometheus.Counter
	StorageConflicts    prometheus.Counter
	BroadcastFailures   prometheus.Counter
}

// NewCollector creates the metrics collector with the given namespace.
// A process-wide singleton avoids duplicate registration in tests.
func NewCollector(namespace string) *Collector {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	submissionsIngested := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_ingested_total",
			Help:      "Total number of handwriting submissions stored",
		},
	)

	idempotentHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_hits_total",
			Help:      "Total number of submissions answered from an existing object",
		},
	)

	storageConflicts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_conflicts_total",
			Help:      "Total number of write races resolved as idempotent hits",
		},
	)

	broadcastFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_failures_total",
			Help:      "Total number of failed realtime broadcasts",
		},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		submissionsIngested,
		idempotentHits,
		storageConflicts,
		broadcastFailures,
	)

	globalCollector = &Collector{
		registry:            registry,
		HTTPRequests:        httpRequests,
		HTTPDuration:        httpDuration,
		SubmissionsIngested: submissionsIngested,
		IdempotentHits:      idempotentHits,
		StorageConflicts:    storageConflicts,
		BroadcastFailures:   broadcastFailures,
	}
	return globalCollector
}

// Handler exposes the collector's registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
