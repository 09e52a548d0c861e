// Package metrics exposes Prometheus metrics for the HTTP API, the memo
// list and the backup worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Backup metrics
	BackupsWritten   prometheus.Counter
	BackupsUnchanged prometheus.Counter
	BackupsFailed    prometheus.Counter
}

// NewCollector creates a collector with its own registry.
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
		BackupsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_written_total",
			Help:      "Backups written to disk",
		}),
		BackupsUnchanged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_unchanged_total",
			Help:      "Backup runs skipped because the export had not changed",
		}),
		BackupsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_failed_total",
			Help:      "Backup runs that failed",
		}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.BackupsWritten,
		c.BackupsUnchanged,
		c.BackupsFailed,
		collectors.NewGoCollector(),
	)

	return c
}

// TrackMemoCount registers a gauge that reads the memo list size on scrape.
func (c *Collector) TrackMemoCount(namespace string, count func() int) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memos",
			Help:      "Memos currently held in the in-memory list",
		},
		func() float64 { return float64(count()) },
	))
}

// ObserveRequest records one finished HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// BackupWritten, BackupUnchanged and BackupFailed satisfy backup.Recorder.
func (c *Collector) BackupWritten()   { c.BackupsWritten.Inc() }
func (c *Collector) BackupUnchanged() { c.BackupsUnchanged.Inc() }
func (c *Collector) BackupFailed()    { c.BackupsFailed.Inc() }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
