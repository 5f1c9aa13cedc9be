// Package metrics holds the Prometheus collectors of a fetch run. Every method
// is safe on a nil *Metrics, which disables instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for the fetcher.
type Metrics struct {
	Registry         *prometheus.Registry
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ErrorsTotal      *prometheus.CounterVec
	RetriesTotal     prometheus.Counter
	CacheHitsTotal   prometheus.Counter
	NotFoundTotal    prometheus.Counter
	DetailsTotal     prometheus.Counter
	ArchiveNewTotal  prometheus.Counter
	ImagesSavedTotal prometheus.Counter
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xkcd_fetch_requests_total",
				Help: "Total HTTP requests issued, by resource kind.",
			},
			[]string{"kind"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xkcd_fetch_request_duration_seconds",
				Help:    "HTTP request latency, by resource kind.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xkcd_fetch_errors_total",
				Help: "Total failed requests by error type.",
			},
			[]string{"error_type"},
		),
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xkcd_fetch_retries_total",
			Help: "Total number of retry attempts scheduled.",
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xkcd_fetch_cache_hits_total",
			Help: "Comics served from the cache without network access.",
		}),
		NotFoundTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xkcd_fetch_not_found_total",
			Help: "Requested comics that could not be found.",
		}),
		DetailsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xkcd_fetch_details_fetched_total",
			Help: "Comic pages scraped into complete records.",
		}),
		ArchiveNewTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xkcd_fetch_archive_inserted_total",
			Help: "Placeholders inserted from the archive listing.",
		}),
		ImagesSavedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xkcd_fetch_images_saved_total",
			Help: "Images downloaded into the cache directory.",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ErrorsTotal,
		m.RetriesTotal,
		m.CacheHitsTotal,
		m.NotFoundTotal,
		m.DetailsTotal,
		m.ArchiveNewTotal,
		m.ImagesSavedTotal,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// IncRequest increments the requests counter.
func (m *Metrics) IncRequest(kind string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(kind).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncCacheHit counts a comic answered from the cache.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// IncNotFound counts a negative result.
func (m *Metrics) IncNotFound() {
	if m == nil {
		return
	}
	m.NotFoundTotal.Inc()
}

// IncDetail counts a completed comic page scrape.
func (m *Metrics) IncDetail() {
	if m == nil {
		return
	}
	m.DetailsTotal.Inc()
}

// AddArchiveInserted counts placeholders added by an archive merge.
func (m *Metrics) AddArchiveInserted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ArchiveNewTotal.Add(float64(n))
}

// IncImageSaved counts a downloaded image.
func (m *Metrics) IncImageSaved() {
	if m == nil {
		return
	}
	m.ImagesSavedTotal.Inc()
}
