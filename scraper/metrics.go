package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawler.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	ItemsTotal      prometheus.Counter
	DetailFailures  prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_requests_total",
			Help: "Total HTTP requests issued by the crawler.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_request_duration_seconds",
			Help:    "HTTP request latency for crawler requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	items := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_items_emitted_total",
			Help: "Total number of records emitted to the dataset writer.",
		},
	)
	detailFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_detail_failures_total",
			Help: "Total number of detail fetches degraded to null enrichment.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_errors_total",
			Help: "Total number of fetch errors by kind.",
		},
		[]string{"kind"},
	)

	registry.MustRegister(requests, requestDuration, items, detailFailures, errorsTotal)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		ItemsTotal:      items,
		DetailFailures:  detailFailures,
		ErrorsTotal:     errorsTotal,
	}
}

// IncRequest increments the requests total counter for a crawl phase.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncItems increments the emitted-records counter.
func (m *Metrics) IncItems() {
	if m == nil {
		return
	}
	m.ItemsTotal.Inc()
}

// IncDetailFailure increments the degraded-detail counter.
func (m *Metrics) IncDetailFailure() {
	if m == nil {
		return
	}
	m.DetailFailures.Inc()
}

// IncError increments the errors counter for a kind label.
func (m *Metrics) IncError(kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}
