// Package metrics defines the Prometheus collectors for the helpdesk and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	DocumentsIngested prometheus.Counter
	DocumentsSkipped  *prometheus.CounterVec
	ChunksIngested    prometheus.Counter
	IngestRunDuration prometheus.Histogram

	QueriesTotal    *prometheus.CounterVec
	SearchLatency   *prometheus.HistogramVec
	EmbeddingLatency prometheus.Histogram

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		DocumentsIngested: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "documents_ingested_total",
				Help: "Total documents ingested into the vector index.",
			},
		),
		DocumentsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_skipped_total",
				Help: "Total documents skipped during ingestion by reason (already_ingested, no_text).",
			},
			[]string{"reason"},
		),
		ChunksIngested: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chunks_ingested_total",
				Help: "Total chunks written to the vector index.",
			},
		),
		IngestRunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_run_duration_seconds",
				Help:    "Duration of full ingestion runs in seconds.",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_queries_total",
				Help: "Total RAG queries by outcome (answered, no_context, degraded, error).",
			},
			[]string{"outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Vector search latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"cache_status"},
		),
		EmbeddingLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "embedding_latency_seconds",
				Help:    "Embedding provider call latency in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "answer_cache_hits_total",
				Help: "Total answer cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "answer_cache_misses_total",
				Help: "Total answer cache misses.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.DocumentsIngested,
		m.DocumentsSkipped,
		m.ChunksIngested,
		m.IngestRunDuration,
		m.QueriesTotal,
		m.SearchLatency,
		m.EmbeddingLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
