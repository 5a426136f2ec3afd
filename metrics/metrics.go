// Package metrics holds the Prometheus collectors of the gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "eea_gateway"

type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestCount    *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge

	SubmissionCount    *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram

	EnclaveCallCount *prometheus.CounterVec
}

// New registers every collector on a fresh registry, so several instances
// can coexist in one process.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,

		HTTPRequestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "http_requests_in_flight",
				Help:      "HTTP requests being served",
			},
		),

		SubmissionCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "private_tx_submissions_total",
				Help:      "eea_sendRawTransaction calls by outcome",
			},
			[]string{"outcome"},
		),
		SubmissionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "private_tx_submission_duration_seconds",
				Help:      "eea_sendRawTransaction processing time in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		EnclaveCallCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "enclave_calls_total",
				Help:      "Enclave calls by operation and result",
			},
			[]string{"op", "result"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	m.HTTPRequestCount.WithLabelValues(method, path, http.StatusText(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordSubmission counts a finished submission; outcome is "success" or the
// fault kind.
func (m *Metrics) RecordSubmission(outcome string, d time.Duration) {
	m.SubmissionCount.WithLabelValues(outcome).Inc()
	m.SubmissionDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveEnclaveCall(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EnclaveCallCount.WithLabelValues(op, result).Inc()
}
