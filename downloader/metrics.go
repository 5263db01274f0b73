package downloader

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Payload outcomes recorded by IncPayload.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics bundles Prometheus collectors for a conversion run.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	BytesTotal      prometheus.Counter
	PayloadsTotal   *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wp2mdx_image_requests_total",
			Help: "Image download requests by phase.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wp2mdx_image_request_duration_seconds",
			Help:    "Latency of image download requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	bytesTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wp2mdx_image_bytes_total",
			Help: "Bytes of image data downloaded.",
		},
	)
	payloads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wp2mdx_payloads_total",
			Help: "Output payloads by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wp2mdx_errors_total",
			Help: "Payload failures by error type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, bytesTotal, payloads, errorsTotal)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		BytesTotal:      bytesTotal,
		PayloadsTotal:   payloads,
		ErrorsTotal:     errorsTotal,
	}
}

// IncRequest increments the requests counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records a request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// AddBytes adds n downloaded bytes.
func (m *Metrics) AddBytes(n int) {
	if m == nil {
		return
	}
	m.BytesTotal.Add(float64(n))
}

// IncPayload counts one payload of kind with outcome.
func (m *Metrics) IncPayload(kind, outcome string) {
	if m == nil {
		return
	}
	m.PayloadsTotal.WithLabelValues(kind, outcome).Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// WriteTextfile writes the current metric values in the text exposition
// format, for pickup by a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
