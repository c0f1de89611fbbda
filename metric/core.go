package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all gateway-level metrics
type Metrics struct {
	ConversionsTotal   *prometheus.CounterVec
	ConversionDuration *prometheus.HistogramVec
	ConversionErrors   *prometheus.CounterVec
	RequestsInFlight   prometheus.Gauge
	BytesReceived      prometheus.Counter
	BytesSent          prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all gateway metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "convertd",
				Subsystem: "conversions",
				Name:      "total",
				Help:      "Total number of conversion requests",
			},
			[]string{"input", "output", "status"},
		),

		ConversionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "convertd",
				Subsystem: "conversions",
				Name:      "duration_seconds",
				Help:      "Conversion pipeline duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"input", "output"},
		),

		ConversionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "convertd",
				Subsystem: "conversions",
				Name:      "errors_total",
				Help:      "Total number of conversion failures by pipeline stage",
			},
			[]string{"stage"},
		),

		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "convertd",
				Subsystem: "gateway",
				Name:      "requests_in_flight",
				Help:      "Number of conversion requests currently being served",
			},
		),

		BytesReceived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "convertd",
				Subsystem: "gateway",
				Name:      "bytes_received_total",
				Help:      "Total bytes received in request bodies",
			},
		),

		BytesSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "convertd",
				Subsystem: "gateway",
				Name:      "bytes_sent_total",
				Help:      "Total bytes sent in response bodies",
			},
		),
	}
}

// RecordConversion increments the conversion counter and observes duration
func (m *Metrics) RecordConversion(input, output, status string, duration time.Duration) {
	m.ConversionsTotal.WithLabelValues(input, output, status).Inc()
	m.ConversionDuration.WithLabelValues(input, output).Observe(duration.Seconds())
}

// RecordConversionError increments the stage error counter
func (m *Metrics) RecordConversionError(stage string) {
	m.ConversionErrors.WithLabelValues(stage).Inc()
}

// RecordBytes tracks request and response body sizes
func (m *Metrics) RecordBytes(received, sent int) {
	if received > 0 {
		m.BytesReceived.Add(float64(received))
	}
	if sent > 0 {
		m.BytesSent.Add(float64(sent))
	}
}
