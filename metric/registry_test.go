package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistry(t *testing.T) {
	r := NewMetricsRegistry()

	require.NotNil(t, r.PrometheusRegistry())
	require.NotNil(t, r.CoreMetrics())

	// Core metrics are registered and gatherable
	families, err := r.PrometheusRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRecordConversion(t *testing.T) {
	r := NewMetricsRegistry()
	m := r.CoreMetrics()

	m.RecordConversion("md", "adf", "success", 25*time.Millisecond)
	m.RecordConversion("md", "adf", "success", 30*time.Millisecond)
	m.RecordConversion("md", "adf", "error", 5*time.Millisecond)

	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("md", "adf", "success")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("md", "adf", "error")))
}

func TestRecordConversionError(t *testing.T) {
	r := NewMetricsRegistry()
	m := r.CoreMetrics()

	m.RecordConversionError("parse-failure")
	m.RecordConversionError("parse-failure")
	m.RecordConversionError("unknown-format")

	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.ConversionErrors.WithLabelValues("parse-failure")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.ConversionErrors.WithLabelValues("unknown-format")))
}

func TestRecordBytes(t *testing.T) {
	r := NewMetricsRegistry()
	m := r.CoreMetrics()

	m.RecordBytes(100, 250)
	m.RecordBytes(50, 0)
	m.RecordBytes(-1, -1) // negative values are ignored

	assert.Equal(t, float64(150), testutil.ToFloat64(m.BytesReceived))
	assert.Equal(t, float64(250), testutil.ToFloat64(m.BytesSent))
}

func TestServerAddress(t *testing.T) {
	s := NewServer(0, "", NewMetricsRegistry())
	assert.Equal(t, "http://localhost:9090/metrics", s.Address())

	s = NewServer(9999, "/m", NewMetricsRegistry())
	assert.Equal(t, "http://localhost:9999/m", s.Address())
}
