package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("inventory:low_stock_check").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("inventory:low_stock_check").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("inventory:low_stock_check", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("inventory:low_stock_check", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("inventory:low_stock_check")))
}

func TestCountersIgnoreNonPositive(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.AddLowStockAlerts(0)
	m.AddLowStockAlerts(3)
	m.AddPurgedKeys(-1)
	m.AddPurgedKeys(7)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.lowStock))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.purged))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.AddLowStockAlerts(2)
	m.AddPurgedKeys(2)
	assert.NoError(t, m.Track("x").End(nil))
}
