package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzumoe/crawlplan-backend/internal/metrics"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.IncCheck("crawl")
	m.IncCheck("crawl")
	m.IncCheck("up_to_date")
	m.IncSession("completed")
	m.PagesCrawled.Inc()
	m.SessionProgress.Set(50)

	assert.InDelta(t, 2, testutil.ToFloat64(m.ChecksTotal.WithLabelValues("crawl")), 0.0001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ChecksTotal.WithLabelValues("up_to_date")), 0.0001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SessionsTotal.WithLabelValues("completed")), 0.0001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PagesCrawled), 0.0001)
	assert.InDelta(t, 50, testutil.ToFloat64(m.SessionProgress), 0.0001)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.IncCheck("crawl")
		m.IncSession("failed")
	})
}
