package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerCountsOutcomes(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, m.Track("delivery:committed").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("delivery:committed").End(boom), boom)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("delivery:committed", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("delivery:committed", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("delivery:committed")))
}

func TestNilMetricsTrackerIsInert(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("x").End(boom), boom)
}
