package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicsweep/internal/metrics"
)

func TestObserveTrialOutcomes(t *testing.T) {
	m := metrics.New()
	m.ObserveTrial("covid", time.Second, nil)
	m.ObserveTrial("covid", time.Second, nil)
	m.ObserveTrial("covid", time.Second, errors.New("boom"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.TrialsTotal.WithLabelValues("covid", metrics.OutcomeSucceeded)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TrialsTotal.WithLabelValues("covid", metrics.OutcomeFailed)), 0)
}

func TestObserveRecordSetsGauges(t *testing.T) {
	m := metrics.New()
	m.ObserveRecord("covid", 5, 0.42, 0.03)
	assert.InDelta(t, 0.42, testutil.ToFloat64(m.TopicCoherence.WithLabelValues("covid", "5")), 1e-12)
	assert.InDelta(t, 0.03, testutil.ToFloat64(m.TopicStdev.WithLabelValues("covid", "5")), 1e-12)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RecordsWritten.WithLabelValues("covid")), 0)
}

func TestWriteTextfile(t *testing.T) {
	m := metrics.New()
	m.ObserveSweep("covid", 3*time.Second, nil)
	path := filepath.Join(t.TempDir(), "textfile", "topicsweep.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "topicsweep_sweep_duration_seconds{experiment=\"covid\"} 3")
	assert.Contains(t, string(data), "topicsweep_last_success_timestamp_seconds")

	assert.NoError(t, m.WriteTextfile(""))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveTrial("x", time.Second, nil)
	m.ObserveRecord("x", 1, 0, 0)
	assert.NoError(t, m.WriteTextfile("anything"))
}
