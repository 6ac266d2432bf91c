// Package metrics defines the Prometheus collectors a sweep updates and
// writes them to a node_exporter textfile when the run finishes.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Trial outcome label values.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Metrics holds the collectors of one sweep process. Each instance owns its
// registry so tests and repeated runs never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	TrialsTotal     *prometheus.CounterVec
	TrialDuration   *prometheus.HistogramVec
	SlicesScored    *prometheus.CounterVec
	RecordsWritten  *prometheus.CounterVec
	TopicCoherence  *prometheus.GaugeVec
	TopicStdev      *prometheus.GaugeVec
	SweepDuration   *prometheus.GaugeVec
	LastSuccessTime *prometheus.GaugeVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TrialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topicsweep_trials_total",
				Help: "Training trials by experiment and outcome.",
			},
			[]string{"experiment", "outcome"},
		),
		TrialDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "topicsweep_trial_duration_seconds",
				Help:    "Wall time of one train-and-score trial.",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
			},
			[]string{"experiment"},
		),
		SlicesScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topicsweep_slices_scored_total",
				Help: "Time slices scored for sequential models, by outcome.",
			},
			[]string{"experiment", "outcome"},
		),
		RecordsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topicsweep_records_written_total",
				Help: "Per-topic-count records persisted.",
			},
			[]string{"experiment"},
		),
		TopicCoherence: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "topicsweep_avg_coherence",
				Help: "Mean coherence of the latest record per topic count.",
			},
			[]string{"experiment", "topics"},
		),
		TopicStdev: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "topicsweep_coherence_stdev",
				Help: "Population standard deviation of coherence per topic count.",
			},
			[]string{"experiment", "topics"},
		),
		SweepDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "topicsweep_sweep_duration_seconds",
				Help: "Wall time of the latest sweep.",
			},
			[]string{"experiment"},
		),
		LastSuccessTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "topicsweep_last_success_timestamp_seconds",
				Help: "Unix time of the latest sweep that finished without error.",
			},
			[]string{"experiment"},
		),
	}
	m.registry.MustRegister(
		m.TrialsTotal,
		m.TrialDuration,
		m.SlicesScored,
		m.RecordsWritten,
		m.TopicCoherence,
		m.TopicStdev,
		m.SweepDuration,
		m.LastSuccessTime,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveTrial counts one trial and records its duration.
func (m *Metrics) ObserveTrial(experiment string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSucceeded
	if err != nil {
		outcome = OutcomeFailed
	}
	m.TrialsTotal.WithLabelValues(experiment, outcome).Inc()
	m.TrialDuration.WithLabelValues(experiment).Observe(elapsed.Seconds())
}

// ObserveSlice counts one scored or dropped time slice.
func (m *Metrics) ObserveSlice(experiment string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSucceeded
	if err != nil {
		outcome = OutcomeFailed
	}
	m.SlicesScored.WithLabelValues(experiment, outcome).Inc()
}

// ObserveRecord publishes the aggregate of a written record.
func (m *Metrics) ObserveRecord(experiment string, topics int, avg, stdev float64) {
	if m == nil {
		return
	}
	k := strconv.Itoa(topics)
	m.RecordsWritten.WithLabelValues(experiment).Inc()
	m.TopicCoherence.WithLabelValues(experiment, k).Set(avg)
	m.TopicStdev.WithLabelValues(experiment, k).Set(stdev)
}

// ObserveSweep records the sweep wall time and, on success, its finish time.
func (m *Metrics) ObserveSweep(experiment string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.SweepDuration.WithLabelValues(experiment).Set(elapsed.Seconds())
	if err == nil {
		m.LastSuccessTime.WithLabelValues(experiment).SetToCurrentTime()
	}
}

// WriteTextfile writes the registry in the text exposition format. An empty
// path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
