package testsupport

import (
	"path/filepath"
	"testing"

	"topicsweep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.ModelDir = filepath.Join(base, "models")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.IndexPath = filepath.Join(base, "index.db")
	cfgVal.Training.Workers = 1
	cfgVal.Logging.RunLogs = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithParallelTrials sets how many trials may train at once.
func WithParallelTrials(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Training.ParallelTrials = n
	}
}

// WithCoherenceMetric overrides the coherence metric.
func WithCoherenceMetric(metric string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Coherence.Metric = metric
	}
}

// WithRunLogs enables per-run log files under the config's log directory.
func WithRunLogs() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.RunLogs = true
	}
}

// WithMetricsTextfile enables the Prometheus textfile export.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.TextfilePath = filepath.Join(b.baseDir, "metrics", "topicsweep.prom")
	}
}
