package config

import "runtime"

const (
	defaultConfigPath           = "~/.config/topicsweep/config.toml"
	defaultDataDir              = "~/.local/share/topicsweep/data"
	defaultModelDir             = "~/.local/share/topicsweep/models"
	defaultLogDir               = "~/.local/share/topicsweep/logs"
	defaultIndexPath            = "~/.local/share/topicsweep/index.db"
	defaultIterations           = 50
	defaultTransformationPasses = 25
	defaultParallelTrials       = 1
	defaultSliceWeight          = 0.8
	defaultCoherenceMetric      = "c_v"
	defaultCoherenceTopN        = 10
	defaultCoherenceWindow      = 110
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30

	// EnvDataDir and EnvModelDir name the environment variables consulted when
	// the corresponding path is not set in the config file.
	EnvDataDir  = "DATA_DIR"
	EnvModelDir = "MODEL_DIR"
)

// Default returns a Config populated with repository defaults. DataDir and
// ModelDir stay empty so normalize can fall back to the environment.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			IndexPath: defaultIndexPath,
		},
		Training: Training{
			Workers:              runtime.NumCPU(),
			Iterations:           defaultIterations,
			TransformationPasses: defaultTransformationPasses,
			ParallelTrials:       defaultParallelTrials,
			StopWords:            true,
			SliceWeight:          defaultSliceWeight,
		},
		Coherence: Coherence{
			Metric:     defaultCoherenceMetric,
			TopN:       defaultCoherenceTopN,
			WindowSize: defaultCoherenceWindow,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RunLogs:       true,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
