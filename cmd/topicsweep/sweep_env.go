package main

import (
	"log/slog"

	"github.com/google/uuid"

	"topicsweep/internal/coherence"
	"topicsweep/internal/config"
	"topicsweep/internal/experiment"
	"topicsweep/internal/index"
	"topicsweep/internal/logging"
	"topicsweep/internal/metrics"
	"topicsweep/internal/sweep"
	"topicsweep/internal/topicmodel/lda"
	"topicsweep/internal/trial"
)

// sweepEnv wires the collaborators of one sweep run.
type sweepEnv struct {
	cfg     *config.Config
	runID   string
	logger  *slog.Logger
	runLog  *logging.RunLog
	index   *index.Index
	metrics *metrics.Metrics
	driver  *sweep.Driver
}

func (c *commandContext) newSweepEnv(exp *experiment.Config) (*sweepEnv, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	env := &sweepEnv{
		cfg:     cfg,
		runID:   uuid.NewString(),
		logger:  c.baseLogger(),
		metrics: metrics.New(),
	}

	if cfg.Logging.RunLogs {
		logging.CleanupOldLogs(env.logger, cfg.Paths.LogDir, logging.RunLogPattern, cfg.Logging.RetentionDays)
		runLog, err := logging.OpenRunLog(cfg.Paths.LogDir, exp.Name, env.runID, cfg.Logging.Level)
		if err != nil {
			logging.WarnWithContext(env.logger, "run log unavailable", "run_log_failed",
				logging.String(logging.FieldImpact, "sweep logs only go to stderr"),
				logging.Error(err),
			)
		} else {
			env.runLog = runLog
			env.logger = logging.TeeLogger(env.logger, runLog.Handler)
			env.logger.Info("run log opened",
				logging.String(logging.FieldEventType, "run_log_opened"),
				logging.String("path", runLog.Path),
			)
		}
	}

	idx, err := index.Open(cfg.Paths.IndexPath)
	if err != nil {
		logging.WarnWithContext(env.logger, "run index unavailable", "index_failed",
			logging.String(logging.FieldImpact, "run not recorded in index"),
			logging.Error(err),
		)
	} else {
		env.index = idx
	}

	scorer, err := coherence.New(cfg.Coherence.Metric, cfg.Coherence.TopN, cfg.Coherence.WindowSize)
	if err != nil {
		env.Close()
		return nil, err
	}
	st, err := c.store()
	if err != nil {
		env.Close()
		return nil, err
	}
	trainer := lda.NewTrainer(env.logger, nil)
	runner, err := trial.NewRunner(trial.Deps{
		Trainer:    trainer,
		Sequential: trainer,
		Scorer:     scorer,
		Store:      st,
		Metrics:    env.metrics,
		Logger:     env.logger,
	}, trial.Options{
		Experiment:           exp.Name,
		Workers:              cfg.Training.Workers,
		Iterations:           cfg.Training.Iterations,
		TransformationPasses: cfg.Training.TransformationPasses,
		Parallel:             cfg.Training.ParallelTrials,
		SliceWeight:          cfg.Training.SliceWeight,
		SkipModelSave:        exp.LDANoSave,
		SkipCoherenceSave:    exp.CoherenceNoSave,
	})
	if err != nil {
		env.Close()
		return nil, err
	}
	driver, err := sweep.NewDriver(exp, sweep.Deps{
		Runner:  runner,
		Store:   st,
		Index:   env.index,
		Metrics: env.metrics,
		Logger:  env.logger,
		RunID:   env.runID,
	})
	if err != nil {
		env.Close()
		return nil, err
	}
	env.driver = driver
	return env, nil
}

// exportMetrics writes the Prometheus textfile when one is configured.
func (e *sweepEnv) exportMetrics() {
	if err := e.metrics.WriteTextfile(e.cfg.Metrics.TextfilePath); err != nil {
		logging.WarnWithContext(e.logger, "metrics export failed", "metrics_failed",
			logging.String(logging.FieldImpact, "textfile collector shows stale values"),
			logging.Error(err),
		)
	}
}

func (e *sweepEnv) Close() {
	if e.index != nil {
		_ = e.index.Close()
	}
	if e.runLog != nil {
		_ = e.runLog.Close()
	}
}
