// Package trial trains and scores the models of one topic count.
//
// Independent trials each get their own artifact directory and may run in
// parallel. A failed trial is logged and left out of the results; the other
// trials still run. Sequential mode trains once over the slice-ordered corpus
// and scores every time slice.
package trial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"topicsweep/internal/logging"
	"topicsweep/internal/metrics"
	"topicsweep/internal/services"
	"topicsweep/internal/store"
	"topicsweep/internal/topicmodel"
)

// Options configure training for every trial of a runner.
type Options struct {
	Experiment           string
	Workers              int
	Iterations           int
	TransformationPasses int
	// Parallel bounds how many independent trials train at once.
	Parallel    int
	SliceWeight float64
	// SkipModelSave and SkipCoherenceSave leave the corresponding artifact
	// off disk. The trial directory is still reported as the trial path.
	SkipModelSave     bool
	SkipCoherenceSave bool
}

// Runner executes trials for a single experiment.
type Runner struct {
	trainer    topicmodel.Trainer
	sequential topicmodel.SequentialTrainer
	scorer     topicmodel.Scorer
	store      *store.Store
	metrics    *metrics.Metrics
	logger     *slog.Logger
	opts       Options
}

// Deps are the collaborators of a Runner. Sequential may be nil when only
// independent trials are run.
type Deps struct {
	Trainer    topicmodel.Trainer
	Sequential topicmodel.SequentialTrainer
	Scorer     topicmodel.Scorer
	Store      *store.Store
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// NewRunner validates deps and returns a runner.
func NewRunner(deps Deps, opts Options) (*Runner, error) {
	if deps.Scorer == nil || deps.Store == nil {
		return nil, errors.New("trial runner requires a scorer and a store")
	}
	if deps.Trainer == nil && deps.Sequential == nil {
		return nil, errors.New("trial runner requires a trainer")
	}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	return &Runner{
		trainer:    deps.Trainer,
		sequential: deps.Sequential,
		scorer:     deps.Scorer,
		store:      deps.Store,
		metrics:    deps.Metrics,
		logger:     logging.NewComponentLogger(deps.Logger, "trial"),
		opts:       opts,
	}, nil
}

// Outcome collects the successful trials of one topic count, in index order,
// together with the failures of the others.
type Outcome struct {
	Results  []store.TrialResult
	Failures []error
}

// RunIndependent trains trials models with topics topics. The returned error
// is non-nil only when ctx is cancelled; trial failures are in Outcome.
func (r *Runner) RunIndependent(ctx context.Context, c topicmodel.Corpus, topics, trials int) (Outcome, error) {
	if r.trainer == nil {
		return Outcome{}, errors.New("trial runner has no independent trainer")
	}
	ctx = services.WithTopics(ctx, topics)

	results := make([]*store.TrialResult, trials)
	failures := make([]error, trials)
	var (
		mu   sync.Mutex
		done int
	)

	var g errgroup.Group
	g.SetLimit(r.opts.Parallel)
	for i := 0; i < trials; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.runTrial(services.WithTrial(ctx, i), c, topics, i)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failures[i] = err
			} else {
				results[i] = &res
			}
			mu.Lock()
			done++
			r.logger.Debug("trial progress",
				logging.Int(logging.FieldTopics, topics),
				logging.Int("completed", done),
				logging.Int("total", trials),
			)
			mu.Unlock()
			return nil
		})
	}
	waitErr := g.Wait()

	var out Outcome
	for i := range results {
		if results[i] != nil {
			out.Results = append(out.Results, *results[i])
		}
		if failures[i] != nil {
			out.Failures = append(out.Failures, failures[i])
		}
	}
	if waitErr != nil {
		return out, waitErr
	}
	return out, nil
}

func (r *Runner) runTrial(ctx context.Context, c topicmodel.Corpus, topics, index int) (store.TrialResult, error) {
	logger := logging.WithContext(ctx, r.logger)
	start := time.Now()
	dir := r.store.TrialDir(r.opts.Experiment, topics, index)

	result, err := r.trainAndScore(ctx, c, topics, dir)
	if ctx.Err() != nil {
		return store.TrialResult{}, ctx.Err()
	}
	r.metrics.ObserveTrial(r.opts.Experiment, time.Since(start), err)
	if err != nil {
		wrapped := services.Wrap(services.ErrTrialFailure, "trial", "run",
			fmt.Sprintf("topics=%d trial=%d", topics, index), err)
		logging.WarnWithContext(logger, "trial failed", "trial_failed",
			logging.String(logging.FieldImpact, "trial excluded from aggregate"),
			logging.Error(err),
		)
		return store.TrialResult{}, wrapped
	}
	result.Index = index
	logger.Info("trial completed",
		logging.String(logging.FieldEventType, "trial_complete"),
		logging.Float64("coherence", result.Coherence),
		logging.Duration("trial_duration", time.Since(start)),
	)
	return result, nil
}

func (r *Runner) trainAndScore(ctx context.Context, c topicmodel.Corpus, topics int, dir string) (store.TrialResult, error) {
	model, err := r.trainer.Train(ctx, c, r.trainOptions(topics, dir))
	if err != nil {
		return store.TrialResult{}, fmt.Errorf("train: %w", err)
	}
	if !r.opts.SkipModelSave {
		if err := model.Save(filepath.Join(dir, store.ModelFile)); err != nil {
			return store.TrialResult{}, err
		}
	}
	coherence, err := r.scorer.Score(ctx, model, c)
	if err != nil {
		return store.TrialResult{}, fmt.Errorf("score: %w", err)
	}
	if !r.opts.SkipCoherenceSave {
		if err := coherence.Save(filepath.Join(dir, store.CoherenceFile)); err != nil {
			return store.TrialResult{}, err
		}
	}
	return store.TrialResult{Path: dir, Coherence: coherence.Value}, nil
}

func (r *Runner) trainOptions(topics int, dir string) topicmodel.TrainOptions {
	return topicmodel.TrainOptions{
		Topics:               topics,
		Workers:              r.opts.Workers,
		Iterations:           r.opts.Iterations,
		TransformationPasses: r.opts.TransformationPasses,
		OutputPath:           dir,
	}
}
