// Package sweep drives a topic-count sweep for one experiment: bucket the
// corpus when the model is sequential, run the trials of every topic count,
// aggregate their coherence, and persist one record per topic count.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"topicsweep/internal/experiment"
	"topicsweep/internal/index"
	"topicsweep/internal/logging"
	"topicsweep/internal/metrics"
	"topicsweep/internal/services"
	"topicsweep/internal/store"
	"topicsweep/internal/timebucket"
	"topicsweep/internal/topicmodel"
	"topicsweep/internal/trial"
)

// TopicResult is the outcome of one topic count.
type TopicResult struct {
	Topics   int
	Record   store.Record
	Failures []error
	// Skipped is set when no trial or slice succeeded and nothing was written.
	Skipped bool
}

// Summary describes a finished or interrupted sweep.
type Summary struct {
	RunID      string
	Experiment string
	Mode       string
	Documents  int
	Buckets    *timebucket.Buckets
	Topics     []TopicResult
	Duration   time.Duration
}

// Written returns the topic counts that produced a record.
func (s Summary) Written() []int {
	var out []int
	for _, t := range s.Topics {
		if !t.Skipped {
			out = append(out, t.Topics)
		}
	}
	return out
}

// Deps are the collaborators of a Driver. Index and Metrics are optional.
type Deps struct {
	Runner  *trial.Runner
	Store   *store.Store
	Index   *index.Index
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	// RunID identifies the sweep; a random one is generated when empty.
	RunID string
}

// Driver runs the sweep of one experiment.
type Driver struct {
	exp      *experiment.Config
	runner   *trial.Runner
	store    *store.Store
	index    *index.Index
	metrics  *metrics.Metrics
	logger   *slog.Logger
	progress *logging.ProgressSampler
	runID    string
}

// NewDriver validates the experiment and returns a driver.
func NewDriver(exp *experiment.Config, deps Deps) (*Driver, error) {
	if exp == nil {
		return nil, errors.New("sweep driver requires an experiment")
	}
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	if deps.Runner == nil || deps.Store == nil {
		return nil, errors.New("sweep driver requires a trial runner and a store")
	}
	runID := deps.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Driver{
		exp:      exp,
		runner:   deps.Runner,
		store:    deps.Store,
		index:    deps.Index,
		metrics:  deps.Metrics,
		logger:   logging.NewComponentLogger(deps.Logger, "sweep"),
		progress: logging.NewProgressSampler(10),
		runID:    runID,
	}, nil
}

// RunID identifies this sweep in logs and in the run index.
func (d *Driver) RunID() string { return d.runID }

// Run sweeps every topic count of the experiment over the dataset.
// Sequential experiments are bucketed and checked before any training, so an
// invariant violation writes nothing. Cancellation between topic counts keeps
// the records already written and returns ctx.Err().
func (d *Driver) Run(ctx context.Context, ds *experiment.Dataset) (Summary, error) {
	start := time.Now()
	ctx = services.WithRunID(ctx, d.runID)
	ctx = services.WithExperiment(ctx, d.exp.Name)
	logger := logging.WithContext(ctx, d.logger)

	summary := Summary{
		RunID:      d.runID,
		Experiment: d.exp.Name,
		Mode:       d.exp.Model,
		Documents:  len(ds.Documents),
	}
	c := topicmodel.NewCorpus(ds.Documents)

	var buckets timebucket.Buckets
	if d.exp.Sequential() {
		var err error
		buckets, err = timebucket.PartitionDocuments(ds.Documents, d.exp.BucketSpec(ds.Range, 0))
		if err != nil {
			return summary, err
		}
		if err := buckets.Verify(len(ds.Documents)); err != nil {
			logging.ErrorWithContext(logger, "time windows do not cover the corpus", "bucket_invariant",
				logging.Error(err),
			)
			return summary, err
		}
		summary.Buckets = &buckets
		c = c.Reorder(buckets.Order())
		logger.Info("corpus bucketed",
			logging.String(logging.FieldEventType, "buckets_ready"),
			logging.Int("windows", len(buckets.Windows)),
			logging.Any("counts", buckets.Counts()),
		)
	}

	d.beginRun(ctx, logger)
	logger.Info("sweep started",
		logging.String(logging.FieldEventType, "sweep_start"),
		logging.String("mode", d.exp.Model),
		logging.Int("documents", c.Len()),
		logging.Int("min_topics", d.exp.MinTopics),
		logging.Int("max_topics", d.exp.MaxTopics),
		logging.Int("trials", d.exp.Trials),
	)

	total := d.exp.MaxTopics - d.exp.MinTopics + 1
	for k := d.exp.MinTopics; k <= d.exp.MaxTopics; k++ {
		if err := ctx.Err(); err != nil {
			return d.finish(ctx, logger, summary, start, err)
		}
		result, err := d.runTopics(ctx, c, k, buckets)
		if err != nil {
			return d.finish(ctx, logger, summary, start, err)
		}
		summary.Topics = append(summary.Topics, result)

		done := k - d.exp.MinTopics + 1
		if d.progress.Observe("topics", done, total) {
			logger.Info("sweep progress",
				logging.String(logging.FieldEventType, "sweep_progress"),
				logging.Int("completed_topic_counts", done),
				logging.Int("total_topic_counts", total),
				logging.Float64("percent", logging.Percent(done, total)),
			)
		}
	}
	return d.finish(ctx, logger, summary, start, nil)
}

// runTopics trains, aggregates, and persists one topic count. Only
// cancellation, data invariant violations, and store failures are returned
// as errors; training failures are recorded in the result.
func (d *Driver) runTopics(ctx context.Context, c topicmodel.Corpus, k int, buckets timebucket.Buckets) (TopicResult, error) {
	ctx = services.WithTopics(ctx, k)
	logger := logging.WithContext(ctx, d.logger)
	result := TopicResult{Topics: k}

	var rec store.Record
	if d.exp.Sequential() {
		out, err := d.runner.RunSequential(ctx, c, k, buckets)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrTrialFailure):
			result.Failures = append(result.Failures, err)
		default:
			return result, err
		}
		result.Failures = append(result.Failures, out.Failures...)
		rec.Slices = out.Slices
	} else {
		out, err := d.runner.RunIndependent(ctx, c, k, d.exp.Trials)
		if err != nil {
			return result, err
		}
		result.Failures = out.Failures
		rec.Trials = out.Results
	}

	values := rec.Coherences()
	if len(values) == 0 {
		result.Skipped = true
		logging.WarnWithContext(logger, "no successful trials for topic count", "topics_skipped",
			logging.Int("failures", len(result.Failures)),
			logging.String(logging.FieldImpact, "no record written for this topic count"),
		)
		return result, nil
	}
	rec.Aggregated = Aggregate(values, k)

	if err := d.store.Put(ctx, d.exp.Name, k, rec); err != nil {
		return result, fmt.Errorf("persist record for %d topics: %w", k, err)
	}
	result.Record = rec
	d.metrics.ObserveRecord(d.exp.Name, k, rec.Aggregated.AvgCoherence, rec.Aggregated.CoherenceStdev)
	d.indexRecord(ctx, logger, k, rec, len(values))

	logger.Info("topic count complete",
		logging.String(logging.FieldEventType, "topics_complete"),
		logging.Float64("avg_coherence", rec.Aggregated.AvgCoherence),
		logging.Float64("coherence_stdev", rec.Aggregated.CoherenceStdev),
		logging.Int("points", len(values)),
		logging.Int("failures", len(result.Failures)),
	)
	return result, nil
}

func (d *Driver) finish(ctx context.Context, logger *slog.Logger, summary Summary, start time.Time, err error) (Summary, error) {
	summary.Duration = time.Since(start)
	d.metrics.ObserveSweep(d.exp.Name, summary.Duration, err)

	status := index.StatusCompleted
	switch {
	case err == nil:
		logger.Info("sweep completed",
			logging.String(logging.FieldEventType, "sweep_complete"),
			logging.Any("written_topics", summary.Written()),
			logging.Duration("sweep_duration", summary.Duration),
		)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		status = index.StatusCancelled
		logger.Warn("sweep interrupted",
			logging.String(logging.FieldEventType, "sweep_cancelled"),
			logging.Any("written_topics", summary.Written()),
		)
	default:
		status = index.StatusFailed
		logging.ErrorWithContext(logger, "sweep failed", "sweep_failed", logging.Error(err))
	}
	if d.index != nil {
		// The caller's context may already be cancelled; the final status
		// must still be recorded.
		if ierr := d.index.FinishRun(context.WithoutCancel(ctx), d.runID, status, err); ierr != nil {
			logging.WarnWithContext(logger, "run index update failed", "index_failed",
				logging.String(logging.FieldImpact, "run status missing from index"),
				logging.Error(ierr),
			)
		}
	}
	return summary, err
}

func (d *Driver) beginRun(ctx context.Context, logger *slog.Logger) {
	if d.index == nil {
		return
	}
	err := d.index.BeginRun(ctx, index.Run{
		ID:         d.runID,
		Experiment: d.exp.Name,
		Mode:       d.exp.Model,
		MinTopics:  d.exp.MinTopics,
		MaxTopics:  d.exp.MaxTopics,
		Trials:     d.exp.Trials,
	})
	if err != nil {
		logging.WarnWithContext(logger, "run index registration failed", "index_failed",
			logging.String(logging.FieldImpact, "run missing from index"),
			logging.Error(err),
		)
	}
}

func (d *Driver) indexRecord(ctx context.Context, logger *slog.Logger, k int, rec store.Record, points int) {
	if d.index == nil {
		return
	}
	err := d.index.UpsertRecord(ctx, index.Summary{
		Experiment:        d.exp.Name,
		Topics:            k,
		RunID:             d.runID,
		AvgCoherence:      rec.Aggregated.AvgCoherence,
		CoherenceStdev:    rec.Aggregated.CoherenceStdev,
		CoherenceVariance: rec.Aggregated.CoherenceVariance,
		Points:            points,
	})
	if err != nil {
		logging.WarnWithContext(logger, "run index record update failed", "index_failed",
			logging.String(logging.FieldImpact, "record summary missing from index"),
			logging.Error(err),
		)
	}
}

// RunBaseline trains the experiment's trials at a single topic count and
// stores one flat record for the experiment, to be drawn as a reference
// line next to full sweeps.
func (d *Driver) RunBaseline(ctx context.Context, ds *experiment.Dataset, topics int) (TopicResult, error) {
	if d.exp.Sequential() {
		return TopicResult{}, services.Wrap(services.ErrConfiguration, "sweep", "baseline",
			"baselines are trained with independent trials only", nil)
	}
	start := time.Now()
	ctx = services.WithRunID(ctx, d.runID)
	ctx = services.WithExperiment(ctx, d.exp.Name)
	ctx = services.WithTopics(ctx, topics)
	logger := logging.WithContext(ctx, d.logger)

	result := TopicResult{Topics: topics}
	out, err := d.runner.RunIndependent(ctx, topicmodel.NewCorpus(ds.Documents), topics, d.exp.Trials)
	d.metrics.ObserveSweep(d.exp.Name, time.Since(start), err)
	if err != nil {
		return result, err
	}
	result.Failures = out.Failures
	values := make([]float64, len(out.Results))
	for i, t := range out.Results {
		values[i] = t.Coherence
	}
	if len(values) == 0 {
		result.Skipped = true
		return result, services.Wrap(services.ErrTrialFailure, "sweep", "baseline",
			fmt.Sprintf("all %d trials failed", d.exp.Trials), nil)
	}
	rec := store.Record{Trials: out.Results, Aggregated: Aggregate(values, topics)}
	if err := d.store.PutBaseline(ctx, d.exp.Name, rec); err != nil {
		return result, fmt.Errorf("persist baseline: %w", err)
	}
	result.Record = rec
	logger.Info("baseline complete",
		logging.String(logging.FieldEventType, "baseline_complete"),
		logging.Float64("avg_coherence", rec.Aggregated.AvgCoherence),
		logging.Int("points", len(values)),
	)
	return result, nil
}
