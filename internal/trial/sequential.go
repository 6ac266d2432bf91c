package trial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"topicsweep/internal/logging"
	"topicsweep/internal/services"
	"topicsweep/internal/store"
	"topicsweep/internal/timebucket"
	"topicsweep/internal/topicmodel"
)

// SequentialOutcome holds the scored slices of one sequential model and the
// failures of the slices that were dropped.
type SequentialOutcome struct {
	Slices   []store.SliceResult
	Failures []error
}

// RunSequential trains one time-sliced model and scores every slice. The
// corpus must already be ordered by window. The bucket counts are checked
// against the corpus before training; a mismatch is a data invariant error.
// A training failure is returned wrapped in services.ErrTrialFailure.
func (r *Runner) RunSequential(ctx context.Context, c topicmodel.Corpus, topics int, buckets timebucket.Buckets) (SequentialOutcome, error) {
	if r.sequential == nil {
		return SequentialOutcome{}, errors.New("trial runner has no sequential trainer")
	}
	if err := buckets.Verify(c.Len()); err != nil {
		return SequentialOutcome{}, err
	}
	ctx = services.WithTopics(ctx, topics)
	logger := logging.WithContext(ctx, r.logger)
	counts := buckets.Counts()

	start := time.Now()
	model, err := r.sequential.TrainSequential(ctx, c, topicmodel.SequentialOptions{
		TrainOptions: r.trainOptions(topics, r.store.TopicDir(r.opts.Experiment, topics)),
		Counts:       counts,
		SliceWeight:  r.opts.SliceWeight,
	})
	if err == nil {
		err = model.Save(r.store.SequentialModelPath(r.opts.Experiment, topics))
	}
	if ctx.Err() != nil {
		return SequentialOutcome{}, ctx.Err()
	}
	r.metrics.ObserveTrial(r.opts.Experiment, time.Since(start), err)
	if err != nil {
		if errors.Is(err, services.ErrDataInvariant) {
			return SequentialOutcome{}, err
		}
		return SequentialOutcome{}, services.Wrap(services.ErrTrialFailure, "trial", "run sequential",
			fmt.Sprintf("topics=%d", topics), err)
	}
	logger.Info("sequential model trained",
		logging.String(logging.FieldEventType, "sequential_trained"),
		logging.Int("slices", len(counts)),
		logging.Duration("train_duration", time.Since(start)),
	)

	var out SequentialOutcome
	for i, window := range buckets.Windows {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		slice, err := r.scoreSlice(ctx, model, c, topics, i)
		r.metrics.ObserveSlice(r.opts.Experiment, err)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			logging.WarnWithContext(logger, "slice scoring failed", "slice_failed",
				logging.Int(logging.FieldSlice, i),
				logging.String(logging.FieldImpact, "slice excluded from aggregate"),
				logging.Error(err),
			)
			out.Failures = append(out.Failures, fmt.Errorf("slice %d: %w", i, err))
			continue
		}
		slice.StartTime = window.Label
		slice.NumPosts = window.Count
		out.Slices = append(out.Slices, slice)
		logger.Debug("slice scored",
			logging.Int(logging.FieldSlice, i),
			logging.String("start_time", window.Label),
			logging.Float64("coherence", slice.Coherence),
		)
	}
	return out, nil
}

func (r *Runner) scoreSlice(ctx context.Context, model topicmodel.SequentialModel, c topicmodel.Corpus, topics, slice int) (store.SliceResult, error) {
	coherence, err := r.scorer.ScoreSlice(ctx, model, slice, c)
	if err != nil {
		return store.SliceResult{}, err
	}
	path := r.store.SliceCoherencePath(r.opts.Experiment, topics, slice)
	if r.opts.SkipCoherenceSave {
		path = ""
	} else if err := coherence.Save(path); err != nil {
		return store.SliceResult{}, err
	}
	return store.SliceResult{Index: slice, Coherence: coherence.Value, CoherencePath: path}, nil
}
