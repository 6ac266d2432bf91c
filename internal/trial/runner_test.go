package trial_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicsweep/internal/metrics"
	"topicsweep/internal/services"
	"topicsweep/internal/store"
	"topicsweep/internal/testsupport"
	"topicsweep/internal/timebucket"
	"topicsweep/internal/topicmodel"
	"topicsweep/internal/trial"
)

func corpusOf(n int) topicmodel.Corpus {
	c := topicmodel.Corpus{}
	for i := 0; i < n; i++ {
		c.IDs = append(c.IDs, string(rune('a'+i)))
		c.Texts = append(c.Texts, []string{"vaccine", "dose"})
	}
	return c
}

func newRunner(t *testing.T, trainer *testsupport.FakeTrainer, scorer *testsupport.FakeScorer, parallel int) (*trial.Runner, *store.Store) {
	t.Helper()
	st := testsupport.NewStore(t)
	r, err := trial.NewRunner(trial.Deps{
		Trainer:    trainer,
		Sequential: trainer,
		Scorer:     scorer,
		Store:      st,
		Metrics:    metrics.New(),
	}, trial.Options{Experiment: "exp", Parallel: parallel})
	require.NoError(t, err)
	return r, st
}

func TestRunIndependentWritesArtifacts(t *testing.T) {
	trainer := &testsupport.FakeTrainer{}
	r, st := newRunner(t, trainer, &testsupport.FakeScorer{}, 1)

	out, err := r.RunIndependent(context.Background(), corpusOf(4), 3, 3)
	require.NoError(t, err)
	require.Len(t, out.Results, 3)
	assert.Empty(t, out.Failures)
	for i, res := range out.Results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, st.TrialDir("exp", 3, i), res.Path)
		assert.FileExists(t, filepath.Join(res.Path, store.ModelFile))
		assert.FileExists(t, filepath.Join(res.Path, store.CoherenceFile))
		coh, err := topicmodel.LoadCoherence(filepath.Join(res.Path, store.CoherenceFile))
		require.NoError(t, err)
		assert.InDelta(t, res.Coherence, coh.Value, 1e-12)
	}
	independent, _ := trainer.Calls()
	assert.Equal(t, 3, independent)
}

func TestRunIndependentContinuesPastFailures(t *testing.T) {
	trainer := &testsupport.FakeTrainer{
		Fail: func(_ int, outputPath string) error {
			if strings.HasSuffix(outputPath, "model_1") {
				return errors.New("sampler diverged")
			}
			return nil
		},
	}
	r, _ := newRunner(t, trainer, &testsupport.FakeScorer{}, 1)

	out, err := r.RunIndependent(context.Background(), corpusOf(4), 2, 3)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, 0, out.Results[0].Index)
	assert.Equal(t, 2, out.Results[1].Index)
	require.Len(t, out.Failures, 1)
	assert.True(t, errors.Is(out.Failures[0], services.ErrTrialFailure))
	assert.Contains(t, out.Failures[0].Error(), "sampler diverged")
}

func TestRunIndependentParallelKeepsIndexOrder(t *testing.T) {
	trainer := &testsupport.FakeTrainer{}
	r, _ := newRunner(t, trainer, &testsupport.FakeScorer{}, 4)

	out, err := r.RunIndependent(context.Background(), corpusOf(2), 2, 8)
	require.NoError(t, err)
	require.Len(t, out.Results, 8)
	for i, res := range out.Results {
		assert.Equal(t, i, res.Index)
	}
	assert.Len(t, trainer.Outputs(), 8)
}

func TestRunIndependentCancelled(t *testing.T) {
	trainer := &testsupport.FakeTrainer{}
	r, _ := newRunner(t, trainer, &testsupport.FakeScorer{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RunIndependent(ctx, corpusOf(2), 2, 3)
	assert.ErrorIs(t, err, context.Canceled)
	independent, _ := trainer.Calls()
	assert.Zero(t, independent)
}

func buckets(t *testing.T, days ...int) timebucket.Buckets {
	t.Helper()
	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, len(days))
	for i, d := range days {
		times[i] = base.AddDate(0, 0, d)
	}
	b, err := timebucket.Partition(times, timebucket.Spec{
		Start:     base,
		End:       base.AddDate(0, 0, 9),
		WidthDays: 5,
	})
	require.NoError(t, err)
	return b
}

func TestRunSequentialScoresEverySlice(t *testing.T) {
	trainer := &testsupport.FakeTrainer{}
	r, st := newRunner(t, trainer, &testsupport.FakeScorer{}, 1)
	b := buckets(t, 0, 2, 4, 5, 9)

	out, err := r.RunSequential(context.Background(), corpusOf(5), 4, b)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, trainer.LastCounts())
	require.Len(t, out.Slices, 2)
	assert.Equal(t, "2021-01-01", out.Slices[0].StartTime)
	assert.Equal(t, 3, out.Slices[0].NumPosts)
	assert.Equal(t, "2021-01-06", out.Slices[1].StartTime)
	assert.Equal(t, st.SliceCoherencePath("exp", 4, 1), out.Slices[1].CoherencePath)
	assert.FileExists(t, out.Slices[1].CoherencePath)
	assert.FileExists(t, st.SequentialModelPath("exp", 4))
	_, sequential := trainer.Calls()
	assert.Equal(t, 1, sequential, "sequential mode trains exactly once")
}

func TestRunSequentialRejectsUncoveredDocuments(t *testing.T) {
	trainer := &testsupport.FakeTrainer{}
	r, _ := newRunner(t, trainer, &testsupport.FakeScorer{}, 1)
	b := buckets(t, 0, 2, 4, 5, 9)

	_, err := r.RunSequential(context.Background(), corpusOf(7), 4, b)
	var inv *services.InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, 7, inv.Expected)
	assert.Equal(t, 5, inv.Actual)
	_, sequential := trainer.Calls()
	assert.Zero(t, sequential, "no training after an invariant violation")
}

func TestRunSequentialDropsFailedSlices(t *testing.T) {
	trainer := &testsupport.FakeTrainer{}
	r, _ := newRunner(t, trainer, &testsupport.FakeScorer{FailSlice: map[int]bool{0: true}}, 1)

	out, err := r.RunSequential(context.Background(), corpusOf(5), 3, buckets(t, 0, 2, 4, 5, 9))
	require.NoError(t, err)
	require.Len(t, out.Slices, 1)
	assert.Equal(t, 1, out.Slices[0].Index)
	assert.Len(t, out.Failures, 1)
}

func TestRunSequentialTrainingFailure(t *testing.T) {
	trainer := &testsupport.FakeTrainer{Fail: func(int, string) error { return errors.New("no convergence") }}
	r, _ := newRunner(t, trainer, &testsupport.FakeScorer{}, 1)

	_, err := r.RunSequential(context.Background(), corpusOf(5), 3, buckets(t, 0, 2, 4, 5, 9))
	assert.True(t, errors.Is(err, services.ErrTrialFailure))
}

func TestNewRunnerRequiresDeps(t *testing.T) {
	_, err := trial.NewRunner(trial.Deps{}, trial.Options{})
	assert.Error(t, err)
}

func TestRunIndependentSkipsArtifacts(t *testing.T) {
	st := testsupport.NewStore(t)
	r, err := trial.NewRunner(trial.Deps{
		Trainer: &testsupport.FakeTrainer{},
		Scorer:  &testsupport.FakeScorer{},
		Store:   st,
	}, trial.Options{Experiment: "exp", SkipModelSave: true, SkipCoherenceSave: true})
	require.NoError(t, err)

	out, err := r.RunIndependent(context.Background(), corpusOf(2), 2, 1)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, st.TrialDir("exp", 2, 0), out.Results[0].Path)
	assert.NoFileExists(t, filepath.Join(out.Results[0].Path, store.ModelFile))
	assert.NoFileExists(t, filepath.Join(out.Results[0].Path, store.CoherenceFile))
}
