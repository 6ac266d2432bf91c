package results_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicsweep/internal/corpus"
	"topicsweep/internal/experiment"
	"topicsweep/internal/results"
	"topicsweep/internal/services"
	"topicsweep/internal/store"
	"topicsweep/internal/testsupport"
	"topicsweep/internal/topicmodel"
	"topicsweep/internal/topicmodel/lda"
)

func intPtr(v int) *int { return &v }

func putRecord(t *testing.T, st *store.Store, name string, k int, rec store.Record) {
	t.Helper()
	require.NoError(t, st.Put(context.Background(), name, k, rec))
}

func staticRecord(k int, avg float64) store.Record {
	return store.Record{
		Trials:     []store.TrialResult{{Index: 0, Coherence: avg}},
		Aggregated: store.Aggregated{AvgCoherence: avg, Topics: k},
	}
}

func TestCompareSkipsMissingRecords(t *testing.T) {
	st := testsupport.NewStore(t)
	putRecord(t, st, "health", 2, staticRecord(2, 0.4))
	putRecord(t, st, "health", 4, staticRecord(4, 0.5))

	exp := &experiment.Config{Name: "health", PlotName: "Health subs", MinTopics: 2, MaxTopics: 4}
	series, err := results.NewReader(st, nil).Compare([]*experiment.Config{exp})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "Health subs", series[0].Label)
	require.Len(t, series[0].Points, 2)
	assert.Equal(t, 2, series[0].Points[0].Topics)
	assert.Equal(t, 4, series[0].Points[1].Topics)
	assert.InDelta(t, 0.5, series[0].Points[1].AvgCoherence, 1e-12)
	assert.Equal(t, 1, series[0].Points[1].Points)
}

func TestBaseline(t *testing.T) {
	st := testsupport.NewStore(t)
	rec := store.Record{
		Trials:     []store.TrialResult{{Index: 0, Coherence: 0.5}, {Index: 1, Coherence: 0.7}},
		Aggregated: store.Aggregated{AvgCoherence: 0.6, CoherenceStdev: 0.1, CoherenceVariance: 0.01},
	}
	require.NoError(t, st.PutBaseline(context.Background(), "20news", rec))

	s, err := results.NewReader(st, nil).Baseline("20news", "")
	require.NoError(t, err)
	assert.True(t, s.Baseline)
	assert.Equal(t, "20news", s.Label)
	require.Len(t, s.Points, 1)
	assert.InDelta(t, 0.6, s.Points[0].AvgCoherence, 1e-12)
	assert.Equal(t, 2, s.Points[0].Points)

	_, err = results.NewReader(st, nil).Baseline("missing", "")
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestSlicesStripsLabels(t *testing.T) {
	st := testsupport.NewStore(t)
	putRecord(t, st, "seq", 3, store.Record{
		Slices: []store.SliceResult{
			{Index: 0, Coherence: 0.3, StartTime: "2021-01-01 00:00:00", NumPosts: 4},
			{Index: 1, Coherence: 0.4, StartTime: "2021-01-06 00:00:00", NumPosts: 2},
		},
		Aggregated: store.Aggregated{AvgCoherence: 0.35, Topics: 3},
	})

	series, err := results.NewReader(st, nil).Slices("seq", []string{" 00:00:00"})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 3, series[0].Topics)
	assert.Equal(t, "2021-01-06", series[0].Slices[1].Label)
	assert.Equal(t, 1, series[0].Slices[1].Slice)

	var buf bytes.Buffer
	require.NoError(t, results.WriteSlicesCSV(&buf, series))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "3,1,2021-01-06,0.400000,2", lines[2])
}

func TestSlicesRejectsStaticRecords(t *testing.T) {
	st := testsupport.NewStore(t)
	putRecord(t, st, "static", 2, staticRecord(2, 0.4))
	_, err := results.NewReader(st, nil).Slices("static", nil)
	assert.True(t, errors.Is(err, services.ErrConfiguration))
}

func saveModel(t *testing.T, dir string, m *lda.Model) {
	t.Helper()
	require.NoError(t, m.Save(filepath.Join(dir, store.ModelFile)))
}

func twoTopicModel() *lda.Model {
	return &lda.Model{
		Vocabulary: []string{"dose", "market", "stock", "vaccine"},
		TopicWord: [][]float64{
			{0.3, 0.05, 0.05, 0.6},
			{0.05, 0.4, 0.5, 0.05},
		},
	}
}

func TestTopWordsSelectsBestTrial(t *testing.T) {
	st := testsupport.NewStore(t)
	dir0 := st.TrialDir("health", 2, 0)
	dir1 := st.TrialDir("health", 2, 1)
	saveModel(t, dir0, twoTopicModel())
	saveModel(t, dir1, twoTopicModel())
	coh := topicmodel.Coherence{Metric: "c_v", Value: 0.5, PerTopic: []float64{0.45, 0.55}}
	require.NoError(t, coh.Save(filepath.Join(dir1, store.CoherenceFile)))
	putRecord(t, st, "health", 2, store.Record{
		Trials: []store.TrialResult{
			{Index: 0, Path: dir0, Coherence: 0.3},
			{Index: 1, Path: dir1, Coherence: 0.5},
		},
		Aggregated: store.Aggregated{AvgCoherence: 0.4, Topics: 2},
	})
	reader := results.NewReader(st, nil)

	best, err := reader.TopWords(lda.Loader{}, results.WordsQuery{Experiment: "health", Topics: 2, N: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, best.Trial)
	require.Len(t, best.TopicWords, 2)
	assert.Equal(t, []string{"vaccine", "dose"}, best.TopicWords[0].Words)
	assert.Equal(t, []string{"stock", "market"}, best.TopicWords[1].Words)
	require.NotNil(t, best.TopicWords[1].Coherence)
	assert.InDelta(t, 0.55, *best.TopicWords[1].Coherence, 1e-12)

	first, err := reader.TopWords(lda.Loader{}, results.WordsQuery{Experiment: "health", Topics: 2, Trial: intPtr(0), N: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Trial)
	assert.Nil(t, first.TopicWords[0].Coherence, "trial 0 has no coherence artifact")

	only, err := reader.TopWords(lda.Loader{}, results.WordsQuery{Experiment: "health", Topics: 2, OnlyTopic: intPtr(1), N: 1})
	require.NoError(t, err)
	require.Len(t, only.TopicWords, 1)
	assert.Equal(t, 1, only.TopicWords[0].Topic)

	_, err = reader.TopWords(lda.Loader{}, results.WordsQuery{Experiment: "health", Topics: 2, Trial: intPtr(7)})
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestTopWordsMissingModelArtifact(t *testing.T) {
	st := testsupport.NewStore(t)
	putRecord(t, st, "nosave", 2, store.Record{
		Trials:     []store.TrialResult{{Index: 0, Path: st.TrialDir("nosave", 2, 0), Coherence: 0.3}},
		Aggregated: store.Aggregated{AvgCoherence: 0.3, Topics: 2},
	})
	_, err := results.NewReader(st, nil).TopWords(lda.Loader{}, results.WordsQuery{Experiment: "nosave", Topics: 2})
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestExportModelCopiesSelectedTrial(t *testing.T) {
	st := testsupport.NewStore(t)
	dir0 := st.TrialDir("health", 2, 0)
	dir1 := st.TrialDir("health", 2, 1)
	saveModel(t, dir1, twoTopicModel())
	putRecord(t, st, "health", 2, store.Record{
		Trials: []store.TrialResult{
			{Index: 0, Path: dir0, Coherence: 0.3},
			{Index: 1, Path: dir1, Coherence: 0.5},
		},
		Aggregated: store.Aggregated{AvgCoherence: 0.4, Topics: 2},
	})
	reader := results.NewReader(st, nil)
	exp := &experiment.Config{Name: "health"}

	dst := filepath.Join(t.TempDir(), "out", "best.model")
	src, err := reader.ExportModel(exp, 2, nil, dst)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir1, store.ModelFile), src)
	assert.FileExists(t, dst)

	_, err = reader.ExportModel(exp, 2, intPtr(0), filepath.Join(t.TempDir(), "trial0.model"))
	assert.True(t, errors.Is(err, services.ErrNotFound), "trial 0 saved no model")
}

func TestSliceWords(t *testing.T) {
	st := testsupport.NewStore(t)
	m := twoTopicModel()
	m.Counts = []int{3, 2}
	m.SliceTopicWord = [][][]float64{
		m.TopicWord,
		{
			{0.6, 0.05, 0.05, 0.3},
			{0.05, 0.5, 0.4, 0.05},
		},
	}
	require.NoError(t, m.Save(st.SequentialModelPath("seq", 2)))
	cohPath := st.SliceCoherencePath("seq", 2, 1)
	require.NoError(t, topicmodel.Coherence{Value: 0.4, PerTopic: []float64{0.35, 0.45}}.Save(cohPath))
	putRecord(t, st, "seq", 2, store.Record{
		Slices: []store.SliceResult{
			{Index: 0, Coherence: 0.3, StartTime: "2021-01-01", NumPosts: 3},
			{Index: 1, Coherence: 0.4, StartTime: "2021-01-06", NumPosts: 2, CoherencePath: cohPath},
		},
		Aggregated: store.Aggregated{AvgCoherence: 0.35, Topics: 2},
	})
	reader := results.NewReader(st, nil)

	all, err := reader.SliceWords(lda.Loader{}, results.WordsQuery{Experiment: "seq", Topics: 2, N: 1})
	require.NoError(t, err)
	require.Len(t, all.Slices, 2)
	assert.Equal(t, []string{"vaccine"}, all.Slices[0].TopicWords[0].Words)
	assert.Nil(t, all.Slices[0].TopicWords[0].Coherence)
	assert.Equal(t, []string{"dose"}, all.Slices[1].TopicWords[0].Words)
	require.NotNil(t, all.Slices[1].TopicWords[1].Coherence)
	assert.InDelta(t, 0.45, *all.Slices[1].TopicWords[1].Coherence, 1e-12)

	one, err := reader.SliceWords(lda.Loader{}, results.WordsQuery{Experiment: "seq", Topics: 2, Slice: intPtr(1), OnlyTopic: intPtr(1), N: 2})
	require.NoError(t, err)
	require.Len(t, one.Slices, 1)
	require.Len(t, one.Slices[0].TopicWords, 1)
	assert.Equal(t, []string{"market", "stock"}, one.Slices[0].TopicWords[0].Words)

	_, err = reader.SliceWords(lda.Loader{}, results.WordsQuery{Experiment: "seq", Topics: 2, Slice: intPtr(5)})
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestWriteTopicDists(t *testing.T) {
	var buf bytes.Buffer
	err := results.WriteTopicDists(&buf, "post_id", []string{"a", "b"}, [][]float64{{0.25, 0.75}, {1, 0}})
	require.NoError(t, err)
	assert.Equal(t, "post_id,topic_0,topic_1\na,0.25,0.75\nb,1,0\n", buf.String())

	err = results.WriteTopicDists(&buf, "", []string{"a"}, [][]float64{{0.5, 0.5}, {1, 0}})
	var inv *services.InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, 1, inv.Expected)
	assert.Equal(t, 2, inv.Actual)
}

func TestDocumentIDsFollowsSequentialOrder(t *testing.T) {
	exp := &experiment.Config{
		Name: "seq", Model: experiment.ModelLDASeq, DaysInInterval: 5,
		TimeFilter: &experiment.TimeFilter{TimeKey: "created_at", Start: "2021-01-01", ArgFormat: "%Y-%m-%d"},
	}
	at := func(d int) time.Time { return time.Date(2021, 1, d, 12, 0, 0, 0, time.UTC) }
	ds := &experiment.Dataset{
		Documents: []corpus.Document{
			{ID: "late", Time: at(8)},
			{ID: "early", Time: at(2)},
			{ID: "mid", Time: at(4)},
		},
		Range: corpus.TimeRange{Start: at(1).Add(-12 * time.Hour), End: at(10)},
	}
	ids, err := results.DocumentIDs(exp, ds)
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "mid", "late"}, ids)

	exp.Model = experiment.ModelLDA
	ids, err = results.DocumentIDs(exp, ds)
	require.NoError(t, err)
	assert.Equal(t, []string{"late", "early", "mid"}, ids)
}

func TestWriteSeriesCSV(t *testing.T) {
	var buf bytes.Buffer
	err := results.WriteSeriesCSV(&buf, []results.Series{{
		Experiment: "health",
		Label:      "Health",
		Mode:       store.ModeStatic,
		Points:     []results.Point{{Topics: 2, AvgCoherence: 0.4, CoherenceStdev: 0.1, CoherenceVariance: 0.01, Points: 3}},
	}})
	require.NoError(t, err)
	assert.Equal(t,
		"experiment,label,mode,topics,avg_coherence,coherence_stdev,coherence_variance,points\n"+
			"health,Health,lda,2,0.400000,0.100000,0.010000,3\n",
		buf.String())
}
