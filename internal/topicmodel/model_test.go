package topicmodel_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicsweep/internal/corpus"
	"topicsweep/internal/topicmodel"
)

func TestCorpusReorderAndSlice(t *testing.T) {
	c := topicmodel.NewCorpus([]corpus.Document{
		{ID: "a", Tokens: []string{"alpha"}},
		{ID: "b", Tokens: []string{"beta"}},
		{ID: "c", Tokens: []string{"gamma"}},
	})
	require.Equal(t, 3, c.Len())

	r := c.Reorder([]int{2, 0})
	assert.Equal(t, []string{"c", "a"}, r.IDs)
	assert.Equal(t, [][]string{{"gamma"}, {"alpha"}}, r.Texts)

	s := c.Slice(1, 3)
	assert.Equal(t, []string{"b", "c"}, s.IDs)
	assert.Equal(t, 2, s.Len())
}

func TestCoherenceSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_0", "coherence.model")
	c := topicmodel.Coherence{
		Metric:   "c_v",
		Value:    0.5,
		PerTopic: []float64{0.4, 0.6},
		Topics:   [][]string{{"vaccine", "trial"}, {"market", "stock"}},
	}
	require.NoError(t, c.Save(path))
	got, err := topicmodel.LoadCoherence(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}
