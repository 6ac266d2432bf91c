package lda

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"topicsweep/internal/services"
)

func TestSliceWeightsFollowDocumentMixtures(t *testing.T) {
	theta := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		0.5, 0.5,
	})
	texts := [][]string{{"a", "a"}, {"b"}, {"a", "b"}}
	vocab := map[string]int{"a": 0, "b": 1}
	global := [][]float64{{0.5, 0.5}, {0.5, 0.5}}

	full := sliceWeights(theta, texts, vocab, 0, 2, global, 1)
	assert.InDeltaSlice(t, []float64{1, 0}, full[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0, 1}, full[1], 1e-12)

	blended := sliceWeights(theta, texts, vocab, 0, 2, global, 0.5)
	assert.InDeltaSlice(t, []float64{0.75, 0.25}, blended[0], 1e-12)

	last := sliceWeights(theta, texts, vocab, 2, 1, global, 1)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, last[0], 1e-12)
}

func TestSliceWeightsEmptySliceKeepsGlobal(t *testing.T) {
	theta := mat.NewDense(1, 2, []float64{1, 0})
	global := [][]float64{{0.2, 0.8}, {0.6, 0.4}}
	got := sliceWeights(theta, [][]string{{"a"}}, map[string]int{"a": 0, "b": 1}, 1, 0, global, 0.8)
	assert.Equal(t, global, got)
	got[0][0] = 99
	assert.InDelta(t, 0.2, global[0][0], 0, "global rows must be copied")
}

func TestSliceWeightsTopicWithoutEvidence(t *testing.T) {
	theta := mat.NewDense(1, 2, []float64{1, 0})
	global := [][]float64{{0.5, 0.5}, {0.1, 0.9}}
	got := sliceWeights(theta, [][]string{{"a"}}, map[string]int{"a": 0, "b": 1}, 0, 1, global, 0.8)
	assert.InDeltaSlice(t, []float64{0.9, 0.1}, got[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0.1, 0.9}, got[1], 1e-12)
}

func TestCheckCounts(t *testing.T) {
	require.NoError(t, checkCounts([]int{3, 2}, 5))

	err := checkCounts([]int{3, 1}, 5)
	var inv *services.InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, 5, inv.Expected)
	assert.Equal(t, 4, inv.Actual)

	assert.True(t, errors.Is(checkCounts([]int{6, -1}, 5), services.ErrDataInvariant))
}

func TestNormalizedRows(t *testing.T) {
	in := [][]float64{{1, 3}, {0, 0}}
	out := normalizedRows(in)
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, out[0], 1e-12)
	assert.Equal(t, []float64{0, 0}, out[1])
	assert.Equal(t, []float64{1, 3}, in[0])
}
