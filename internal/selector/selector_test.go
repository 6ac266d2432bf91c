package selector_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicsweep/internal/selector"
	"topicsweep/internal/services"
	"topicsweep/internal/store"
)

func record(values ...float64) store.Record {
	var rec store.Record
	for i, v := range values {
		rec.Trials = append(rec.Trials, store.TrialResult{Index: i, Coherence: v})
	}
	return rec
}

func TestSelectHighestCoherence(t *testing.T) {
	got, err := selector.Select(record(0.41, 0.45, 0.43), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Index)
	assert.InDelta(t, 0.45, got.Coherence, 1e-12)
}

func TestSelectTieGoesToLowestIndex(t *testing.T) {
	rec := store.Record{Trials: []store.TrialResult{
		{Index: 2, Coherence: 0.5},
		{Index: 0, Coherence: 0.5},
		{Index: 1, Coherence: 0.3},
	}}
	got, err := selector.Select(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Index)
}

func TestSelectExplicitTrial(t *testing.T) {
	idx := 2
	got, err := selector.Select(record(0.9, 0.1, 0.2), &idx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Index)

	missing := 7
	_, err = selector.Select(record(0.9), &missing)
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestSelectEmptyRecord(t *testing.T) {
	_, err := selector.Select(store.Record{}, nil)
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestBestSlice(t *testing.T) {
	rec := store.Record{Slices: []store.SliceResult{
		{Index: 0, Coherence: 0.2},
		{Index: 1, Coherence: 0.6},
		{Index: 2, Coherence: 0.6},
	}}
	got, err := selector.BestSlice(rec)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Index)
}
