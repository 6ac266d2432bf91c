// Package selector picks the trial whose artifacts should be loaded for a
// topic count.
package selector

import (
	"fmt"

	"topicsweep/internal/services"
	"topicsweep/internal/store"
)

// Select returns the trial with the given index when trial is non-nil.
// Otherwise it returns the trial with the highest coherence; ties go to the
// lowest index.
func Select(rec store.Record, trial *int) (store.TrialResult, error) {
	if trial != nil {
		if t, ok := rec.Trial(*trial); ok {
			return t, nil
		}
		return store.TrialResult{}, services.Wrap(services.ErrNotFound, "selector", "select",
			fmt.Sprintf("trial %d not in record", *trial), nil)
	}
	if len(rec.Trials) == 0 {
		return store.TrialResult{}, services.Wrap(services.ErrNotFound, "selector", "select",
			"record has no trials", nil)
	}
	best := rec.Trials[0]
	for _, t := range rec.Trials[1:] {
		if t.Coherence > best.Coherence || (t.Coherence == best.Coherence && t.Index < best.Index) {
			best = t
		}
	}
	return best, nil
}

// BestSlice returns the slice with the highest coherence, ties to the lowest
// index.
func BestSlice(rec store.Record) (store.SliceResult, error) {
	if len(rec.Slices) == 0 {
		return store.SliceResult{}, services.Wrap(services.ErrNotFound, "selector", "select",
			"record has no slices", nil)
	}
	best := rec.Slices[0]
	for _, s := range rec.Slices[1:] {
		if s.Coherence > best.Coherence || (s.Coherence == best.Coherence && s.Index < best.Index) {
			best = s
		}
	}
	return best, nil
}
