package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Mode distinguishes static multi-trial records from sequential ones.
type Mode string

const (
	ModeStatic     Mode = "lda"
	ModeSequential Mode = "ldaseq"
)

// TrialResult is one independent training run.
type TrialResult struct {
	Index     int     `json:"-"`
	Path      string  `json:"path"`
	Coherence float64 `json:"coherence"`
}

// SliceResult is the coherence of one time slice of a sequential model.
type SliceResult struct {
	Index         int     `json:"-"`
	Coherence     float64 `json:"coherence"`
	StartTime     string  `json:"start_time"`
	NumPosts      int     `json:"num_posts"`
	CoherencePath string  `json:"coherence_savepath"`
}

// Aggregated holds population statistics over the record's data points.
type Aggregated struct {
	AvgCoherence      float64 `json:"avg_coherence"`
	CoherenceStdev    float64 `json:"coherence_stdev"`
	CoherenceVariance float64 `json:"coherence_variance"`
	Topics            int     `json:"topics,omitempty"`
}

// Record is the persisted result for one (experiment, topic count).
// Exactly one of Trials and Slices is populated.
type Record struct {
	Trials     []TrialResult
	Slices     []SliceResult
	Aggregated Aggregated
}

// Mode reports which kind of sweep produced the record.
func (r Record) Mode() Mode {
	if len(r.Slices) > 0 {
		return ModeSequential
	}
	return ModeStatic
}

// Coherences returns the per-trial or per-slice values in index order.
func (r Record) Coherences() []float64 {
	if len(r.Slices) > 0 {
		out := make([]float64, len(r.Slices))
		for i, s := range r.Slices {
			out[i] = s.Coherence
		}
		return out
	}
	out := make([]float64, len(r.Trials))
	for i, t := range r.Trials {
		out[i] = t.Coherence
	}
	return out
}

// Trial returns the trial with the given index.
func (r Record) Trial(index int) (TrialResult, bool) {
	for _, t := range r.Trials {
		if t.Index == index {
			return t, true
		}
	}
	return TrialResult{}, false
}

const (
	trialPrefix   = "model_"
	slicePrefix   = "time_"
	aggregatedKey = "aggregated"
)

// MarshalJSON writes the flat metadata.json layout: model_<i> or time_<i>
// entries next to an aggregated entry.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Trials)+len(r.Slices)+1)
	for _, t := range r.Trials {
		out[trialPrefix+strconv.Itoa(t.Index)] = t
	}
	for _, s := range r.Slices {
		out[slicePrefix+strconv.Itoa(s.Index)] = s
	}
	out[aggregatedKey] = r.Aggregated
	return json.Marshal(out)
}

// UnmarshalJSON reads the layout written by MarshalJSON. Unknown keys are
// ignored.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var rec Record
	for key, value := range raw {
		switch {
		case key == aggregatedKey:
			if err := json.Unmarshal(value, &rec.Aggregated); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		case strings.HasPrefix(key, trialPrefix):
			idx, err := strconv.Atoi(strings.TrimPrefix(key, trialPrefix))
			if err != nil {
				continue
			}
			var t TrialResult
			if err := json.Unmarshal(value, &t); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			t.Index = idx
			rec.Trials = append(rec.Trials, t)
		case strings.HasPrefix(key, slicePrefix):
			idx, err := strconv.Atoi(strings.TrimPrefix(key, slicePrefix))
			if err != nil {
				continue
			}
			var s SliceResult
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			s.Index = idx
			rec.Slices = append(rec.Slices, s)
		}
	}
	sort.Slice(rec.Trials, func(i, j int) bool { return rec.Trials[i].Index < rec.Trials[j].Index })
	sort.Slice(rec.Slices, func(i, j int) bool { return rec.Slices[i].Index < rec.Slices[j].Index })
	*r = rec
	return nil
}
