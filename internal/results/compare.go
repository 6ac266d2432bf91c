// Package results reads persisted sweep records back for reporting:
// coherence comparisons across experiments, top words of the selected
// model, per-document topic distributions, and per-slice series.
package results

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"topicsweep/internal/experiment"
	"topicsweep/internal/logging"
	"topicsweep/internal/services"
	"topicsweep/internal/store"
)

// Point is the aggregated coherence of one topic count.
type Point struct {
	Topics            int     `json:"topics"`
	AvgCoherence      float64 `json:"avg_coherence"`
	CoherenceStdev    float64 `json:"coherence_stdev"`
	CoherenceVariance float64 `json:"coherence_variance"`
	Points            int     `json:"points"`
}

// Series is the coherence curve of one experiment.
type Series struct {
	Experiment string     `json:"experiment"`
	Label      string     `json:"label"`
	Mode       store.Mode `json:"mode"`
	Points     []Point    `json:"points"`
	// Baseline marks a flat record drawn as a constant reference.
	Baseline bool `json:"baseline,omitempty"`
}

// Reader loads records from a store.
type Reader struct {
	store  *store.Store
	logger *slog.Logger
}

// NewReader returns a reader over st.
func NewReader(st *store.Store, logger *slog.Logger) *Reader {
	return &Reader{store: st, logger: logging.NewComponentLogger(logger, "results")}
}

// Compare builds one series per experiment over its configured topic range.
// Topic counts without a record are skipped with a warning so a sweep still in
// progress can be inspected.
func (r *Reader) Compare(exps []*experiment.Config) ([]Series, error) {
	out := make([]Series, 0, len(exps))
	for _, exp := range exps {
		series, err := r.series(exp)
		if err != nil {
			return nil, err
		}
		out = append(out, series)
	}
	return out, nil
}

func (r *Reader) series(exp *experiment.Config) (Series, error) {
	s := Series{Experiment: exp.Name, Label: exp.Label(), Mode: store.ModeStatic}
	if exp.Sequential() {
		s.Mode = store.ModeSequential
	}
	for k := exp.MinTopics; k <= exp.MaxTopics; k++ {
		rec, err := r.store.Get(exp.Name, k)
		if errors.Is(err, services.ErrNotFound) {
			logging.WarnWithContext(r.logger, "record missing", "record_missing",
				logging.String(logging.FieldExperiment, exp.Name),
				logging.Int(logging.FieldTopics, k),
				logging.String(logging.FieldImpact, "topic count left out of comparison"),
			)
			continue
		}
		if err != nil {
			return Series{}, err
		}
		s.Points = append(s.Points, pointOf(k, rec))
	}
	return s, nil
}

// Baseline returns the flat record of a baseline experiment as a series with
// a single point.
func (r *Reader) Baseline(name, label string) (Series, error) {
	rec, err := r.store.GetBaseline(name)
	if err != nil {
		return Series{}, err
	}
	if label == "" {
		label = name
	}
	return Series{
		Experiment: name,
		Label:      label,
		Mode:       store.ModeStatic,
		Points:     []Point{pointOf(rec.Aggregated.Topics, rec)},
		Baseline:   true,
	}, nil
}

func pointOf(k int, rec store.Record) Point {
	return Point{
		Topics:            k,
		AvgCoherence:      rec.Aggregated.AvgCoherence,
		CoherenceStdev:    rec.Aggregated.CoherenceStdev,
		CoherenceVariance: rec.Aggregated.CoherenceVariance,
		Points:            len(rec.Coherences()),
	}
}

// SlicePoint is the coherence of one time slice.
type SlicePoint struct {
	Slice     int     `json:"slice"`
	Label     string  `json:"label"`
	Coherence float64 `json:"coherence"`
	NumPosts  int     `json:"num_posts"`
}

// SliceSeries is the per-slice coherence of one sequential topic count.
type SliceSeries struct {
	Topics int          `json:"topics"`
	Slices []SlicePoint `json:"slices"`
}

// Slices returns the per-slice series of every persisted topic count of a
// sequential experiment. Each substring in strip is removed from the labels.
func (r *Reader) Slices(name string, strip []string) ([]SliceSeries, error) {
	counts, err := r.store.TopicCounts(name)
	if err != nil {
		return nil, err
	}
	var out []SliceSeries
	for _, k := range counts {
		rec, err := r.store.Get(name, k)
		if err != nil {
			return nil, err
		}
		if rec.Mode() != store.ModeSequential {
			return nil, services.Wrap(services.ErrConfiguration, "results", "slices",
				fmt.Sprintf("%s/%dtopics is not a sequential record", name, k), nil)
		}
		series := SliceSeries{Topics: k}
		for _, s := range rec.Slices {
			series.Slices = append(series.Slices, SlicePoint{
				Slice:     s.Index,
				Label:     StripLabel(s.StartTime, strip),
				Coherence: s.Coherence,
				NumPosts:  s.NumPosts,
			})
		}
		out = append(out, series)
	}
	return out, nil
}

// StripLabel removes every occurrence of each substring from label.
func StripLabel(label string, strip []string) string {
	for _, s := range strip {
		if s != "" {
			label = strings.ReplaceAll(label, s, "")
		}
	}
	return label
}
