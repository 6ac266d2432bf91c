package results

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSeriesCSV writes one row per (experiment, topic count).
func WriteSeriesCSV(w io.Writer, series []Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"experiment", "label", "mode", "topics", "avg_coherence", "coherence_stdev", "coherence_variance", "points"}); err != nil {
		return err
	}
	for _, s := range series {
		for _, p := range s.Points {
			err := cw.Write([]string{
				s.Experiment,
				s.Label,
				string(s.Mode),
				strconv.Itoa(p.Topics),
				formatFloat(p.AvgCoherence),
				formatFloat(p.CoherenceStdev),
				formatFloat(p.CoherenceVariance),
				strconv.Itoa(p.Points),
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSlicesCSV writes one row per (topic count, slice).
func WriteSlicesCSV(w io.Writer, series []SliceSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"topics", "slice", "label", "coherence", "num_posts"}); err != nil {
		return err
	}
	for _, s := range series {
		for _, p := range s.Slices {
			err := cw.Write([]string{
				strconv.Itoa(s.Topics),
				strconv.Itoa(p.Slice),
				p.Label,
				formatFloat(p.Coherence),
				strconv.Itoa(p.NumPosts),
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
