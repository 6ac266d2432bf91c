package sweep

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"topicsweep/internal/store"
)

// Aggregate summarises coherence values with population statistics. A
// single value has zero spread.
func Aggregate(values []float64, topics int) store.Aggregated {
	agg := store.Aggregated{Topics: topics}
	switch len(values) {
	case 0:
		return agg
	case 1:
		agg.AvgCoherence = values[0]
		return agg
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	agg.AvgCoherence = mean
	agg.CoherenceVariance = variance
	agg.CoherenceStdev = math.Sqrt(variance)
	return agg
}
