package lda

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"topicsweep/internal/logging"
	"topicsweep/internal/services"
	"topicsweep/internal/topicmodel"
)

// TrainSequential fits once over the whole slice-ordered corpus and derives
// per-slice topic-word weights. Counts must sum to the corpus size.
func (t *Trainer) TrainSequential(ctx context.Context, c topicmodel.Corpus, opts topicmodel.SequentialOptions) (topicmodel.SequentialModel, error) {
	if err := checkCounts(opts.Counts, c.Len()); err != nil {
		return nil, err
	}
	weight := opts.SliceWeight
	if weight < 0 || weight > 1 {
		return nil, services.Wrap(services.ErrConfiguration, "lda", "train sequential",
			fmt.Sprintf("slice weight %.3f outside [0, 1]", weight), nil)
	}

	m, f, err := t.fit(ctx, c, opts.TrainOptions)
	if err != nil {
		return nil, err
	}

	global := normalizedRows(m.TopicWord)
	m.Counts = append([]int(nil), opts.Counts...)
	m.SliceTopicWord = make([][][]float64, len(opts.Counts))
	offset := 0
	for s, n := range opts.Counts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.SliceTopicWord[s] = sliceWeights(f.theta, c.Texts, f.vocab, offset, n, global, weight)
		offset += n
	}
	t.logger().Debug("sequential slices estimated",
		logging.Int(logging.FieldTopics, opts.Topics),
		logging.Int("slices", len(opts.Counts)),
	)
	return m, nil
}

func checkCounts(counts []int, total int) error {
	sum := 0
	for i, n := range counts {
		if n < 0 {
			return services.Wrap(services.ErrDataInvariant, "lda", "train sequential",
				fmt.Sprintf("slice %d has negative count %d", i, n), nil)
		}
		sum += n
	}
	if sum != total {
		return services.CountMismatch("documents across time slices", total, sum)
	}
	return nil
}

// sliceWeights estimates topic-word weights for documents [from, from+n)
// as sum_d theta[d,k] * count[d,w], normalised per topic and blended with
// the global distribution. Topics with no evidence in the slice keep the
// global weights.
func sliceWeights(theta *mat.Dense, texts [][]string, vocab map[string]int, from, n int, global [][]float64, weight float64) [][]float64 {
	k := len(global)
	out := make([][]float64, k)
	if n == 0 || len(vocab) == 0 {
		for topic := range out {
			out[topic] = append([]float64(nil), global[topic]...)
		}
		return out
	}

	counts := mat.NewDense(n, len(vocab), nil)
	for i := 0; i < n; i++ {
		for _, token := range texts[from+i] {
			if j, ok := vocab[token]; ok {
				counts.Set(i, j, counts.At(i, j)+1)
			}
		}
	}
	var evidence mat.Dense
	evidence.Mul(theta.Slice(from, from+n, 0, k).T(), counts)

	for topic := range out {
		row := mat.Row(nil, topic, &evidence)
		sum := floats.Sum(row)
		if sum <= 0 {
			out[topic] = append([]float64(nil), global[topic]...)
			continue
		}
		floats.Scale(weight/sum, row)
		floats.AddScaled(row, 1-weight, global[topic])
		out[topic] = row
	}
	return out
}

func normalizedRows(in [][]float64) [][]float64 {
	out := make([][]float64, len(in))
	for i, row := range in {
		cp := append([]float64(nil), row...)
		if sum := floats.Sum(cp); sum > 0 {
			floats.Scale(1/sum, cp)
		}
		out[i] = cp
	}
	return out
}
