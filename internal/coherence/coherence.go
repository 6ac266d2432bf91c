// Package coherence scores topic models against reference texts.
//
// Two measures are supported. c_v counts boolean sliding-window
// co-occurrence, turns word pairs into NPMI context vectors and averages
// the cosine similarity of every top word against its topic. u_mass uses
// document co-occurrence and the log conditional probability of each word
// given the words ranked above it.
package coherence

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"topicsweep/internal/services"
	"topicsweep/internal/topicmodel"
)

// Metric names.
const (
	MetricCV    = "c_v"
	MetricUMass = "u_mass"
)

const (
	DefaultTopN       = 10
	DefaultWindowSize = 110

	epsilon = 1e-12
)

// Scorer implements topicmodel.Scorer.
type Scorer struct {
	Metric     string
	TopN       int
	WindowSize int
}

var _ topicmodel.Scorer = (*Scorer)(nil)

// New validates the settings and returns a scorer.
func New(metric string, topN, windowSize int) (*Scorer, error) {
	if metric == "" {
		metric = MetricCV
	}
	if metric != MetricCV && metric != MetricUMass {
		return nil, services.Wrap(services.ErrConfiguration, "coherence", "new",
			fmt.Sprintf("unknown metric %q", metric), nil)
	}
	if topN == 0 {
		topN = DefaultTopN
	}
	if topN < 2 {
		return nil, services.Wrap(services.ErrConfiguration, "coherence", "new",
			fmt.Sprintf("top_n must be at least 2, got %d", topN), nil)
	}
	if windowSize == 0 {
		windowSize = DefaultWindowSize
	}
	if metric == MetricCV && windowSize < 2 {
		return nil, services.Wrap(services.ErrConfiguration, "coherence", "new",
			fmt.Sprintf("window_size must be at least 2, got %d", windowSize), nil)
	}
	return &Scorer{Metric: metric, TopN: topN, WindowSize: windowSize}, nil
}

// Score rates every topic of m against the reference texts.
func (s *Scorer) Score(ctx context.Context, m topicmodel.Model, reference topicmodel.Corpus) (topicmodel.Coherence, error) {
	return s.Evaluate(ctx, m.TopicTerms(s.TopN), reference)
}

// ScoreSlice rates one time slice of a sequential model. The reference is
// the whole corpus, not just the slice's documents.
func (s *Scorer) ScoreSlice(ctx context.Context, m topicmodel.SequentialModel, slice int, reference topicmodel.Corpus) (topicmodel.Coherence, error) {
	if slice < 0 || slice >= m.Slices() {
		return topicmodel.Coherence{}, services.Wrap(services.ErrNotFound, "coherence", "score slice",
			fmt.Sprintf("slice %d of %d", slice, m.Slices()), nil)
	}
	return s.Evaluate(ctx, m.SliceTopicTerms(slice, s.TopN), reference)
}

// Evaluate scores explicit topic word lists.
func (s *Scorer) Evaluate(ctx context.Context, topics [][]string, reference topicmodel.Corpus) (topicmodel.Coherence, error) {
	if len(topics) == 0 {
		return topicmodel.Coherence{}, fmt.Errorf("coherence: no topics to score")
	}
	if reference.Len() == 0 {
		return topicmodel.Coherence{}, fmt.Errorf("coherence: empty reference corpus")
	}

	window := s.WindowSize
	if s.Metric == MetricUMass {
		window = 0
	}
	occ, err := count(ctx, reference.Texts, vocabulary(topics), window)
	if err != nil {
		return topicmodel.Coherence{}, err
	}

	perTopic := make([]float64, len(topics))
	for i, words := range topics {
		switch s.Metric {
		case MetricUMass:
			perTopic[i] = uMass(occ, words)
		default:
			perTopic[i] = cv(occ, words)
		}
	}
	return topicmodel.Coherence{
		Metric:   s.Metric,
		Value:    stat.Mean(perTopic, nil),
		PerTopic: perTopic,
		Topics:   topics,
	}, nil
}

func vocabulary(topics [][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, words := range topics {
		for _, w := range words {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}
