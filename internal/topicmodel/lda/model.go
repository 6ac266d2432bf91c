package lda

import (
	"fmt"
	"sort"

	"topicsweep/internal/fileutil"
	"topicsweep/internal/services"
	"topicsweep/internal/topicmodel"
)

// Model is a fitted LDA model. Sequential models additionally carry
// per-slice topic-word weights.
type Model struct {
	Vocabulary []string `json:"vocabulary"`
	// TopicWord is topics x vocabulary.
	TopicWord [][]float64 `json:"topic_word"`
	// DocTopic is documents x topics.
	DocTopic [][]float64 `json:"doc_topic"`
	// Counts and SliceTopicWord are only set for sequential models.
	Counts         []int         `json:"slice_counts,omitempty"`
	SliceTopicWord [][][]float64 `json:"slice_topic_word,omitempty"`
}

var (
	_ topicmodel.Model             = (*Model)(nil)
	_ topicmodel.SequentialModel   = (*Model)(nil)
	_ topicmodel.Trainer           = (*Trainer)(nil)
	_ topicmodel.SequentialTrainer = (*Trainer)(nil)
	_ topicmodel.Loader            = Loader{}
)

// Topics is the number of topics.
func (m *Model) Topics() int { return len(m.TopicWord) }

// TopicTerms returns the n heaviest words per topic.
func (m *Model) TopicTerms(n int) [][]string {
	return topTerms(m.TopicWord, m.Vocabulary, n)
}

// DocTopics returns the per-document topic distributions.
func (m *Model) DocTopics() [][]float64 { return m.DocTopic }

// Slices is the number of time slices, zero for an independent model.
func (m *Model) Slices() int { return len(m.SliceTopicWord) }

// SliceCounts returns the document count of every slice.
func (m *Model) SliceCounts() []int { return m.Counts }

// SliceTopicTerms returns the n heaviest words per topic within one slice.
func (m *Model) SliceTopicTerms(slice, n int) [][]string {
	if slice < 0 || slice >= len(m.SliceTopicWord) {
		return nil
	}
	return topTerms(m.SliceTopicWord[slice], m.Vocabulary, n)
}

// Save writes the model as JSON.
func (m *Model) Save(path string) error {
	if err := fileutil.WriteJSONAtomic(path, m); err != nil {
		return fmt.Errorf("save lda model: %w", err)
	}
	return nil
}

// Loader implements topicmodel.Loader for artifacts written by Model.Save.
type Loader struct{}

// Load reads any saved model.
func (Loader) Load(path string) (topicmodel.Model, error) {
	return load(path)
}

// LoadSequential reads a model and requires slice data.
func (Loader) LoadSequential(path string) (topicmodel.SequentialModel, error) {
	m, err := load(path)
	if err != nil {
		return nil, err
	}
	if m.Slices() == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "lda", "load",
			fmt.Sprintf("%s is not a sequential model", path), nil)
	}
	return m, nil
}

func load(path string) (*Model, error) {
	var m Model
	if err := fileutil.ReadJSON(path, &m); err != nil {
		if fileutil.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "lda", "load", path, nil)
		}
		return nil, fmt.Errorf("load lda model %s: %w", path, err)
	}
	for i, row := range m.TopicWord {
		if len(row) != len(m.Vocabulary) {
			return nil, services.CountMismatch(fmt.Sprintf("topic %d weights in %s", i, path), len(m.Vocabulary), len(row))
		}
	}
	return &m, nil
}

func topTerms(weights [][]float64, vocab []string, n int) [][]string {
	out := make([][]string, len(weights))
	for k, row := range weights {
		idx := make([]int, len(row))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			if row[idx[a]] != row[idx[b]] {
				return row[idx[a]] > row[idx[b]]
			}
			return vocab[idx[a]] < vocab[idx[b]]
		})
		limit := n
		if limit > len(idx) || limit <= 0 {
			limit = len(idx)
		}
		terms := make([]string, limit)
		for i := 0; i < limit; i++ {
			terms[i] = vocab[idx[i]]
		}
		out[k] = terms
	}
	return out
}
