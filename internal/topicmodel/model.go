package topicmodel

import (
	"context"

	"topicsweep/internal/corpus"
)

// Corpus is the ordered token view of a preprocessed dataset. The same
// texts serve as training input and as coherence reference texts.
type Corpus struct {
	IDs   []string
	Texts [][]string
}

// NewCorpus builds a Corpus from documents in their current order.
func NewCorpus(docs []corpus.Document) Corpus {
	c := Corpus{IDs: make([]string, len(docs)), Texts: make([][]string, len(docs))}
	for i, doc := range docs {
		c.IDs[i] = doc.ID
		c.Texts[i] = doc.Tokens
	}
	return c
}

// Len is the number of documents.
func (c Corpus) Len() int { return len(c.Texts) }

// Reorder returns a corpus whose i-th document is c's order[i]-th.
func (c Corpus) Reorder(order []int) Corpus {
	out := Corpus{IDs: make([]string, len(order)), Texts: make([][]string, len(order))}
	for i, idx := range order {
		if idx < len(c.IDs) {
			out.IDs[i] = c.IDs[idx]
		}
		out.Texts[i] = c.Texts[idx]
	}
	return out
}

// Slice returns documents [from, to).
func (c Corpus) Slice(from, to int) Corpus {
	out := Corpus{Texts: c.Texts[from:to]}
	if len(c.IDs) >= to {
		out.IDs = c.IDs[from:to]
	}
	return out
}

// TrainOptions configure one independent fit.
type TrainOptions struct {
	Topics               int
	Workers              int
	Iterations           int
	TransformationPasses int
	// OutputPath is the trial artifact directory.
	OutputPath string
}

// SequentialOptions configure one time-sliced fit. Counts are the per-slice
// document counts over a corpus already ordered by slice.
type SequentialOptions struct {
	TrainOptions
	Counts []int
	// SliceWeight blends per-slice word evidence with the global topics.
	SliceWeight float64
}

// Model is a trained topic model.
type Model interface {
	Topics() int
	// TopicTerms returns the n highest-weighted words of every topic.
	TopicTerms(n int) [][]string
	// DocTopics returns one topic distribution per training document.
	DocTopics() [][]float64
	Save(path string) error
}

// SequentialModel is a model with per-slice topic-word distributions.
type SequentialModel interface {
	Model
	Slices() int
	SliceCounts() []int
	SliceTopicTerms(slice, n int) [][]string
}

// Trainer fits an independent model.
type Trainer interface {
	Train(ctx context.Context, c Corpus, opts TrainOptions) (Model, error)
}

// SequentialTrainer fits a time-sliced model in a single run.
type SequentialTrainer interface {
	TrainSequential(ctx context.Context, c Corpus, opts SequentialOptions) (SequentialModel, error)
}

// Loader reads saved artifacts back.
type Loader interface {
	Load(path string) (Model, error)
	LoadSequential(path string) (SequentialModel, error)
}

// Scorer computes topic coherence against reference texts.
type Scorer interface {
	Score(ctx context.Context, m Model, reference Corpus) (Coherence, error)
	ScoreSlice(ctx context.Context, m SequentialModel, slice int, reference Corpus) (Coherence, error)
}
