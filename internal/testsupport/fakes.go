package testsupport

import (
	"context"
	"fmt"
	"sync"

	"topicsweep/internal/fileutil"
	"topicsweep/internal/topicmodel"
)

// FakeModel is a trained model stand-in with fixed topic terms.
type FakeModel struct {
	K      int      `json:"topics"`
	Call   int      `json:"call"`
	Docs   int      `json:"docs"`
	Counts []int    `json:"counts,omitempty"`
	Terms  []string `json:"terms"`
}

func (m *FakeModel) Topics() int { return m.K }

func (m *FakeModel) TopicTerms(n int) [][]string {
	out := make([][]string, m.K)
	for k := range out {
		terms := m.Terms
		if n > 0 && n < len(terms) {
			terms = terms[:n]
		}
		out[k] = terms
	}
	return out
}

func (m *FakeModel) DocTopics() [][]float64 {
	out := make([][]float64, m.Docs)
	for d := range out {
		row := make([]float64, m.K)
		row[d%m.K] = 1
		out[d] = row
	}
	return out
}

func (m *FakeModel) Save(path string) error { return fileutil.WriteJSONAtomic(path, m) }

func (m *FakeModel) Slices() int { return len(m.Counts) }

func (m *FakeModel) SliceCounts() []int { return m.Counts }

func (m *FakeModel) SliceTopicTerms(_, n int) [][]string { return m.TopicTerms(n) }

// FakeTrainer records calls and returns FakeModels. Fail, when set, decides
// per call whether training fails.
type FakeTrainer struct {
	Fail func(topics int, outputPath string) error

	mu              sync.Mutex
	calls           int
	sequentialCalls int
	lastCounts      []int
	outputs         []string
}

func (f *FakeTrainer) Train(ctx context.Context, c topicmodel.Corpus, opts topicmodel.TrainOptions) (topicmodel.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.outputs = append(f.outputs, opts.OutputPath)
	f.mu.Unlock()

	if f.Fail != nil {
		if err := f.Fail(opts.Topics, opts.OutputPath); err != nil {
			return nil, err
		}
	}
	return &FakeModel{K: opts.Topics, Call: call, Docs: c.Len(), Terms: []string{"vaccine", "dose", "market"}}, nil
}

func (f *FakeTrainer) TrainSequential(ctx context.Context, c topicmodel.Corpus, opts topicmodel.SequentialOptions) (topicmodel.SequentialModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.sequentialCalls++
	call := f.sequentialCalls
	f.lastCounts = append([]int(nil), opts.Counts...)
	f.outputs = append(f.outputs, opts.OutputPath)
	f.mu.Unlock()

	if f.Fail != nil {
		if err := f.Fail(opts.Topics, opts.OutputPath); err != nil {
			return nil, err
		}
	}
	return &FakeModel{K: opts.Topics, Call: call, Docs: c.Len(), Counts: opts.Counts, Terms: []string{"vaccine", "dose", "market"}}, nil
}

// Calls returns the number of independent and sequential training calls.
func (f *FakeTrainer) Calls() (independent, sequential int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.sequentialCalls
}

// LastCounts returns the slice counts of the latest sequential call.
func (f *FakeTrainer) LastCounts() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.lastCounts...)
}

// Outputs returns every output path handed to the trainer.
func (f *FakeTrainer) Outputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.outputs...)
}

// FakeScorer returns deterministic coherence values. Value defaults to
// 0.1*topics + 0.01*call; SliceValue to 0.1*topics + 0.01*slice.
type FakeScorer struct {
	Value      func(topics, call int) float64
	SliceValue func(topics, slice int) float64
	FailSlice  map[int]bool
}

func (s *FakeScorer) Score(ctx context.Context, m topicmodel.Model, _ topicmodel.Corpus) (topicmodel.Coherence, error) {
	if err := ctx.Err(); err != nil {
		return topicmodel.Coherence{}, err
	}
	call := 0
	if fm, ok := m.(*FakeModel); ok {
		call = fm.Call
	}
	value := 0.1*float64(m.Topics()) + 0.01*float64(call)
	if s.Value != nil {
		value = s.Value(m.Topics(), call)
	}
	return coherenceFor(m, value), nil
}

func (s *FakeScorer) ScoreSlice(ctx context.Context, m topicmodel.SequentialModel, slice int, _ topicmodel.Corpus) (topicmodel.Coherence, error) {
	if err := ctx.Err(); err != nil {
		return topicmodel.Coherence{}, err
	}
	if s.FailSlice[slice] {
		return topicmodel.Coherence{}, fmt.Errorf("fake scorer: slice %d failed", slice)
	}
	value := 0.1*float64(m.Topics()) + 0.01*float64(slice)
	if s.SliceValue != nil {
		value = s.SliceValue(m.Topics(), slice)
	}
	return coherenceFor(m, value), nil
}

func coherenceFor(m topicmodel.Model, value float64) topicmodel.Coherence {
	perTopic := make([]float64, m.Topics())
	for i := range perTopic {
		perTopic[i] = value
	}
	return topicmodel.Coherence{Metric: "fake", Value: value, PerTopic: perTopic, Topics: m.TopicTerms(0)}
}
