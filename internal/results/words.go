package results

import (
	"fmt"
	"path/filepath"

	"topicsweep/internal/fileutil"
	"topicsweep/internal/logging"
	"topicsweep/internal/selector"
	"topicsweep/internal/services"
	"topicsweep/internal/store"
	"topicsweep/internal/topicmodel"
)

// TopicWords are the top words of one topic. Coherence is nil when no
// coherence artifact was saved for the model.
type TopicWords struct {
	Topic     int      `json:"topic"`
	Words     []string `json:"words"`
	Coherence *float64 `json:"coherence,omitempty"`
}

// ModelWords describes the selected trial of an independent sweep.
type ModelWords struct {
	Experiment string       `json:"experiment"`
	Topics     int          `json:"topics"`
	Trial      int          `json:"trial"`
	Path       string       `json:"path"`
	Coherence  float64      `json:"coherence"`
	TopicWords []TopicWords `json:"topic_words"`
}

// SliceWords are the topics of one time slice of a sequential model.
type SliceWords struct {
	Slice      int          `json:"slice"`
	Label      string       `json:"label"`
	Coherence  float64      `json:"coherence"`
	TopicWords []TopicWords `json:"topic_words"`
}

// SequentialWords describes the sequential model of one topic count.
type SequentialWords struct {
	Experiment   string       `json:"experiment"`
	Topics       int          `json:"topics"`
	Path         string       `json:"path"`
	AvgCoherence float64      `json:"avg_coherence"`
	Slices       []SliceWords `json:"slices"`
}

// WordsQuery selects what TopWords and SliceWords return. Nil pointers mean
// "best" for Trial and "all" for Slice and OnlyTopic.
type WordsQuery struct {
	Experiment string
	Topics     int
	Trial      *int
	Slice      *int
	OnlyTopic  *int
	// N is the number of words per topic.
	N int
}

// TopWords loads the selected trial of an independent sweep and returns its
// top words, with per-topic coherence when the coherence artifact exists.
func (r *Reader) TopWords(loader topicmodel.Loader, q WordsQuery) (ModelWords, error) {
	rec, err := r.store.Get(q.Experiment, q.Topics)
	if err != nil {
		return ModelWords{}, err
	}
	if rec.Mode() != store.ModeStatic {
		return ModelWords{}, services.Wrap(services.ErrConfiguration, "results", "top words",
			fmt.Sprintf("%s/%dtopics is sequential; query slices instead", q.Experiment, q.Topics), nil)
	}
	trial, err := selector.Select(rec, q.Trial)
	if err != nil {
		return ModelWords{}, err
	}
	model, err := loader.Load(filepath.Join(trial.Path, store.ModelFile))
	if err != nil {
		return ModelWords{}, err
	}
	perTopic, err := r.perTopic(filepath.Join(trial.Path, store.CoherenceFile), model.Topics())
	if err != nil {
		return ModelWords{}, err
	}
	words, err := topicWords(model.TopicTerms(q.N), perTopic, q.OnlyTopic)
	if err != nil {
		return ModelWords{}, err
	}
	return ModelWords{
		Experiment: q.Experiment,
		Topics:     q.Topics,
		Trial:      trial.Index,
		Path:       trial.Path,
		Coherence:  trial.Coherence,
		TopicWords: words,
	}, nil
}

// SliceWords loads the sequential model of a topic count and returns the top
// words of each recorded slice.
func (r *Reader) SliceWords(loader topicmodel.Loader, q WordsQuery) (SequentialWords, error) {
	rec, err := r.store.Get(q.Experiment, q.Topics)
	if err != nil {
		return SequentialWords{}, err
	}
	if rec.Mode() != store.ModeSequential {
		return SequentialWords{}, services.Wrap(services.ErrConfiguration, "results", "slice words",
			fmt.Sprintf("%s/%dtopics is not sequential", q.Experiment, q.Topics), nil)
	}
	path := r.store.SequentialModelPath(q.Experiment, q.Topics)
	model, err := loader.LoadSequential(path)
	if err != nil {
		return SequentialWords{}, err
	}
	out := SequentialWords{
		Experiment:   q.Experiment,
		Topics:       q.Topics,
		Path:         path,
		AvgCoherence: rec.Aggregated.AvgCoherence,
	}
	for _, s := range rec.Slices {
		if q.Slice != nil && s.Index != *q.Slice {
			continue
		}
		if s.Index >= model.Slices() {
			return SequentialWords{}, services.CountMismatch("slices in sequential model", len(rec.Slices), model.Slices())
		}
		var perTopic []float64
		if s.CoherencePath != "" {
			if perTopic, err = r.perTopic(s.CoherencePath, model.Topics()); err != nil {
				return SequentialWords{}, err
			}
		}
		words, err := topicWords(model.SliceTopicTerms(s.Index, q.N), perTopic, q.OnlyTopic)
		if err != nil {
			return SequentialWords{}, err
		}
		out.Slices = append(out.Slices, SliceWords{
			Slice:      s.Index,
			Label:      s.StartTime,
			Coherence:  s.Coherence,
			TopicWords: words,
		})
	}
	if q.Slice != nil && len(out.Slices) == 0 {
		return SequentialWords{}, services.Wrap(services.ErrNotFound, "results", "slice words",
			fmt.Sprintf("slice %d not in record", *q.Slice), nil)
	}
	return out, nil
}

// perTopic reads the per-topic coherence saved next to a model. A missing
// artifact is not an error; the result is nil.
func (r *Reader) perTopic(path string, topics int) ([]float64, error) {
	if !fileutil.FileExists(path) {
		r.logger.Info("no coherence artifact saved for model",
			logging.String(logging.FieldEventType, "coherence_missing"),
			logging.String("path", path),
		)
		return nil, nil
	}
	c, err := topicmodel.LoadCoherence(path)
	if err != nil {
		return nil, err
	}
	if len(c.PerTopic) != topics {
		return nil, services.CountMismatch("per-topic coherence values", topics, len(c.PerTopic))
	}
	return c.PerTopic, nil
}

func topicWords(terms [][]string, perTopic []float64, only *int) ([]TopicWords, error) {
	if only != nil && (*only < 0 || *only >= len(terms)) {
		return nil, services.Wrap(services.ErrNotFound, "results", "top words",
			fmt.Sprintf("topic %d out of range [0, %d)", *only, len(terms)), nil)
	}
	var out []TopicWords
	for k, words := range terms {
		if only != nil && k != *only {
			continue
		}
		tw := TopicWords{Topic: k, Words: words}
		if perTopic != nil {
			v := perTopic[k]
			tw.Coherence = &v
		}
		out = append(out, tw)
	}
	return out, nil
}
