// Package lda trains latent Dirichlet allocation models with the nlp
// package's collapsed Gibbs sampler and keeps the fitted matrices as plain
// JSON artifacts.
//
// Sequential models are a single global fit over the slice-ordered corpus.
// Each slice then re-estimates its topic-word weights from the topic
// mixtures of its own documents, blended with the global topics.
package lda

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/e-gun/nlp"
	"gonum.org/v1/gonum/mat"

	"topicsweep/internal/logging"
	"topicsweep/internal/topicmodel"
)

const (
	defaultIterations           = 50
	defaultTransformationPasses = 25
)

// Trainer implements topicmodel.Trainer and topicmodel.SequentialTrainer.
type Trainer struct {
	// StopWords are dropped by the vectoriser in addition to whatever the
	// preprocessor already removed.
	StopWords []string
	Logger    *slog.Logger
}

// NewTrainer returns a trainer that logs through logger.
func NewTrainer(logger *slog.Logger, stopWords []string) *Trainer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Trainer{StopWords: stopWords, Logger: logging.NewComponentLogger(logger, "lda")}
}

// Train fits an independent model.
func (t *Trainer) Train(ctx context.Context, c topicmodel.Corpus, opts topicmodel.TrainOptions) (topicmodel.Model, error) {
	m, _, err := t.fit(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// fitted is the raw output of one pipeline run.
type fitted struct {
	vocab map[string]int
	// theta is documents x topics.
	theta *mat.Dense
}

func (t *Trainer) fit(ctx context.Context, c topicmodel.Corpus, opts topicmodel.TrainOptions) (*Model, fitted, error) {
	if opts.Topics < 1 {
		return nil, fitted{}, fmt.Errorf("lda: topic count must be positive, got %d", opts.Topics)
	}
	if c.Len() == 0 {
		return nil, fitted{}, fmt.Errorf("lda: empty corpus")
	}
	if err := ctx.Err(); err != nil {
		return nil, fitted{}, err
	}

	docs := make([]string, c.Len())
	for i, tokens := range c.Texts {
		docs[i] = joinTokens(tokens)
	}

	vectoriser := nlp.NewCountVectoriser()
	vectoriser.Tokeniser = newTokenTokeniser(t.StopWords)
	model := nlp.NewLatentDirichletAllocation(opts.Topics)
	if opts.Workers > 0 {
		model.Processes = opts.Workers
	}
	model.Iterations = defaultIterations
	if opts.Iterations > 0 {
		model.Iterations = opts.Iterations
	}
	model.TransformationPasses = defaultTransformationPasses
	if opts.TransformationPasses > 0 {
		model.TransformationPasses = opts.TransformationPasses
	}

	t.logger().Debug("lda fit starting",
		logging.Int(logging.FieldTopics, opts.Topics),
		logging.Int("documents", len(docs)),
		logging.Int("iterations", model.Iterations),
	)

	docsOverTopics, err := fitTransform(nlp.NewPipeline(vectoriser, model), docs)
	if err != nil {
		return nil, fitted{}, err
	}
	if len(vectoriser.Vocabulary) == 0 {
		return nil, fitted{}, fmt.Errorf("lda: corpus has no vocabulary after vectorising")
	}
	if err := ctx.Err(); err != nil {
		return nil, fitted{}, err
	}

	vocab := make([]string, len(vectoriser.Vocabulary))
	for word, idx := range vectoriser.Vocabulary {
		vocab[idx] = word
	}

	// nlp returns topics x documents and topics x words.
	theta := &mat.Dense{}
	theta.CloneFrom(docsOverTopics.T())

	m := &Model{
		Vocabulary: vocab,
		TopicWord:  rows(model.Components()),
		DocTopic:   rows(theta),
	}
	return m, fitted{vocab: vectoriser.Vocabulary, theta: theta}, nil
}

// fitTransform converts a panic inside the sampler into an error so a
// degenerate trial fails alone.
func fitTransform(p *nlp.Pipeline, docs []string) (result mat.Matrix, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lda: fit panicked: %v", r)
		}
	}()
	result, err = p.FitTransform(docs...)
	if err != nil {
		return nil, fmt.Errorf("lda: fit: %w", err)
	}
	return result, nil
}

func (t *Trainer) logger() *slog.Logger {
	if t.Logger == nil {
		return logging.NewNop()
	}
	return t.Logger
}

func rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, m)
	}
	return out
}
