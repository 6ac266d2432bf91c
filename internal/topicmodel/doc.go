// Package topicmodel defines the narrow ports the sweep uses to train and
// score topic models. Inference lives behind Trainer and SequentialTrainer;
// coherence behind Scorer. Concrete backends live in subpackages.
package topicmodel
