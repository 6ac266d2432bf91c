package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	experimentKey contextKey = "experiment"
	topicsKey     contextKey = "topics"
	trialKey      contextKey = "trial"
)

// WithRunID annotates context with the sweep run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the sweep run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithExperiment annotates context with the experiment name.
func WithExperiment(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, experimentKey, name)
}

// ExperimentFromContext returns the experiment name if present.
func ExperimentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(experimentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTopics annotates context with the topic count being trained.
func WithTopics(ctx context.Context, topics int) context.Context {
	return context.WithValue(ctx, topicsKey, topics)
}

// TopicsFromContext extracts the topic count if present.
func TopicsFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(topicsKey).(int)
	return v, ok
}

// WithTrial annotates context with the trial index.
func WithTrial(ctx context.Context, trial int) context.Context {
	return context.WithValue(ctx, trialKey, trial)
}

// TrialFromContext extracts the trial index if present.
func TrialFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(trialKey).(int)
	return v, ok
}
