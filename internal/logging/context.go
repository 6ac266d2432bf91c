package logging

import (
	"context"
	"log/slog"

	"topicsweep/internal/services"
)

// Standard structured logging keys.
const (
	FieldComponent  = "component"
	FieldRunID      = "run_id"
	FieldExperiment = "experiment"
	FieldTopics     = "topics"
	FieldTrial      = "trial"
	FieldSlice      = "slice"
	FieldEventType  = "event_type"
	FieldImpact     = "impact"
	FieldError      = "error"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if name, ok := services.ExperimentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldExperiment, name))
	}
	if k, ok := services.TopicsFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldTopics, k))
	}
	if trial, ok := services.TrialFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldTrial, trial))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
