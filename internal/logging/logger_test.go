package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicsweep/internal/logging"
	"topicsweep/internal/services"
)

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	require.NoError(t, err)

	logging.NewComponentLogger(logger, "sweep").Info("topic count complete",
		logging.Int(logging.FieldTopics, 5),
		logging.String("note", "two words"),
	)

	line := buf.String()
	assert.Contains(t, line, "INFO sweep: topic count complete")
	assert.Contains(t, line, "topics=5")
	assert.Contains(t, line, `note="two words"`)
	assert.NotContains(t, line, ".go:", "info logs should not carry source")
}

func TestJSONLoggerUsesStableKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &buf})
	require.NoError(t, err)

	logger.Warn("trial failed", logging.Error(errors.New("boom")))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "warn", payload["level"])
	assert.Equal(t, "trial failed", payload["msg"])
	assert.Equal(t, "boom", payload["error"])
	assert.Contains(t, payload, "ts")
	assert.Contains(t, payload, "source")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml"})
	require.Error(t, err)
}

func TestWithContextAddsSweepFields(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	require.NoError(t, err)

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithExperiment(ctx, "news")
	ctx = services.WithTopics(ctx, 9)
	ctx = services.WithTrial(ctx, 2)
	logging.WithContext(ctx, base).Info("trial complete")

	for _, want := range []string{"run_id=run-1", "experiment=news", "topics=9", "trial=2"} {
		assert.Contains(t, buf.String(), want)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	require.NoError(t, err)

	logging.WarnWithContext(logger, "slice skipped", "slice_score_failed", logging.Int(logging.FieldSlice, 3))
	assert.Contains(t, buf.String(), "event_type=slice_score_failed")
	assert.Contains(t, buf.String(), "impact=")
	assert.Contains(t, buf.String(), "slice=3")
}

func TestOpenRunLogStampsRunID(t *testing.T) {
	dir := t.TempDir()
	runLog, err := logging.OpenRunLog(dir, "news/2021", "run-42", "info")
	require.NoError(t, err)

	logger := logging.TeeLogger(logging.NewNop(), runLog.Handler)
	logger.Info("sweep started")
	require.NoError(t, runLog.Close())

	assert.Equal(t, dir, filepath.Dir(runLog.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(runLog.Path), "sweep-news_2021-"))
	content, err := os.ReadFile(runLog.Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"run_id":"run-42"`)
	assert.Contains(t, string(content), "sweep started")
}

func TestCleanupOldLogsRemovesExpiredMatches(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "sweep-old.log")
	fresh := filepath.Join(dir, "sweep-new.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	past := time.Now().AddDate(0, 0, -40)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(other, past, past))

	removed := logging.CleanupOldLogs(logging.NewNop(), dir, logging.RunLogPattern, 30)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)

	assert.Zero(t, logging.CleanupOldLogs(nil, dir, logging.RunLogPattern, 0))
}

func TestProgressSampler(t *testing.T) {
	s := logging.NewProgressSampler(25)
	assert.True(t, s.Observe("train", 0, 8), "first observation logs")
	assert.False(t, s.Observe("train", 1, 8), "12.5% stays in first bucket")
	assert.True(t, s.Observe("train", 2, 8), "25% crosses a bucket")
	assert.False(t, s.Observe("train", 3, 8))
	assert.True(t, s.Observe("score", 3, 8), "phase change logs")
	assert.True(t, s.Observe("score", 8, 8))
	assert.False(t, s.Observe("score", 9, 8), "overshoot clamps to 100%")

	var nilSampler *logging.ProgressSampler
	assert.True(t, nilSampler.Observe("any", 1, 2))
	assert.InDelta(t, 50.0, logging.Percent(1, 2), 1e-9)
	assert.Zero(t, logging.Percent(1, 0))
}
