package index_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"topicsweep/internal/index"
	"topicsweep/internal/services"
	"topicsweep/internal/testsupport"
)

func TestRunLifecycle(t *testing.T) {
	idx := testsupport.MustOpenIndex(t, filepath.Join(t.TempDir(), "index.db"))
	ctx := context.Background()

	older := index.Run{ID: "run-1", Experiment: "covid", Mode: "lda", MinTopics: 2, MaxTopics: 4, Trials: 3,
		StartedAt: time.Now().Add(-time.Hour)}
	newer := index.Run{ID: "run-2", Experiment: "covid", Mode: "ldaseq", MinTopics: 5, MaxTopics: 5, Trials: 1}
	for _, run := range []index.Run{older, newer} {
		if err := idx.BeginRun(ctx, run); err != nil {
			t.Fatalf("BeginRun(%s): %v", run.ID, err)
		}
	}
	if err := idx.FinishRun(ctx, "run-1", index.StatusCompleted, nil); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if err := idx.FinishRun(ctx, "run-2", index.StatusFailed, errors.New("boom")); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := idx.Runs(ctx, "covid", 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-2" || runs[0].Status != index.StatusFailed || runs[0].ErrorMessage != "boom" {
		t.Fatalf("unexpected latest run: %#v", runs[0])
	}
	if runs[1].Status != index.StatusCompleted || runs[1].FinishedAt.IsZero() {
		t.Fatalf("unexpected older run: %#v", runs[1])
	}

	limited, err := idx.Runs(ctx, "", 1)
	if err != nil {
		t.Fatalf("Runs with limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d runs", len(limited))
	}
}

func TestRecordsAndBest(t *testing.T) {
	idx := testsupport.MustOpenIndex(t, filepath.Join(t.TempDir(), "index.db"))
	ctx := context.Background()

	summaries := []index.Summary{
		{Experiment: "covid", Topics: 4, AvgCoherence: 0.40, Points: 3},
		{Experiment: "covid", Topics: 2, AvgCoherence: 0.45, Points: 3},
		{Experiment: "covid", Topics: 3, AvgCoherence: 0.45, Points: 3},
		{Experiment: "other", Topics: 2, AvgCoherence: 0.99, Points: 1},
	}
	for _, s := range summaries {
		if err := idx.UpsertRecord(ctx, s); err != nil {
			t.Fatalf("UpsertRecord: %v", err)
		}
	}
	if err := idx.UpsertRecord(ctx, index.Summary{Experiment: "covid", Topics: 4, AvgCoherence: 0.30, Points: 2, RunID: "r"}); err != nil {
		t.Fatalf("UpsertRecord replace: %v", err)
	}

	records, err := idx.Records(ctx, "covid")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 3 || records[0].Topics != 2 || records[2].Topics != 4 {
		t.Fatalf("unexpected records: %#v", records)
	}
	if records[2].AvgCoherence != 0.30 || records[2].RunID != "r" {
		t.Fatalf("expected upsert to replace topic 4, got %#v", records[2])
	}

	best, err := idx.Best(ctx, "covid")
	if err != nil {
		t.Fatalf("Best: %v", err)
	}
	if best.Topics != 2 {
		t.Fatalf("expected tie to go to the smaller topic count, got %d", best.Topics)
	}

	if _, err := idx.Best(ctx, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.db")
	idx, err := index.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := idx.BeginRun(context.Background(), index.Run{ID: "a", Experiment: "e", Mode: "lda"}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenIndex(t, path)
	runs, err := reopened.Runs(context.Background(), "e", 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != index.StatusRunning {
		t.Fatalf("unexpected runs after reopen: %#v", runs)
	}
}
