package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"topicsweep/internal/services"
)

// Status is the lifecycle state of a sweep run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is one sweep invocation.
type Run struct {
	ID           string    `json:"run_id"`
	Experiment   string    `json:"experiment"`
	Mode         string    `json:"mode"`
	MinTopics    int       `json:"min_topics"`
	MaxTopics    int       `json:"max_topics"`
	Trials       int       `json:"trials"`
	Status       Status    `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitzero"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Summary is the aggregated view of one stored record.
type Summary struct {
	Experiment        string    `json:"experiment"`
	Topics            int       `json:"topics"`
	RunID             string    `json:"run_id"`
	AvgCoherence      float64   `json:"avg_coherence"`
	CoherenceStdev    float64   `json:"coherence_stdev"`
	CoherenceVariance float64   `json:"coherence_variance"`
	Points            int       `json:"points"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BeginRun registers a run in the running state.
func (i *Index) BeginRun(ctx context.Context, run Run) error {
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	err := i.exec(ctx,
		`INSERT INTO runs (run_id, experiment, mode, min_topics, max_topics, trials, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Experiment, run.Mode, run.MinTopics, run.MaxTopics, run.Trials,
		StatusRunning, started.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun records the final status of a run.
func (i *Index) FinishRun(ctx context.Context, runID string, status Status, runErr error) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	err := i.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, error_message = ? WHERE run_id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano), nullableString(message), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// UpsertRecord stores the summary of a freshly written record.
func (i *Index) UpsertRecord(ctx context.Context, s Summary) error {
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	err := i.exec(ctx,
		`INSERT INTO records (experiment, topics, run_id, avg_coherence, coherence_stdev, coherence_variance, points, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(experiment, topics) DO UPDATE SET
            run_id = excluded.run_id,
            avg_coherence = excluded.avg_coherence,
            coherence_stdev = excluded.coherence_stdev,
            coherence_variance = excluded.coherence_variance,
            points = excluded.points,
            updated_at = excluded.updated_at`,
		s.Experiment, s.Topics, nullableString(s.RunID), s.AvgCoherence, s.CoherenceStdev,
		s.CoherenceVariance, s.Points, updated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// Runs lists the most recent runs first. A limit <= 0 returns all runs.
func (i *Index) Runs(ctx context.Context, experiment string, limit int) ([]Run, error) {
	query := `SELECT run_id, experiment, mode, min_topics, max_topics, trials, status,
                     started_at, finished_at, error_message FROM runs`
	var args []any
	if experiment != "" {
		query += " WHERE experiment = ?"
		args = append(args, experiment)
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started           string
			finished, message sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Experiment, &run.Mode, &run.MinTopics, &run.MaxTopics,
			&run.Trials, &run.Status, &started, &finished, &message); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		if finished.Valid {
			run.FinishedAt = parseTime(finished.String)
		}
		run.ErrorMessage = message.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Records lists the summaries of an experiment ordered by topic count.
func (i *Index) Records(ctx context.Context, experiment string) ([]Summary, error) {
	rows, err := i.db.QueryContext(ctx,
		`SELECT experiment, topics, run_id, avg_coherence, coherence_stdev, coherence_variance, points, updated_at
         FROM records WHERE experiment = ? ORDER BY topics`, experiment)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Best returns the summary with the highest mean coherence, ties to the
// smallest topic count.
func (i *Index) Best(ctx context.Context, experiment string) (Summary, error) {
	row := i.db.QueryRowContext(ctx,
		`SELECT experiment, topics, run_id, avg_coherence, coherence_stdev, coherence_variance, points, updated_at
         FROM records WHERE experiment = ? ORDER BY avg_coherence DESC, topics ASC LIMIT 1`, experiment)
	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, services.Wrap(services.ErrNotFound, "index", "best", experiment, nil)
	}
	return s, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (Summary, error) {
	var (
		s       Summary
		runID   sql.NullString
		updated string
	)
	if err := row.Scan(&s.Experiment, &s.Topics, &runID, &s.AvgCoherence, &s.CoherenceStdev,
		&s.CoherenceVariance, &s.Points, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, err
		}
		return Summary{}, fmt.Errorf("scan record: %w", err)
	}
	s.RunID = runID.String
	s.UpdatedAt = parseTime(updated)
	return s, nil
}
