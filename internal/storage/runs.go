package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leefowlercu/cymirs/internal/version"
)

// ErrRunNotFound is returned when a run id is not in the history.
var ErrRunNotFound = errors.New("run not found")

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one recorded job run.
type Run struct {
	ID         string
	JobPath    string
	JobHash    string
	Version    string
	Status     string
	ExitCode   int
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Counts     RunCounts
}

// RunCounts are the region counts reported by a finished run.
type RunCounts struct {
	Total       int
	Significant int
	Up          int
	Down        int
}

// Duration returns how long the run took, or zero if it has not finished.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunOutcome is the final state of a run passed to FinishRun.
type RunOutcome struct {
	Status   string
	ExitCode int
	Err      error
	Counts   RunCounts
}

// StartRun records a new run of the job file at jobPath by this cymirs
// build and returns its id.
func (s *Storage) StartRun(ctx context.Context, jobPath, jobHash string, startedAt time.Time) (string, error) {
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, job_path, job_hash, version, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, jobPath, nullString(jobHash), version.Get().Short(), StatusRunning, startedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run start; %w", err)
	}

	return id, nil
}

// FinishRun records the outcome of run id.
func (s *Storage) FinishRun(ctx context.Context, id string, finishedAt time.Time, outcome RunOutcome) error {
	var errText string
	if outcome.Err != nil {
		errText = outcome.Err.Error()
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE runs
		 SET status = ?, exit_code = ?, error = ?, finished_at = ?,
		     total = ?, significant = ?, up = ?, down = ?
		 WHERE id = ?`,
		outcome.Status, outcome.ExitCode, nullString(errText), finishedAt.UTC(),
		outcome.Counts.Total, outcome.Counts.Significant, outcome.Counts.Up, outcome.Counts.Down,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to record run outcome; %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected; %w", err)
	}
	if rows == 0 {
		return ErrRunNotFound
	}

	return nil
}

const runColumns = `id, job_path, job_hash, version, status, exit_code, error, started_at, finished_at,
	total, significant, up, down`

// GetRun returns the run with the given id.
func (s *Storage) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`,
		id,
	)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run; %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, most recent first. A limit of zero or
// less returns every run.
func (s *Storage) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs; %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run; %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs; %w", err)
	}

	return runs, nil
}

// PruneRuns deletes all but the keep most recent runs and returns the
// number deleted.
func (s *Storage) PruneRuns(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs; %w", err)
	}

	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		r          Run
		jobHash    sql.NullString
		ver        sql.NullString
		errText    sql.NullString
		finishedAt sql.NullTime
	)

	err := row.Scan(
		&r.ID, &r.JobPath, &jobHash, &ver, &r.Status, &r.ExitCode, &errText,
		&r.StartedAt, &finishedAt,
		&r.Counts.Total, &r.Counts.Significant, &r.Counts.Up, &r.Counts.Down,
	)
	if err != nil {
		return nil, err
	}

	r.JobHash = jobHash.String
	r.Version = ver.String
	r.Error = errText.String
	if finishedAt.Valid {
		t := finishedAt.Time
		r.FinishedAt = &t
	}

	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
