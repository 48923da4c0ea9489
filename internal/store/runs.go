package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timeLayout keeps a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// TierRecord is the stored summary of one tier.
type TierRecord struct {
	Confidence int
	Matched    int
	RemainingA int
	RemainingB int
}

// Run is one entry of the run history.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	PlanPath     string
	SourceA      string
	SourceB      string
	RowsA        int
	RowsB        int
	Matched      int
	LeftoverA    int
	LeftoverB    int
	Output       string
	Scorer       string
	AllowSharedB bool
	ErrorMessage string
	Tiers        []TierRecord
}

// Duration returns the elapsed time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// RecordRun inserts run and its tiers. A missing ID is generated and
// returned.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if strings.TrimSpace(run.ID) == "" {
		run.ID = NewRunID()
	} else if _, err := uuid.Parse(run.ID); err != nil {
		return "", fmt.Errorf("run id %q: %w", run.ID, err)
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}
	if run.Scorer == "" {
		run.Scorer = "ratio"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
        id, started_at, finished_at, plan_path, source_a, source_b,
        rows_a, rows_b, matched, leftover_a, leftover_b, output, error_message,
        scorer, allow_shared_b
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.PlanPath, run.SourceA, run.SourceB,
		run.RowsA, run.RowsB, run.Matched, run.LeftoverA, run.LeftoverB,
		run.Output, run.ErrorMessage, run.Scorer, boolToInt(run.AllowSharedB),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	for i, tier := range run.Tiers {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO run_tiers (run_id, position, confidence, matched, remaining_a, remaining_b) VALUES (?, ?, ?, ?, ?, ?)",
			run.ID, i, tier.Confidence, tier.Matched, tier.RemainingA, tier.RemainingB,
		); err != nil {
			return "", fmt.Errorf("insert run tier %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return run.ID, nil
}

const runColumns = `id, started_at, finished_at, plan_path, source_a, source_b,
    rows_a, rows_b, matched, leftover_a, leftover_b, output, error_message, scorer, allow_shared_b`

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	for i := range runs {
		if runs[i].Tiers, err = s.runTiers(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// GetRun returns a single run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	if run.Tiers, err = s.runTiers(ctx, id); err != nil {
		return Run{}, err
	}
	return run, nil
}

// DeleteRunsBefore removes runs that started before cutoff.
func (s *Store) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) runTiers(ctx context.Context, id string) ([]TierRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT confidence, matched, remaining_a, remaining_b FROM run_tiers WHERE run_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("list run tiers: %w", err)
	}
	defer rows.Close()
	var tiers []TierRecord
	for rows.Next() {
		var t TierRecord
		if err := rows.Scan(&t.Confidence, &t.Matched, &t.RemainingA, &t.RemainingB); err != nil {
			return nil, fmt.Errorf("scan run tier: %w", err)
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run               Run
		started, finished string
		shared            int
	)
	err := scanner.Scan(
		&run.ID, &started, &finished, &run.PlanPath, &run.SourceA, &run.SourceB,
		&run.RowsA, &run.RowsB, &run.Matched, &run.LeftoverA, &run.LeftoverB,
		&run.Output, &run.ErrorMessage, &run.Scorer, &shared,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	run.AllowSharedB = shared != 0
	return run, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
