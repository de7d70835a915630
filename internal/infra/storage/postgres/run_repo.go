package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/minhvo/spsweep/internal/core/domain"
)

// RunRepo implements storage.RunRepository using PostgreSQL.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new PostgreSQL run repository.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// SaveRun persists a finished run.
func (r *RunRepo) SaveRun(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO runs (id, mode, report_only, sites_total, sites_processed,
			lists_processed, qualifying, acted_on, failures, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		string(run.Mode),
		run.ReportOnly,
		run.SitesTotal,
		run.SitesProcessed,
		run.ListsProcessed,
		run.Qualifying,
		run.ActedOn,
		run.Failures,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// RecordFailure persists one skipped unit.
func (r *RunRepo) RecordFailure(ctx context.Context, f *domain.RunFailure) error {
	query := `
		INSERT INTO run_failures (run_id, site_url, list_title, item_id, error_msg, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		f.RunID, f.SiteURL, f.ListTitle, f.ItemID, f.Error, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (r *RunRepo) RecentRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	query := `
		SELECT id, mode, report_only, sites_total, sites_processed,
			lists_processed, qualifying, acted_on, failures, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var rows []struct {
		ID             string    `db:"id"`
		Mode           string    `db:"mode"`
		ReportOnly     bool      `db:"report_only"`
		SitesTotal     int64     `db:"sites_total"`
		SitesProcessed int64     `db:"sites_processed"`
		ListsProcessed int64     `db:"lists_processed"`
		Qualifying     int64     `db:"qualifying"`
		ActedOn        int64     `db:"acted_on"`
		Failures       int64     `db:"failures"`
		StartedAt      time.Time `db:"started_at"`
		FinishedAt     time.Time `db:"finished_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	runs := make([]*domain.Run, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, &domain.Run{
			ID:             row.ID,
			Mode:           domain.SweepMode(row.Mode),
			ReportOnly:     row.ReportOnly,
			SitesTotal:     row.SitesTotal,
			SitesProcessed: row.SitesProcessed,
			ListsProcessed: row.ListsProcessed,
			Qualifying:     row.Qualifying,
			ActedOn:        row.ActedOn,
			Failures:       row.Failures,
			StartedAt:      row.StartedAt,
			FinishedAt:     row.FinishedAt,
		})
	}
	return runs, nil
}

// FailuresForRun returns all failures recorded for one run.
func (r *RunRepo) FailuresForRun(ctx context.Context, runID string) ([]*domain.RunFailure, error) {
	query := `
		SELECT run_id, site_url, list_title, item_id, error_msg, created_at
		FROM run_failures
		WHERE run_id = $1
		ORDER BY created_at ASC
	`

	var rows []struct {
		RunID     string    `db:"run_id"`
		SiteURL   string    `db:"site_url"`
		ListTitle string    `db:"list_title"`
		ItemID    int       `db:"item_id"`
		ErrorMsg  string    `db:"error_msg"`
		CreatedAt time.Time `db:"created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, fmt.Errorf("failed to query run failures: %w", err)
	}

	failures := make([]*domain.RunFailure, 0, len(rows))
	for _, row := range rows {
		failures = append(failures, &domain.RunFailure{
			RunID:     row.RunID,
			SiteURL:   row.SiteURL,
			ListTitle: row.ListTitle,
			ItemID:    row.ItemID,
			Error:     row.ErrorMsg,
			CreatedAt: row.CreatedAt,
		})
	}
	return failures, nil
}
