// Package storage defines the audit-store contracts. A run writes one Run
// row and zero or more RunFailure rows; the status command reads them back.
package storage

import (
	"context"

	"github.com/minhvo/spsweep/internal/core/domain"
)

// RunRepository persists sweep runs and their per-unit failures.
type RunRepository interface {
	SaveRun(ctx context.Context, run *domain.Run) error
	RecordFailure(ctx context.Context, f *domain.RunFailure) error
	RecentRuns(ctx context.Context, limit int) ([]*domain.Run, error)
	FailuresForRun(ctx context.Context, runID string) ([]*domain.RunFailure, error)
}
