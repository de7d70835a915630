// Package memory is the in-memory audit store, used when no database URL
// is configured. Runs survive only for the process lifetime, which is
// enough for the end-of-run summary.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/minhvo/spsweep/internal/core/domain"
)

// RunRepo implements storage.RunRepository in memory.
type RunRepo struct {
	mu       sync.RWMutex
	runs     []*domain.Run
	failures map[string][]*domain.RunFailure
}

// NewRunRepo creates an empty in-memory run repository.
func NewRunRepo() *RunRepo {
	return &RunRepo{failures: make(map[string][]*domain.RunFailure)}
}

func (r *RunRepo) SaveRun(_ context.Context, run *domain.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *run
	r.runs = append(r.runs, &copied)
	return nil
}

func (r *RunRepo) RecordFailure(_ context.Context, f *domain.RunFailure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *f
	r.failures[f.RunID] = append(r.failures[f.RunID], &copied)
	return nil
}

func (r *RunRepo) RecentRuns(_ context.Context, limit int) ([]*domain.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*domain.Run, len(r.runs))
	copy(runs, r.runs)
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (r *RunRepo) FailuresForRun(_ context.Context, runID string) ([]*domain.RunFailure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	failures := make([]*domain.RunFailure, len(r.failures[runID]))
	copy(failures, r.failures[runID])
	return failures, nil
}
