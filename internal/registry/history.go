package registry

import (
	"context"
	"errors"
	"time"
)

// ErrHistoryUnsupported reports a store that does not keep run history.
var ErrHistoryUnsupported = errors.New("run history requires the sqlite registry backend")

// Run summarizes one completed sync run.
type Run struct {
	ID           string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Mode         string    `json:"mode"`
	Source       string    `json:"source"`
	Records      int       `json:"records"`
	Exact        int       `json:"exact_matches"`
	Fuzzy        int       `json:"fuzzy_matches"`
	Allocated    int       `json:"allocated"`
	NewlyRetired int       `json:"newly_retired"`
	Warnings     int       `json:"warnings"`
	DryRun       bool      `json:"dry_run"`
}

// Duration reports how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// HistoryRecorder is implemented by stores that keep a run log.
type HistoryRecorder interface {
	RecordRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
