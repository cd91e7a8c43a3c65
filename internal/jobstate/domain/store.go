package domain

import (
	"context"
	"errors"
	"time"
)

// Store persists collection windows and per-event outcomes. ScheduledJob rows
// are append-only; Latest is the only read pattern the scheduler needs.
type Store interface {
	Latest(ctx context.Context) (*ScheduledJob, error)
	Save(ctx context.Context, from, to time.Time) (*ScheduledJob, error)

	RecordFallout(ctx context.Context, fallout *Fallout) error
	FalloutsFor(ctx context.Context, flowInstanceIDs []string) ([]Fallout, error)

	RecordHistory(ctx context.Context, entry *History) error
	HistoryFor(ctx context.Context, flowInstanceIDs []string) ([]History, error)
}

// ErrJobStateUnavailable classifies failures to read or persist job state.
// These abort an entire scheduled run; the next cadence tick retries from the
// last-known-good window.
var ErrJobStateUnavailable = errors.New("job_state_unavailable")
