package withdrawal

import (
	"context"
	"time"
)

// Store persists withdrawal records.
type Store interface {
	Create(ctx context.Context, w *Withdrawal) error
	Get(ctx context.Context, id string) (*Withdrawal, error)
	GetByTransferCode(ctx context.Context, transferCode string) (*Withdrawal, error)
	ListByProfile(ctx context.Context, profileID string, limit int) ([]Withdrawal, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]Withdrawal, error)
	// UpdateStatus moves a withdrawal from one status to another and returns
	// ErrStatusConflict if it is no longer in the expected status.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
	// ListStale returns pending withdrawals created before cutoff that were
	// never alerted on.
	ListStale(ctx context.Context, cutoff time.Time) ([]Withdrawal, error)
	MarkAlerted(ctx context.Context, id string, at time.Time) error
}
