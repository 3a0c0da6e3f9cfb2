package compensation

import "context"

// Store persists compensations.
type Store interface {
	Create(ctx context.Context, c *Compensation) error
	Get(ctx context.Context, id string) (*Compensation, error)
	ListPending(ctx context.Context, limit int) ([]Compensation, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]Compensation, error)
	MarkApplied(ctx context.Context, id string) error
	RecordFailure(ctx context.Context, id string, cause error, maxAttempts int) (Status, error)
}
