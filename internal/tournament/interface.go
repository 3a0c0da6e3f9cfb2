package tournament

import (
	"context"
	"time"
)

// Store defines the interface for interacting with tournaments and their participants.
type Store interface {
	Create(ctx context.Context, t *Tournament) error
	Get(ctx context.Context, id string) (*Tournament, error)
	List(ctx context.Context, filter ListFilter) ([]Tournament, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) error
	ListDueTransitions(ctx context.Context, now time.Time) ([]Tournament, error)
	AdjustPrizePool(ctx context.Context, id string, delta int64) error

	GetParticipant(ctx context.Context, tournamentID, profileID string) (*Participant, error)
	AddParticipant(ctx context.Context, p *Participant) error
	RemoveParticipant(ctx context.Context, tournamentID, profileID string) error
	SetPaymentStatus(ctx context.Context, tournamentID, profileID string, status PaymentStatus) error
	ListParticipants(ctx context.Context, tournamentID string) ([]Participant, error)
	CountPaidParticipants(ctx context.Context, tournamentID string) (int, error)
	// PaidCounts returns the paid participant count of every tournament that has one.
	PaidCounts(ctx context.Context) (map[string]int, error)
}
