package tournament

import (
	"errors"
	"time"

	"github.com/mauv0809/kingside/internal/database"
)

// Status is the persisted lifecycle state of a tournament.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the payment outcome recorded on a participant.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod is the rail a participant paid through.
type PaymentMethod string

const (
	MethodWallet   PaymentMethod = "wallet"
	MethodPaystack PaymentMethod = "paystack"
	MethodFree     PaymentMethod = "free"
)

var (
	ErrNotFound             = errors.New("tournament not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrDuplicateParticipant = errors.New("participant already exists")
	ErrStatusConflict       = errors.New("tournament status changed concurrently")
)

type store struct {
	q database.Querier
}

// Tournament is a competition users can join, optionally for an entry fee.
type Tournament struct {
	ID              string     `json:"id"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	HostID          string     `json:"host_id"`
	EntryFee        int64      `json:"entry_fee"`
	Currency        string     `json:"currency"`
	MaxParticipants *int       `json:"max_participants,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Platform        string     `json:"platform,omitempty"`
	ExternalLink    string     `json:"external_link,omitempty"`
	Status          Status     `json:"status"`
	PrizePool       int64      `json:"prize_pool"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsFree reports whether joining costs nothing.
func (t *Tournament) IsFree() bool {
	return t.EntryFee <= 0
}

// HasStarted reports whether the tournament is closed for joining and leaving,
// either because its persisted status moved on or because its start time passed.
func (t *Tournament) HasStarted(now time.Time) bool {
	switch t.Status {
	case StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return t.StartDate != nil && !t.StartDate.After(now)
}

// EffectiveStatus is the status derived from the wall clock, for display only.
// Money movement is gated on the persisted Status through HasStarted.
func (t *Tournament) EffectiveStatus(now time.Time) Status {
	if t.Status == StatusCancelled || t.Status == StatusDraft || t.Status == StatusCompleted {
		return t.Status
	}
	if t.EndDate != nil && !t.EndDate.After(now) {
		return StatusCompleted
	}
	if t.StartDate != nil && !t.StartDate.After(now) {
		return StatusOngoing
	}
	return t.Status
}

// Participant links a profile to a tournament with its payment outcome.
type Participant struct {
	ID               string        `json:"id"`
	TournamentID     string        `json:"tournament_id"`
	ProfileID        string        `json:"profile_id"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentReference *string       `json:"payment_reference"`
	AmountPaid       int64         `json:"amount_paid"`
	JoinedAt         time.Time     `json:"joined_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// ListFilter narrows List results. Zero values mean no filter.
type ListFilter struct {
	Status Status
	HostID string
	Limit  int
}
