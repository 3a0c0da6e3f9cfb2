package compensation

import (
	"context"
	"errors"
	"time"

	"github.com/mauv0809/kingside/internal/database"
)

// Kind names the compensating action to run.
type Kind string

const (
	// KindRefund credits back an entry fee after a participant left.
	KindRefund Kind = "refund"
	// KindGatewayCredit credits a verified gateway payment whose participant could not be created.
	KindGatewayCredit Kind = "gateway_credit"
	// KindWithdrawalDebit debits the ledger for a transfer that was initiated before the debit failed.
	KindWithdrawalDebit Kind = "withdrawal_debit"
	// KindWithdrawalReversal credits back a debited withdrawal whose transfer failed.
	KindWithdrawalReversal Kind = "withdrawal_reversal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
)

// MaxAttempts is the number of failed applications after which a compensation
// is marked failed and handed to operators.
const MaxAttempts = 5

var (
	ErrNotFound   = errors.New("compensation not found")
	ErrNotPending = errors.New("compensation is not pending")
)

type store struct {
	q database.Querier
}

// Compensation is a persisted saga step that undoes or completes a money
// movement after a partial failure.
type Compensation struct {
	ID           string `json:"id" msgpack:"id"`
	Kind         Kind   `json:"kind" msgpack:"kind"`
	ProfileID    string `json:"profile_id" msgpack:"profile_id"`
	TournamentID string `json:"tournament_id,omitempty" msgpack:"tournament_id"`
	WithdrawalID string `json:"withdrawal_id,omitempty" msgpack:"withdrawal_id"`
	// Reference, when set, is used as the ledger reference so an external
	// payment is consumed at most once.
	Reference string    `json:"reference,omitempty" msgpack:"reference"`
	Amount    int64     `json:"amount" msgpack:"amount"`
	Reason    string    `json:"reason" msgpack:"reason"`
	Status    Status    `json:"status" msgpack:"status"`
	Attempts  int       `json:"attempts" msgpack:"attempts"`
	LastError string    `json:"last_error,omitempty" msgpack:"last_error"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time `json:"updated_at" msgpack:"updated_at"`
}

// Dispatcher hands a pending compensation to an asynchronous worker.
type Dispatcher interface {
	Dispatch(ctx context.Context, compensationID string) error
}
