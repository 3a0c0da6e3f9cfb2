package withdrawal

import (
	"errors"
	"fmt"
	"time"

	"github.com/mauv0809/kingside/internal/currency"
	"github.com/mauv0809/kingside/internal/database"
	"github.com/mauv0809/kingside/internal/wallet"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSettled Status = "settled"
	StatusFailed  Status = "failed"
)

// DefaultMinAmount is the smallest withdrawal in kobo (NGN 100).
const DefaultMinAmount int64 = 10000

var (
	ErrNotFound            = errors.New("withdrawal not found")
	ErrStatusConflict      = errors.New("withdrawal status changed concurrently")
	ErrBelowMinimum        = errors.New("amount below minimum withdrawal")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrGateway             = errors.New("payment gateway request failed")
	ErrPersistenceFailed   = errors.New("failed to update wallet balance")
)

// BelowMinimumError carries the configured minimum.
type BelowMinimumError struct {
	Minimum int64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("Minimum withdrawal is %s", currency.Format(e.Minimum, currency.DefaultCode))
}

func (e *BelowMinimumError) Unwrap() error { return ErrBelowMinimum }

// PersistenceError is returned when the transfer went out but recording it
// failed. TransferCode identifies the transfer for support.
type PersistenceError struct {
	TransferCode   string
	CompensationID string
	Err            error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("transfer %s initiated but not recorded: %v", e.TransferCode, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistenceFailed, e.Err} }

type store struct {
	q database.Querier
}

// Withdrawal is a payout from a wallet to a bank account.
type Withdrawal struct {
	ID            string     `json:"id"`
	ProfileID     string     `json:"profile_id"`
	Amount        int64      `json:"amount"`
	BankCode      string     `json:"bank_code"`
	AccountNumber string     `json:"account_number"`
	AccountName   string     `json:"account_name"`
	RecipientCode string     `json:"recipient_code"`
	TransferCode  string     `json:"transfer_code"`
	Reference     string     `json:"reference"`
	Status        Status     `json:"status"`
	LedgerDebited bool       `json:"ledger_debited"`
	AlertedAt     *time.Time `json:"alerted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Request is a validated withdrawal request.
type Request struct {
	ProfileID     string
	Amount        int64
	BankCode      string
	AccountNumber string
	AccountName   string
}

type Result struct {
	WithdrawalID string `json:"withdrawalId"`
	TransferCode string `json:"transferCode"`
	Status       Status `json:"status"`
}

// Bank is a bank a withdrawal can be sent to.
type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// InsufficientBalanceError reports the balance that failed to cover a withdrawal.
type InsufficientBalanceError struct {
	Balance int64
	Amount  int64
}

func (e *InsufficientBalanceError) Error() string { return "Insufficient balance" }

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// GatewayError wraps a failed gateway call. Message is safe to show to users.
type GatewayError struct {
	Message string
	Err     error
}

func (e *GatewayError) Error() string { return e.Message }

func (e *GatewayError) Unwrap() []error { return []error{ErrGateway, e.Err} }

// Summary is a wallet overview for one profile.
type Summary struct {
	ProfileID    string               `json:"profileId"`
	Balance      int64                `json:"balance"`
	Transactions []wallet.Transaction `json:"transactions"`
	Withdrawals  []Withdrawal         `json:"withdrawals"`
}
