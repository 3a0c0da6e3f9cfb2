package wallet

import (
	"errors"
	"time"

	"github.com/mauv0809/kingside/internal/database"
)

// TxType classifies a ledger transaction.
type TxType string

const (
	TxDeposit            TxType = "deposit"
	TxWithdrawal         TxType = "withdrawal"
	TxEntryFee           TxType = "entry_fee"
	TxRefund             TxType = "refund"
	TxGatewayCredit      TxType = "gateway_credit"
	TxWithdrawalReversal TxType = "withdrawal_reversal"
)

const statusSuccess = "success"

// ErrInsufficientFunds is returned when a wallet balance cannot cover a debit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidAmount is returned for zero or negative ledger amounts.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrDuplicateReference is returned when an external payment reference was already recorded.
var ErrDuplicateReference = errors.New("payment reference already used")

type store struct {
	q database.Querier
}

// Entry describes a single ledger movement.
type Entry struct {
	ProfileID    string
	Amount       int64
	Type         TxType
	Description  string
	TournamentID string
	Reference    string
}

// Transaction is a row of the transaction log.
type Transaction struct {
	ID           string    `json:"id"`
	ProfileID    string    `json:"profile_id"`
	Amount       int64     `json:"amount"`
	Type         TxType    `json:"type"`
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	TournamentID *string   `json:"tournament_id,omitempty"`
	Reference    *string   `json:"reference,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
