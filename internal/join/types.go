package join

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mauv0809/kingside/internal/currency"
	"github.com/mauv0809/kingside/internal/tournament"
)

var (
	ErrAlreadyJoined             = errors.New("Already joined this tournament")
	ErrTournamentNotFound        = errors.New("Tournament not found")
	ErrTournamentStarted         = errors.New("Tournament has already started")
	ErrTournamentFull            = errors.New("Tournament is full")
	ErrInsufficientBalance       = errors.New("Insufficient wallet balance")
	ErrGatewayVerificationFailed = errors.New("Paystack payment verification failed")
	ErrAmountMismatch            = errors.New("Payment amount mismatch")
	ErrPersistenceFailed         = errors.New("Failed to complete registration")
	ErrInvalidPaymentMethod      = errors.New("Invalid payment method")
	ErrReferenceRequired         = errors.New("Paystack reference required")
	ErrNotParticipant            = errors.New("You are not registered for this tournament")
	ErrNotHost                   = errors.New("Only the host can change this tournament")
)

// AlreadyJoinedError is returned for a repeat join whose earlier payment
// never completed.
type AlreadyJoinedError struct {
	Participant *tournament.Participant
}

func (e *AlreadyJoinedError) Error() string {
	return "Registration pending - payment required"
}

func (e *AlreadyJoinedError) Unwrap() error { return ErrAlreadyJoined }

type InsufficientBalanceError struct {
	Balance  int64
	Required int64
	Currency string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient wallet balance. You have %s, need %s",
		currency.Format(e.Balance, e.Currency), currency.Format(e.Required, e.Currency))
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

type AmountMismatchError struct {
	Expected int64
	Got      int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("Payment amount mismatch. Expected %d, got %d", e.Expected, e.Got)
}

func (e *AmountMismatchError) Unwrap() error { return ErrAmountMismatch }

// CompensatedError reports a join that failed after the gateway charge
// succeeded. The charged amount was credited to the wallet, or will be once
// the pending compensation is applied.
type CompensatedError struct {
	Err            error
	CompensationID string
	Credited       bool
}

func (e *CompensatedError) Error() string {
	if e.Credited {
		return e.Err.Error() + ". Your payment was credited to your wallet"
	}
	return e.Err.Error() + ". Your payment will be credited to your wallet"
}

func (e *CompensatedError) Unwrap() error { return e.Err }

// ParseMethod maps a request payment method onto a participant method.
// "gateway" is accepted as an alias of "paystack".
func ParseMethod(s string) (tournament.PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wallet":
		return tournament.MethodWallet, nil
	case "paystack", "gateway":
		return tournament.MethodPaystack, nil
	}
	return "", ErrInvalidPaymentMethod
}

// Request asks to admit ProfileID into TournamentID.
type Request struct {
	TournamentID string
	ProfileID    string
	Method       tournament.PaymentMethod
	// Reference is the gateway payment reference, required for MethodPaystack.
	Reference string
}

type Result struct {
	Success       bool                     `json:"success"`
	PaymentMethod tournament.PaymentMethod `json:"paymentMethod"`
	Participant   *tournament.Participant  `json:"participant,omitempty"`
	AlreadyJoined bool                     `json:"alreadyJoined,omitempty"`
}

type LeaveResult struct {
	Success       bool  `json:"success"`
	Refunded      int64 `json:"refunded"`
	RefundPending bool  `json:"refundPending,omitempty"`
}

type CancelResult struct {
	Refunds        int `json:"refunds"`
	PendingRefunds int `json:"pendingRefunds"`
}
