package notifier

import (
	"sync"

	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/mauv0809/kingside/internal/withdrawal"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendTournamentStatusChangeFunc func(t *tournament.Tournament, from tournament.Status, dryRun bool) error
	SendCompensationFailedFunc     func(c *compensation.Compensation, dryRun bool) error
	SendStaleWithdrawalFunc        func(w *withdrawal.Withdrawal, dryRun bool) error

	FormatTournamentResponseFunc          func(t *tournament.Tournament, participants int) (any, error)
	FormatPendingWithdrawalsResponseFunc  func(ws []withdrawal.Withdrawal) (any, error)
	FormatFailedCompensationsResponseFunc func(cs []compensation.Compensation) (any, error)
	FormatCommandHelpResponseFunc         func(message string) (any, error)

	// Call records
	SendTournamentStatusChangeCalls []StatusChangeCall
	SendCompensationFailedCalls     []*compensation.Compensation
	SendStaleWithdrawalCalls        []*withdrawal.Withdrawal
}

// StatusChangeCall holds the arguments for a call to SendTournamentStatusChange.
type StatusChangeCall struct {
	Tournament *tournament.Tournament
	From       tournament.Status
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTournamentStatusChangeCalls = nil
	m.SendCompensationFailedCalls = nil
	m.SendStaleWithdrawalCalls = nil
}

func (m *Mock) SendTournamentStatusChange(t *tournament.Tournament, from tournament.Status, dryRun bool) error {
	m.mu.Lock()
	m.SendTournamentStatusChangeCalls = append(m.SendTournamentStatusChangeCalls, StatusChangeCall{Tournament: t, From: from})
	fn := m.SendTournamentStatusChangeFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(t, from, dryRun)
	}
	return nil
}

func (m *Mock) SendCompensationFailed(c *compensation.Compensation, dryRun bool) error {
	m.mu.Lock()
	m.SendCompensationFailedCalls = append(m.SendCompensationFailedCalls, c)
	fn := m.SendCompensationFailedFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(c, dryRun)
	}
	return nil
}

func (m *Mock) SendStaleWithdrawal(w *withdrawal.Withdrawal, dryRun bool) error {
	m.mu.Lock()
	m.SendStaleWithdrawalCalls = append(m.SendStaleWithdrawalCalls, w)
	fn := m.SendStaleWithdrawalFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(w, dryRun)
	}
	return nil
}

// StatusChanges returns the recorded tournament transitions.
func (m *Mock) StatusChanges() []StatusChangeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StatusChangeCall(nil), m.SendTournamentStatusChangeCalls...)
}

func (m *Mock) FormatTournamentResponse(t *tournament.Tournament, participants int) (any, error) {
	m.mu.Lock()
	fn := m.FormatTournamentResponseFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(t, participants)
	}
	return nil, nil
}

func (m *Mock) FormatPendingWithdrawalsResponse(ws []withdrawal.Withdrawal) (any, error) {
	m.mu.Lock()
	fn := m.FormatPendingWithdrawalsResponseFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ws)
	}
	return nil, nil
}

func (m *Mock) FormatFailedCompensationsResponse(cs []compensation.Compensation) (any, error) {
	m.mu.Lock()
	fn := m.FormatFailedCompensationsResponseFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(cs)
	}
	return nil, nil
}

func (m *Mock) FormatCommandHelpResponse(message string) (any, error) {
	m.mu.Lock()
	fn := m.FormatCommandHelpResponseFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(message)
	}
	return nil, nil
}
