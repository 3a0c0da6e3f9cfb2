package notifier

import (
	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/mauv0809/kingside/internal/withdrawal"
)

// Notifier sends operator notices about tournament lifecycle and money
// movements that need attention. It decouples callers from the provider.
type Notifier interface {
	// For persisted tournament transitions
	SendTournamentStatusChange(t *tournament.Tournament, from tournament.Status, dryRun bool) error
	// For compensations that exhausted their attempts
	SendCompensationFailed(c *compensation.Compensation, dryRun bool) error
	// For transfers the gateway never settled
	SendStaleWithdrawal(w *withdrawal.Withdrawal, dryRun bool) error

	// Replies to operator slash commands
	FormatTournamentResponse(t *tournament.Tournament, participants int) (any, error)
	FormatPendingWithdrawalsResponse(ws []withdrawal.Withdrawal) (any, error)
	FormatFailedCompensationsResponse(cs []compensation.Compensation) (any, error)
	FormatCommandHelpResponse(message string) (any, error)
}
