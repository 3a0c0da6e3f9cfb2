package processor

import (
	"time"

	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/metrics"
	"github.com/mauv0809/kingside/internal/pubsub"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/mauv0809/kingside/internal/withdrawal"
)

// StaleWithdrawalAge is how long a transfer may stay pending before
// operators are alerted.
const StaleWithdrawalAge = 24 * time.Hour

const compensationBatch = 100

// Job names used for run metrics.
const (
	JobTournaments   = "tournaments"
	JobCompensations = "compensations"
	JobWithdrawals   = "stale_withdrawals"
)

// Processor advances persisted tournament status and retries pending
// compensations.
type Processor struct {
	tournaments   tournament.Store
	compensations compensation.Store
	withdrawals   withdrawal.Store
	applier       Applier
	pubsub        pubsub.PubSubClient
	notifier      Notifier
	metrics       metrics.Metrics
	staleAfter    time.Duration
}

type Option func(*Processor)

// WithStaleWithdrawalAge overrides StaleWithdrawalAge.
func WithStaleWithdrawalAge(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.staleAfter = d
		}
	}
}

// Stores groups the stores the processor reads and writes.
type Stores struct {
	Tournaments   tournament.Store
	Compensations compensation.Store
	Withdrawals   withdrawal.Store
}
