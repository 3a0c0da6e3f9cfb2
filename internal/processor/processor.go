package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/metrics"
	"github.com/mauv0809/kingside/internal/pubsub"
	"github.com/mauv0809/kingside/internal/tournament"
)

// New creates a new Processor.
func New(stores Stores, applier Applier, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, opts ...Option) *Processor {
	p := &Processor{
		tournaments:   stores.Tournaments,
		compensations: stores.Compensations,
		withdrawals:   stores.Withdrawals,
		applier:       applier,
		pubsub:        pubsub,
		notifier:      notifier,
		metrics:       metrics,
		staleAfter:    StaleWithdrawalAge,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessTournaments moves tournaments whose start or end time has passed to
// their next persisted status and returns the number of transitions applied.
func (p *Processor) ProcessTournaments(ctx context.Context, now time.Time, dryRun bool) (int, error) {
	p.metrics.IncProcessorRuns(JobTournaments)
	log.Info("Starting tournament processing...")
	due, err := p.tournaments.ListDueTransitions(ctx, now)
	if err != nil {
		log.Error("Failed to get tournaments for processing", "error", err)
		return 0, err
	}
	if len(due) == 0 {
		log.Info("No tournaments to process.")
		return 0, nil
	}

	log.Info("Found tournaments to process", "count", len(due))
	applied := 0
	for i := range due {
		applied += p.processTournament(ctx, &due[i], now, dryRun)
	}
	log.Info("Tournament processing finished.", "transitions", applied)
	return applied, nil
}

func (p *Processor) processTournament(ctx context.Context, t *tournament.Tournament, now time.Time, dryRun bool) int {
	applied := 0
	for {
		current := t.Status
		next, ok := nextStatus(t, now)
		if !ok {
			break
		}
		if dryRun {
			log.Info("[Dry Run] Would update tournament status", "tournamentID", t.ID, "from", current, "to", next)
			t.Status = next
			applied++
			continue
		}

		err := p.tournaments.UpdateStatus(ctx, t.ID, current, next)
		if errors.Is(err, tournament.ErrStatusConflict) {
			log.Debug("Tournament status changed concurrently", "tournamentID", t.ID, "expected", current)
			break
		}
		if err != nil {
			log.Error("Failed to update tournament status", "tournamentID", t.ID, "from", current, "to", next, "error", err)
			break
		}
		t.Status = next
		applied++
		p.metrics.IncStatusTransition(string(next))

		if err := p.pubsub.SendMessage(pubsub.EventTournamentStatusChanged, pubsub.TournamentStatusChanged{
			TournamentID: t.ID,
			From:         string(current),
			To:           string(next),
		}); err != nil {
			log.Error("Failed to publish status change", "tournamentID", t.ID, "error", err)
		}
		if err := p.notifier.SendTournamentStatusChange(t, current, dryRun); err != nil {
			log.Error("Failed to send status notification", "tournamentID", t.ID, "error", err)
		}
	}
	return applied
}

// nextStatus returns the status t should move to at now, if any.
func nextStatus(t *tournament.Tournament, now time.Time) (tournament.Status, bool) {
	switch t.Status {
	case tournament.StatusPublished:
		if t.StartDate != nil && !t.StartDate.After(now) {
			return tournament.StatusOngoing, true
		}
	case tournament.StatusOngoing:
		if t.EndDate != nil && !t.EndDate.After(now) {
			return tournament.StatusCompleted, true
		}
	}
	return "", false
}

// ProcessCompensations applies every pending compensation once and returns
// the number that were applied.
func (p *Processor) ProcessCompensations(ctx context.Context, dryRun bool) (int, error) {
	p.metrics.IncProcessorRuns(JobCompensations)
	pending, err := p.compensations.ListByStatus(ctx, compensation.StatusPending, compensationBatch)
	if err != nil {
		log.Error("Failed to list pending compensations", "error", err)
		return 0, err
	}
	if len(pending) == 0 {
		log.Debug("No pending compensations.")
		return 0, nil
	}

	log.Info("Found pending compensations", "count", len(pending))
	applied := 0
	for _, c := range pending {
		if dryRun {
			log.Info("[Dry Run] Would apply compensation", "compensationID", c.ID, "kind", c.Kind, "amount", c.Amount)
			continue
		}
		if err := p.ApplyCompensation(ctx, c.ID); err != nil {
			continue
		}
		applied++
	}
	return applied, nil
}

// ApplyCompensation applies one compensation. It returns an error only while
// the compensation can still be retried; once attempts are exhausted the
// failure is reported to operators and nil is returned.
func (p *Processor) ApplyCompensation(ctx context.Context, id string) error {
	c, err := p.applier.Apply(ctx, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, compensation.ErrNotFound) {
		log.Warn("Compensation not found", "compensationID", id)
		return nil
	}
	if c != nil && c.Status == compensation.StatusFailed {
		log.Error("Compensation exhausted its attempts", "compensationID", id, "kind", c.Kind, "error", err)
		if nerr := p.notifier.SendCompensationFailed(c, false); nerr != nil {
			log.Error("Failed to send compensation alert", "compensationID", id, "error", nerr)
		}
		return nil
	}
	return fmt.Errorf("apply compensation: %w", err)
}

// FlagStaleWithdrawals alerts once on each withdrawal still pending after
// the configured age.
func (p *Processor) FlagStaleWithdrawals(ctx context.Context, now time.Time, dryRun bool) (int, error) {
	p.metrics.IncProcessorRuns(JobWithdrawals)
	stale, err := p.withdrawals.ListStale(ctx, now.Add(-p.staleAfter))
	if err != nil {
		log.Error("Failed to list stale withdrawals", "error", err)
		return 0, err
	}

	flagged := 0
	for i := range stale {
		w := &stale[i]
		if err := p.notifier.SendStaleWithdrawal(w, dryRun); err != nil {
			log.Error("Failed to send stale withdrawal alert", "withdrawalID", w.ID, "error", err)
			continue
		}
		if dryRun {
			continue
		}
		if err := p.withdrawals.MarkAlerted(ctx, w.ID, now); err != nil {
			log.Error("Failed to mark withdrawal alerted", "withdrawalID", w.ID, "error", err)
			continue
		}
		flagged++
	}
	if flagged > 0 {
		log.Warn("Flagged stale withdrawals", "count", flagged)
	}
	return flagged, nil
}
