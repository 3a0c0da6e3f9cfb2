package join

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/database"
	"github.com/mauv0809/kingside/internal/lock"
	"github.com/mauv0809/kingside/internal/metrics"
	"github.com/mauv0809/kingside/internal/paystack"
	"github.com/mauv0809/kingside/internal/pubsub"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/mauv0809/kingside/internal/wallet"
)

// Coordinator admits users into tournaments and lets them leave, keeping
// participants, the wallet ledger and the prize pool consistent.
type Coordinator struct {
	db         *sql.DB
	gateway    paystack.Gateway
	locker     lock.Locker
	applier    *compensation.Applier
	dispatcher compensation.Dispatcher
	publisher  pubsub.PubSubClient
	metrics    metrics.Metrics
	now        func() time.Time
}

type Option func(*Coordinator)

// WithClock overrides the wall clock used for start-time checks.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithDispatcher hands compensations that could not be applied inline to an
// asynchronous worker.
func WithDispatcher(d compensation.Dispatcher) Option {
	return func(c *Coordinator) { c.dispatcher = d }
}

func New(db *sql.DB, gateway paystack.Gateway, locker lock.Locker, applier *compensation.Applier,
	publisher pubsub.PubSubClient, metrics metrics.Metrics, opts ...Option) *Coordinator {
	c := &Coordinator{
		db:        db,
		gateway:   gateway,
		locker:    locker,
		applier:   applier,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Join admits req.ProfileID into req.TournamentID, charging the entry fee
// through req.Method. A repeat join of a paid participant returns the
// existing participant without charging again.
func (c *Coordinator) Join(ctx context.Context, req Request) (*Result, error) {
	if req.Method != tournament.MethodWallet && req.Method != tournament.MethodPaystack {
		return nil, ErrInvalidPaymentMethod
	}

	release, err := c.locker.Acquire(ctx, lock.JoinKey(req.TournamentID, req.ProfileID))
	if err != nil {
		return nil, fmt.Errorf("acquire join lock: %w", err)
	}
	defer release()

	store := tournament.New(c.db)
	existing, err := store.GetParticipant(ctx, req.TournamentID, req.ProfileID)
	switch {
	case err == nil:
		return c.alreadyJoined(existing)
	case !errors.Is(err, tournament.ErrParticipantNotFound):
		return nil, err
	}

	t, err := store.Get(ctx, req.TournamentID)
	if errors.Is(err, tournament.ErrNotFound) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.HasStarted(c.now()) {
		c.metrics.IncJoin(string(req.Method), "started")
		return nil, ErrTournamentStarted
	}
	if err := checkCapacity(ctx, store, t); err != nil {
		c.metrics.IncJoin(string(req.Method), outcome(err))
		return nil, err
	}

	var p *tournament.Participant
	switch {
	case t.IsFree():
		p, err = c.joinFree(ctx, t, req)
	case req.Method == tournament.MethodWallet:
		p, err = c.joinWallet(ctx, t, req)
	default:
		p, err = c.joinGateway(ctx, t, req)
	}
	if err != nil {
		c.metrics.IncJoin(string(req.Method), outcome(err))
		log.Warn("Join rejected", "tournamentID", req.TournamentID, "profileID", req.ProfileID, "method", req.Method, "error", err)
		return nil, err
	}

	c.metrics.IncJoin(string(p.PaymentMethod), "success")
	log.Info("Participant joined", "tournamentID", t.ID, "profileID", p.ProfileID, "method", p.PaymentMethod, "amount", p.AmountPaid)
	c.publish(pubsub.EventParticipantJoined, pubsub.ParticipantJoined{
		TournamentID:  t.ID,
		ProfileID:     p.ProfileID,
		PaymentMethod: string(p.PaymentMethod),
		Amount:        p.AmountPaid,
		JoinedAt:      p.JoinedAt.Unix(),
	})
	return &Result{Success: true, PaymentMethod: p.PaymentMethod, Participant: p}, nil
}

func (c *Coordinator) alreadyJoined(p *tournament.Participant) (*Result, error) {
	c.metrics.IncJoin(string(p.PaymentMethod), "already_joined")
	if p.PaymentStatus != tournament.PaymentPaid {
		return nil, &AlreadyJoinedError{Participant: p}
	}
	return &Result{Success: true, PaymentMethod: p.PaymentMethod, Participant: p, AlreadyJoined: true}, nil
}

func (c *Coordinator) joinFree(ctx context.Context, t *tournament.Tournament, req Request) (*tournament.Participant, error) {
	p := &tournament.Participant{
		TournamentID:  t.ID,
		ProfileID:     req.ProfileID,
		PaymentStatus: tournament.PaymentPaid,
		PaymentMethod: tournament.MethodFree,
	}
	err := database.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		store := tournament.New(tx)
		if err := checkCapacity(ctx, store, t); err != nil {
			return err
		}
		return store.AddParticipant(ctx, p)
	})
	if err != nil {
		return nil, mapInsertError(err)
	}
	return p, nil
}

// joinWallet debits the wallet and creates the participant in one
// transaction, so a debit without a participant cannot be committed. The
// wallet lock keeps a concurrent withdrawal from spending the same balance.
func (c *Coordinator) joinWallet(ctx context.Context, t *tournament.Tournament, req Request) (*tournament.Participant, error) {
	release, err := c.locker.Acquire(ctx, lock.WalletKey(req.ProfileID))
	if err != nil {
		return nil, fmt.Errorf("acquire wallet lock: %w", err)
	}
	defer release()

	p := &tournament.Participant{
		TournamentID:  t.ID,
		ProfileID:     req.ProfileID,
		PaymentStatus: tournament.PaymentPaid,
		PaymentMethod: tournament.MethodWallet,
		AmountPaid:    t.EntryFee,
	}
	err = database.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		store := tournament.New(tx)
		if err := checkCapacity(ctx, store, t); err != nil {
			return err
		}
		ledger := wallet.New(tx)
		balance, err := ledger.Balance(ctx, req.ProfileID)
		if err != nil {
			return err
		}
		if balance < t.EntryFee {
			return &InsufficientBalanceError{Balance: balance, Required: t.EntryFee, Currency: t.Currency}
		}
		_, err = ledger.Debit(ctx, wallet.Entry{
			ProfileID:    req.ProfileID,
			Amount:       t.EntryFee,
			Type:         wallet.TxEntryFee,
			Description:  "Tournament entry fee",
			TournamentID: t.ID,
		})
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			return &InsufficientBalanceError{Balance: balance, Required: t.EntryFee, Currency: t.Currency}
		}
		if err != nil {
			return err
		}

		if err := store.AddParticipant(ctx, p); err != nil {
			return err
		}
		return store.AdjustPrizePool(ctx, t.ID, t.EntryFee)
	})
	if err != nil {
		return nil, mapInsertError(err)
	}
	return p, nil
}

// joinGateway admits a participant whose card payment the gateway confirms.
// If the participant cannot be stored after the charge was verified, the
// verified amount is credited to the wallet through a compensation.
func (c *Coordinator) joinGateway(ctx context.Context, t *tournament.Tournament, req Request) (*tournament.Participant, error) {
	if req.Reference == "" {
		return nil, ErrReferenceRequired
	}

	v, err := c.gateway.VerifyTransaction(ctx, req.Reference)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayVerificationFailed, err)
	}
	if !v.Succeeded() {
		return nil, fmt.Errorf("%w: gateway status %q", ErrGatewayVerificationFailed, v.Status)
	}
	if v.Amount != t.EntryFee {
		return nil, &AmountMismatchError{Expected: t.EntryFee, Got: v.Amount}
	}

	reference := req.Reference
	p := &tournament.Participant{
		TournamentID:     t.ID,
		ProfileID:        req.ProfileID,
		PaymentStatus:    tournament.PaymentPaid,
		PaymentMethod:    tournament.MethodPaystack,
		PaymentReference: &reference,
		AmountPaid:       v.Amount,
	}
	err = database.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		store := tournament.New(tx)
		if err := checkCapacity(ctx, store, t); err != nil {
			return err
		}
		if _, err := wallet.New(tx).Record(ctx, wallet.Entry{
			ProfileID:    req.ProfileID,
			Amount:       v.Amount,
			Type:         wallet.TxEntryFee,
			Description:  "Tournament entry fee",
			TournamentID: t.ID,
			Reference:    reference,
		}); err != nil {
			return err
		}
		if err := store.AddParticipant(ctx, p); err != nil {
			return err
		}
		return store.AdjustPrizePool(ctx, t.ID, v.Amount)
	})
	if errors.Is(err, wallet.ErrDuplicateReference) {
		return nil, fmt.Errorf("%w: reference already used", ErrGatewayVerificationFailed)
	}
	if err != nil {
		return nil, c.creditVerifiedPayment(ctx, t, req, v, mapInsertError(err))
	}
	return p, nil
}

func (c *Coordinator) creditVerifiedPayment(ctx context.Context, t *tournament.Tournament, req Request,
	v *paystack.Verification, cause error) error {
	log.Error("Participant insert failed after verified payment", "tournamentID", t.ID, "profileID", req.ProfileID,
		"reference", req.Reference, "amount", v.Amount, "error", cause)

	comp := &compensation.Compensation{
		Kind:         compensation.KindGatewayCredit,
		ProfileID:    req.ProfileID,
		TournamentID: t.ID,
		Reference:    req.Reference,
		Amount:       v.Amount,
		Reason:       fmt.Sprintf("verified payment %s could not be attached to a participant: %v", req.Reference, cause),
	}
	if err := compensation.New(c.db).Create(ctx, comp); err != nil {
		log.Error("Failed to record gateway credit", "reference", req.Reference, "error", err)
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, errors.Join(cause, err))
	}

	_, err := c.applier.Apply(ctx, comp.ID)
	if err != nil {
		c.dispatch(ctx, comp.ID)
	}
	return &CompensatedError{Err: cause, CompensationID: comp.ID, Credited: err == nil}
}

// Leave removes the participant and refunds the entry fee to the wallet.
// A refund that cannot be applied right away stays pending and is retried
// later; the caller then sees Refunded == 0 and RefundPending.
func (c *Coordinator) Leave(ctx context.Context, tournamentID, profileID string) (*LeaveResult, error) {
	release, err := c.locker.Acquire(ctx, lock.JoinKey(tournamentID, profileID))
	if err != nil {
		return nil, fmt.Errorf("acquire join lock: %w", err)
	}
	defer release()

	store := tournament.New(c.db)
	t, err := store.Get(ctx, tournamentID)
	if errors.Is(err, tournament.ErrNotFound) {
		c.metrics.IncLeave("not_found")
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.HasStarted(c.now()) {
		c.metrics.IncLeave("started")
		return nil, ErrTournamentStarted
	}
	p, err := store.GetParticipant(ctx, tournamentID, profileID)
	if errors.Is(err, tournament.ErrParticipantNotFound) {
		c.metrics.IncLeave("not_participant")
		return nil, ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}

	var refund *compensation.Compensation
	err = database.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		txStore := tournament.New(tx)
		if err := txStore.RemoveParticipant(ctx, tournamentID, profileID); err != nil {
			return err
		}
		if t.IsFree() || p.AmountPaid <= 0 || p.PaymentStatus != tournament.PaymentPaid {
			return nil
		}
		refund = &compensation.Compensation{
			Kind:         compensation.KindRefund,
			ProfileID:    profileID,
			TournamentID: tournamentID,
			Amount:       p.AmountPaid,
			Reason:       "left tournament before start",
		}
		if err := compensation.New(tx).Create(ctx, refund); err != nil {
			return err
		}
		return txStore.AdjustPrizePool(ctx, tournamentID, -p.AmountPaid)
	})
	if errors.Is(err, tournament.ErrParticipantNotFound) {
		return nil, ErrNotParticipant
	}
	if err != nil {
		c.metrics.IncLeave("error")
		return nil, fmt.Errorf("leave tournament: %w", err)
	}

	res := &LeaveResult{Success: true}
	if refund != nil {
		if _, err := c.applier.Apply(ctx, refund.ID); err != nil {
			log.Error("Refund left pending", "compensationID", refund.ID, "tournamentID", tournamentID, "profileID", profileID, "error", err)
			c.dispatch(ctx, refund.ID)
			res.RefundPending = true
		} else {
			res.Refunded = refund.Amount
			c.metrics.AddRefunded(refund.Amount)
		}
	}

	c.metrics.IncLeave("success")
	log.Info("Participant left", "tournamentID", tournamentID, "profileID", profileID, "refunded", res.Refunded, "refundPending", res.RefundPending)
	c.publish(pubsub.EventParticipantLeft, pubsub.ParticipantLeft{
		TournamentID:  tournamentID,
		ProfileID:     profileID,
		Refunded:      res.Refunded,
		RefundPending: res.RefundPending,
	})
	return res, nil
}

// Cancel cancels a tournament that has not finished and refunds every paid
// participant to their wallet.
func (c *Coordinator) Cancel(ctx context.Context, tournamentID, hostID string) (*CancelResult, error) {
	store := tournament.New(c.db)
	t, err := store.Get(ctx, tournamentID)
	if errors.Is(err, tournament.ErrNotFound) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.HostID != hostID {
		return nil, ErrNotHost
	}
	if t.Status == tournament.StatusCompleted || t.Status == tournament.StatusCancelled {
		return nil, fmt.Errorf("%w: tournament is %s", tournament.ErrStatusConflict, t.Status)
	}

	var refunds []*compensation.Compensation
	err = database.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		txStore := tournament.New(tx)
		if err := txStore.UpdateStatus(ctx, t.ID, t.Status, tournament.StatusCancelled); err != nil {
			return err
		}
		participants, err := txStore.ListParticipants(ctx, t.ID)
		if err != nil {
			return err
		}
		comps := compensation.New(tx)
		var total int64
		for _, p := range participants {
			if p.PaymentStatus != tournament.PaymentPaid || p.AmountPaid <= 0 {
				continue
			}
			refund := &compensation.Compensation{
				Kind:         compensation.KindRefund,
				ProfileID:    p.ProfileID,
				TournamentID: t.ID,
				Amount:       p.AmountPaid,
				Reason:       "tournament cancelled",
			}
			if err := comps.Create(ctx, refund); err != nil {
				return err
			}
			if err := txStore.SetPaymentStatus(ctx, t.ID, p.ProfileID, tournament.PaymentRefunded); err != nil {
				return err
			}
			refunds = append(refunds, refund)
			total += p.AmountPaid
		}
		if total == 0 {
			return nil
		}
		return txStore.AdjustPrizePool(ctx, t.ID, -total)
	})
	if err != nil {
		return nil, fmt.Errorf("cancel tournament: %w", err)
	}

	res := &CancelResult{}
	for _, refund := range refunds {
		if _, err := c.applier.Apply(ctx, refund.ID); err != nil {
			c.dispatch(ctx, refund.ID)
			res.PendingRefunds++
			continue
		}
		c.metrics.AddRefunded(refund.Amount)
		res.Refunds++
	}
	log.Info("Tournament cancelled", "tournamentID", t.ID, "refunds", res.Refunds, "pendingRefunds", res.PendingRefunds)
	c.publish(pubsub.EventTournamentStatusChanged, pubsub.TournamentStatusChanged{
		TournamentID: t.ID,
		From:         string(t.Status),
		To:           string(tournament.StatusCancelled),
	})
	return res, nil
}

func (c *Coordinator) dispatch(ctx context.Context, compensationID string) {
	if c.dispatcher == nil {
		return
	}
	if err := c.dispatcher.Dispatch(ctx, compensationID); err != nil {
		log.Error("Failed to dispatch compensation", "compensationID", compensationID, "error", err)
	}
}

func (c *Coordinator) publish(topic pubsub.EventType, data any) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.SendMessage(topic, data); err != nil {
		log.Error("Failed to publish event", "topic", topic, "error", err)
	}
}

// mapInsertError turns a duplicate participant into ErrAlreadyJoined and
// any other store failure into ErrPersistenceFailed.
// checkCapacity rejects a join into a full tournament. Inside a transaction
// the count and the insert that follows see the same participants.
func checkCapacity(ctx context.Context, store tournament.Store, t *tournament.Tournament) error {
	if t.MaxParticipants == nil {
		return nil
	}
	count, err := store.CountPaidParticipants(ctx, t.ID)
	if err != nil {
		return err
	}
	if count >= *t.MaxParticipants {
		return ErrTournamentFull
	}
	return nil
}

func mapInsertError(err error) error {
	switch {
	case errors.Is(err, tournament.ErrDuplicateParticipant):
		return ErrAlreadyJoined
	case errors.Is(err, ErrTournamentFull), errors.Is(err, ErrInsufficientBalance):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, ErrTournamentFull):
		return "full"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrAmountMismatch):
		return "amount_mismatch"
	case errors.Is(err, ErrGatewayVerificationFailed):
		return "verification_failed"
	case errors.Is(err, ErrReferenceRequired):
		return "invalid"
	default:
		return "error"
	}
}
