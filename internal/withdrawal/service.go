package withdrawal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/currency"
	"github.com/mauv0809/kingside/internal/database"
	"github.com/mauv0809/kingside/internal/lock"
	"github.com/mauv0809/kingside/internal/metrics"
	"github.com/mauv0809/kingside/internal/paystack"
	"github.com/mauv0809/kingside/internal/pubsub"
	"github.com/mauv0809/kingside/internal/wallet"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const bankCountry = "Nigeria"

// Service moves wallet funds to bank accounts through the payment gateway.
type Service struct {
	db        *sql.DB
	gateway   paystack.Gateway
	locker    lock.Locker
	applier   *compensation.Applier
	publisher pubsub.PubSubClient
	metrics   metrics.Metrics
	minAmount int64
}

func New(db *sql.DB, gateway paystack.Gateway, locker lock.Locker, applier *compensation.Applier,
	publisher pubsub.PubSubClient, metrics metrics.Metrics, minAmount int64) *Service {
	if minAmount <= 0 {
		minAmount = DefaultMinAmount
	}
	return &Service{
		db:        db,
		gateway:   gateway,
		locker:    locker,
		applier:   applier,
		publisher: publisher,
		metrics:   metrics,
		minAmount: minAmount,
	}
}

// Withdraw pays req.Amount out to the given bank account and debits the
// wallet. The amount and balance checks run before any gateway call.
func (s *Service) Withdraw(ctx context.Context, req Request) (*Result, error) {
	if req.Amount < s.minAmount {
		s.metrics.IncWithdrawal("below_minimum")
		return nil, &BelowMinimumError{Minimum: s.minAmount}
	}

	release, err := s.locker.Acquire(ctx, lock.WalletKey(req.ProfileID))
	if err != nil {
		return nil, fmt.Errorf("acquire withdrawal lock: %w", err)
	}
	defer release()

	balance, err := wallet.New(s.db).Balance(ctx, req.ProfileID)
	if err != nil {
		return nil, err
	}
	if balance < req.Amount {
		s.metrics.IncWithdrawal("insufficient_balance")
		log.Info("Withdrawal rejected, insufficient balance", "profileID", req.ProfileID,
			"balance", currency.Format(balance, currency.DefaultCode), "amount", currency.Format(req.Amount, currency.DefaultCode))
		return nil, &InsufficientBalanceError{Balance: balance, Amount: req.Amount}
	}

	recipient, err := s.gateway.CreateTransferRecipient(ctx, paystack.RecipientRequest{
		Type:          "nuban",
		Name:          req.AccountName,
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
		Currency:      currency.DefaultCode,
	})
	if err != nil {
		s.metrics.IncWithdrawal("gateway_error")
		return nil, gatewayError(err, "Failed to create recipient")
	}

	reference := uuid.NewString()
	transfer, err := s.gateway.InitiateTransfer(ctx, paystack.TransferRequest{
		Source:    "balance",
		Amount:    req.Amount,
		Recipient: recipient.RecipientCode,
		Reason:    "Wallet withdrawal",
		Reference: reference,
	})
	if err != nil {
		s.metrics.IncWithdrawal("gateway_error")
		return nil, gatewayError(err, "Transfer failed")
	}

	w := &Withdrawal{
		ID:            uuid.NewString(),
		ProfileID:     req.ProfileID,
		Amount:        req.Amount,
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		RecipientCode: recipient.RecipientCode,
		TransferCode:  transfer.TransferCode,
		Reference:     reference,
		Status:        StatusPending,
		LedgerDebited: true,
	}
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := wallet.New(tx).Debit(ctx, wallet.Entry{
			ProfileID:   req.ProfileID,
			Amount:      req.Amount,
			Type:        wallet.TxWithdrawal,
			Description: fmt.Sprintf("Withdrawal to %s (%s)", req.AccountName, req.AccountNumber),
			Reference:   "wd:" + reference,
		}); err != nil {
			return err
		}
		return NewStore(tx).Create(ctx, w)
	})
	if err != nil {
		s.metrics.IncWithdrawal("persistence_failed")
		return nil, s.recordUndebited(ctx, w, err)
	}

	s.metrics.IncWithdrawal("success")
	log.Info("Withdrawal initiated", "withdrawalID", w.ID, "profileID", w.ProfileID, "amount", w.Amount, "transferCode", w.TransferCode)
	s.publish(pubsub.EventWithdrawalInitiated, pubsub.WithdrawalInitiated{
		WithdrawalID: w.ID,
		ProfileID:    w.ProfileID,
		Amount:       w.Amount,
		TransferCode: w.TransferCode,
	})
	return &Result{WithdrawalID: w.ID, TransferCode: w.TransferCode, Status: w.Status}, nil
}

// recordUndebited stores a withdrawal whose transfer went out but whose debit
// failed, together with the compensation that will debit it later.
func (s *Service) recordUndebited(ctx context.Context, w *Withdrawal, cause error) error {
	log.Error("Ledger debit failed after transfer was initiated", "profileID", w.ProfileID,
		"transferCode", w.TransferCode, "amount", w.Amount, "error", cause)

	w.LedgerDebited = false
	comp := &compensation.Compensation{
		Kind:         compensation.KindWithdrawalDebit,
		ProfileID:    w.ProfileID,
		WithdrawalID: w.ID,
		Amount:       w.Amount,
		Reason:       fmt.Sprintf("transfer %s initiated but ledger debit failed: %v", w.TransferCode, cause),
	}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := NewStore(tx).Create(ctx, w); err != nil {
			return err
		}
		return compensation.New(tx).Create(ctx, comp)
	})
	if err != nil {
		log.Error("Failed to record withdrawal compensation", "transferCode", w.TransferCode, "error", err)
		return &PersistenceError{TransferCode: w.TransferCode, Err: errors.Join(cause, err)}
	}
	return &PersistenceError{TransferCode: w.TransferCode, CompensationID: comp.ID, Err: cause}
}

// HandleTransferEvent settles or fails a withdrawal from a gateway webhook.
// Replayed events are no-ops.
func (s *Service) HandleTransferEvent(ctx context.Context, event *paystack.WebhookEvent) error {
	switch event.Event {
	case paystack.EventTransferSuccess:
		return s.settle(ctx, event, StatusSettled, StatusPending)
	case paystack.EventTransferFailed:
		return s.settle(ctx, event, StatusFailed, StatusPending)
	case paystack.EventTransferReversed:
		// A reversal can follow a success, returning money already paid out.
		return s.settle(ctx, event, StatusFailed, StatusPending, StatusSettled)
	case paystack.EventChargeSuccess:
		log.Info("Charge succeeded", "event", event.Event)
		return nil
	default:
		log.Debug("Ignoring webhook event", "event", event.Event)
		return nil
	}
}

// settle moves the withdrawal to status to from the first of from that it
// is in.
func (s *Service) settle(ctx context.Context, event *paystack.WebhookEvent, to Status, from ...Status) error {
	data, err := event.TransferData()
	if err != nil {
		return err
	}
	w, err := NewStore(s.db).GetByTransferCode(ctx, data.TransferCode)
	if errors.Is(err, ErrNotFound) {
		log.Warn("Webhook for unknown transfer", "transferCode", data.TransferCode, "event", event.Event)
		return nil
	}
	if err != nil {
		return err
	}

	var reversal *compensation.Compensation
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := transition(ctx, NewStore(tx), w.ID, to, from); err != nil {
			return err
		}
		if to != StatusFailed {
			return nil
		}
		// Re-read inside the transaction: a pending debit compensation may
		// have flipped the flag since the lookup above.
		var debited bool
		if err := tx.QueryRowContext(ctx,
			"SELECT ledger_debited FROM withdrawal_transactions WHERE id = ?", w.ID).Scan(&debited); err != nil {
			return err
		}
		if !debited {
			return nil
		}
		reversal = &compensation.Compensation{
			Kind:         compensation.KindWithdrawalReversal,
			ProfileID:    w.ProfileID,
			WithdrawalID: w.ID,
			Amount:       w.Amount,
			Reason:       fmt.Sprintf("transfer %s %s", w.TransferCode, event.Event),
		}
		return compensation.New(tx).Create(ctx, reversal)
	})
	if errors.Is(err, ErrStatusConflict) {
		log.Debug("Withdrawal already settled", "withdrawalID", w.ID, "event", event.Event)
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("Withdrawal settled", "withdrawalID", w.ID, "transferCode", w.TransferCode, "status", to)
	s.metrics.IncWithdrawal(string(to))
	if reversal != nil {
		if _, err := s.applier.Apply(ctx, reversal.ID); err != nil {
			log.Warn("Withdrawal reversal left pending", "compensationID", reversal.ID, "error", err)
		}
	}
	s.publish(pubsub.EventWithdrawalSettled, pubsub.WithdrawalSettled{
		WithdrawalID: w.ID,
		TransferCode: w.TransferCode,
		Status:       string(to),
	})
	return nil
}

func transition(ctx context.Context, store Store, id string, to Status, from []Status) error {
	for _, f := range from {
		err := store.UpdateStatus(ctx, id, f, to)
		if !errors.Is(err, ErrStatusConflict) {
			return err
		}
	}
	return ErrStatusConflict
}

// ListBanks returns the Nigerian banks known to the gateway, one per bank
// code, sorted by name.
func (s *Service) ListBanks(ctx context.Context) ([]Bank, error) {
	all, err := s.gateway.ListBanks(ctx)
	if err != nil {
		return nil, gatewayError(err, "Failed to fetch banks")
	}

	seen := make(map[string]bool)
	banks := make([]Bank, 0, len(all))
	for _, b := range all {
		if b.Country != bankCountry || seen[b.Code] {
			continue
		}
		seen[b.Code] = true
		banks = append(banks, Bank{Name: b.Name, Code: b.Code})
	}

	c := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(banks, func(i, j int) bool {
		return c.CompareString(banks[i].Name, banks[j].Name) < 0
	})
	return banks, nil
}

// VerifyAccount resolves the registered name of a bank account.
func (s *Service) VerifyAccount(ctx context.Context, accountNumber, bankCode string) (*paystack.Account, error) {
	acct, err := s.gateway.ResolveAccount(ctx, accountNumber, bankCode)
	if err != nil {
		return nil, gatewayError(err, "Account verification failed")
	}
	return acct, nil
}

// Summary returns the balance and recent ledger and withdrawal history.
func (s *Service) Summary(ctx context.Context, profileID string, limit int) (*Summary, error) {
	ledger := wallet.New(s.db)
	balance, err := ledger.Balance(ctx, profileID)
	if err != nil {
		return nil, err
	}
	txs, err := ledger.ListTransactions(ctx, profileID, limit)
	if err != nil {
		return nil, err
	}
	withdrawals, err := NewStore(s.db).ListByProfile(ctx, profileID, limit)
	if err != nil {
		return nil, err
	}
	return &Summary{ProfileID: profileID, Balance: balance, Transactions: txs, Withdrawals: withdrawals}, nil
}

// Pending returns the oldest withdrawals still waiting on the gateway.
func (s *Service) Pending(ctx context.Context, limit int) ([]Withdrawal, error) {
	return NewStore(s.db).ListByStatus(ctx, StatusPending, limit)
}

func (s *Service) publish(topic pubsub.EventType, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.SendMessage(topic, data); err != nil {
		log.Error("Failed to publish event", "topic", topic, "error", err)
	}
}

func gatewayError(err error, fallback string) error {
	var apiErr *paystack.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &GatewayError{Message: apiErr.Message, Err: err}
	}
	return &GatewayError{Message: fallback, Err: err}
}
