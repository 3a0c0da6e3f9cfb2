package compensation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/kingside/internal/database"
	"github.com/mauv0809/kingside/internal/metrics"
	"github.com/mauv0809/kingside/internal/wallet"
)

// Applier runs the ledger side of a compensation. Applying the same
// compensation twice is a no-op: the ledger movement and the status flip
// commit together, and the ledger reference is unique per compensation.
type Applier struct {
	db      *sql.DB
	metrics metrics.Metrics
}

func NewApplier(db *sql.DB, metrics metrics.Metrics) *Applier {
	return &Applier{db: db, metrics: metrics}
}

// Apply executes the compensation identified by id. When the ledger step
// fails the attempt is recorded and the error returned; the compensation
// stays pending until MaxAttempts is reached.
func (a *Applier) Apply(ctx context.Context, id string) (*Compensation, error) {
	var (
		applied *Compensation
		ran     bool
	)
	err := database.WithTx(ctx, a.db, func(tx *sql.Tx) error {
		c, err := New(tx).Get(ctx, id)
		if err != nil {
			return err
		}
		applied = c
		if c.Status != StatusPending {
			return nil
		}
		if err := applyLedger(ctx, tx, c); err != nil {
			return err
		}
		if err := New(tx).MarkApplied(ctx, c.ID); err != nil {
			return err
		}
		c.Status = StatusApplied
		c.Attempts++
		ran = true
		return nil
	})
	if err == nil {
		if ran {
			a.metrics.IncCompensation(string(applied.Kind), "applied")
			log.Info("Compensation applied", "compensationID", id, "kind", applied.Kind, "amount", applied.Amount)
		}
		return applied, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}

	status, recErr := New(a.db).RecordFailure(ctx, id, err, MaxAttempts)
	if recErr != nil {
		log.Error("Failed to record compensation failure", "compensationID", id, "error", recErr)
		return applied, fmt.Errorf("apply compensation %s: %w", id, err)
	}
	if applied != nil {
		applied.Status = status
		applied.LastError = err.Error()
		a.metrics.IncCompensation(string(applied.Kind), string(status))
	}
	log.Warn("Compensation attempt failed", "compensationID", id, "status", status, "error", err)
	return applied, fmt.Errorf("apply compensation %s: %w", id, err)
}

func applyLedger(ctx context.Context, tx *sql.Tx, c *Compensation) error {
	ledger := wallet.New(tx)
	entry := wallet.Entry{
		ProfileID:    c.ProfileID,
		Amount:       c.Amount,
		TournamentID: c.TournamentID,
		Reference:    "comp:" + c.ID,
	}
	if c.Reference != "" {
		entry.Reference = c.Reference
	}

	switch c.Kind {
	case KindRefund:
		entry.Type = wallet.TxRefund
		entry.Description = "Refund for leaving the tournament"
		_, err := ledger.Credit(ctx, entry)
		return err
	case KindGatewayCredit:
		entry.Type = wallet.TxGatewayCredit
		entry.Description = "Credit for unconfirmed tournament entry"
		_, err := ledger.Credit(ctx, entry)
		return err
	case KindWithdrawalDebit:
		// A transfer that already failed paid nothing out, so there is nothing to debit.
		var status string
		err := tx.QueryRowContext(ctx, "SELECT status FROM withdrawal_transactions WHERE id = ?", c.WithdrawalID).Scan(&status)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read withdrawal status: %w", err)
		}
		if status == "failed" {
			log.Info("Skipping debit for failed transfer", "compensationID", c.ID, "withdrawalID", c.WithdrawalID)
			return nil
		}
		entry.Type = wallet.TxWithdrawal
		entry.Description = "Withdrawal debit reconciliation"
		if _, err := ledger.Debit(ctx, entry); err != nil {
			return err
		}
		return setLedgerDebited(ctx, tx, c.WithdrawalID, true)
	case KindWithdrawalReversal:
		entry.Type = wallet.TxWithdrawalReversal
		entry.Description = "Reversal of failed withdrawal"
		if _, err := ledger.Credit(ctx, entry); err != nil {
			return err
		}
		return setLedgerDebited(ctx, tx, c.WithdrawalID, false)
	default:
		return fmt.Errorf("unknown compensation kind %q", c.Kind)
	}
}

func setLedgerDebited(ctx context.Context, tx *sql.Tx, withdrawalID string, debited bool) error {
	if withdrawalID == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE withdrawal_transactions SET ledger_debited = ? WHERE id = ?", debited, withdrawalID)
	if err != nil {
		return fmt.Errorf("update withdrawal ledger flag: %w", err)
	}
	return nil
}
