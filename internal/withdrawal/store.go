package withdrawal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/kingside/internal/database"
)

const columns = `id, profile_id, amount, bank_code, account_number, account_name, recipient_code, transfer_code, reference, status, ledger_debited, alerted_at, created_at, updated_at`

// NewStore creates a Store bound to q, which may be the database or an open transaction.
func NewStore(q database.Querier) Store {
	return &store{q: q}
}

func (s *store) Create(ctx context.Context, w *Withdrawal) error {
	now := time.Now().UTC()
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Status == "" {
		w.Status = StatusPending
	}
	w.CreatedAt = now
	w.UpdatedAt = now
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO withdrawal_transactions (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		w.ID, w.ProfileID, w.Amount, w.BankCode, w.AccountNumber, w.AccountName, w.RecipientCode,
		w.TransferCode, w.Reference, w.Status, w.LedgerDebited, now.Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*Withdrawal, error) {
	return s.getBy(ctx, "id", id)
}

func (s *store) GetByTransferCode(ctx context.Context, transferCode string) (*Withdrawal, error) {
	return s.getBy(ctx, "transfer_code", transferCode)
}

func (s *store) getBy(ctx context.Context, column, value string) (*Withdrawal, error) {
	w, err := scan(s.q.QueryRowContext(ctx,
		"SELECT "+columns+" FROM withdrawal_transactions WHERE "+column+" = ?", value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get withdrawal: %w", err)
	}
	return w, nil
}

func (s *store) ListByProfile(ctx context.Context, profileID string, limit int) ([]Withdrawal, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.list(ctx,
		"SELECT "+columns+" FROM withdrawal_transactions WHERE profile_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		profileID, limit)
}

func (s *store) ListByStatus(ctx context.Context, status Status, limit int) ([]Withdrawal, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.list(ctx,
		"SELECT "+columns+" FROM withdrawal_transactions WHERE status = ? ORDER BY created_at ASC, rowid ASC LIMIT ?",
		status, limit)
}

func (s *store) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE withdrawal_transactions SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, time.Now().UTC().Unix(), id, from)
	if err != nil {
		return fmt.Errorf("update withdrawal status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusConflict
	}
	log.Info("Withdrawal status updated", "withdrawalID", id, "from", from, "to", to)
	return nil
}

func (s *store) ListStale(ctx context.Context, cutoff time.Time) ([]Withdrawal, error) {
	return s.list(ctx,
		"SELECT "+columns+" FROM withdrawal_transactions WHERE status = ? AND alerted_at IS NULL AND created_at <= ? ORDER BY created_at ASC",
		StatusPending, cutoff.UTC().Unix())
}

func (s *store) MarkAlerted(ctx context.Context, id string, at time.Time) error {
	_, err := s.q.ExecContext(ctx,
		"UPDATE withdrawal_transactions SET alerted_at = ? WHERE id = ?", at.UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("mark withdrawal alerted: %w", err)
	}
	return nil
}

func (s *store) list(ctx context.Context, query string, args ...any) ([]Withdrawal, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	defer rows.Close()

	var out []Withdrawal
	for rows.Next() {
		w, err := scan(rows)
		if err != nil {
			log.Error("Failed to scan withdrawal row", "error", err)
			continue
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func scan(scanner interface{ Scan(...any) error }) (*Withdrawal, error) {
	var (
		w                    Withdrawal
		alertedAt            sql.NullInt64
		createdAt, updatedAt int64
	)
	err := scanner.Scan(&w.ID, &w.ProfileID, &w.Amount, &w.BankCode, &w.AccountNumber, &w.AccountName,
		&w.RecipientCode, &w.TransferCode, &w.Reference, &w.Status, &w.LedgerDebited, &alertedAt,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if alertedAt.Valid {
		t := time.Unix(alertedAt.Int64, 0).UTC()
		w.AlertedAt = &t
	}
	w.CreatedAt = time.Unix(createdAt, 0).UTC()
	w.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &w, nil
}
