package wallet

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

// New creates a Ledger bound to q, which may be the database or an open transaction.
func New(q database.Querier) Ledger {
	return &store{q: q}
}

// Balance returns the current balance, or zero for a profile without a wallet.
func (s *store) Balance(ctx context.Context, profileID string) (int64, error) {
	var balance int64
	err := s.q.QueryRowContext(ctx,
		"SELECT current_balance FROM user_wallet_balance WHERE profile_id = ?", profileID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

// Debit atomically decrements the balance if it covers the amount.
func (s *store) Debit(ctx context.Context, e Entry) (*Transaction, error) {
	if e.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	res, err := s.q.ExecContext(ctx,
		"UPDATE wallets SET balance = balance - ?, updated_at = ? WHERE profile_id = ? AND balance >= ?",
		e.Amount, time.Now().UTC().Unix(), e.ProfileID, e.Amount)
	if err != nil {
		if database.IsCheckViolation(err) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("debit wallet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrInsufficientFunds
	}
	tx, err := s.insert(ctx, e)
	if err != nil {
		return nil, err
	}
	log.Info("Wallet debited", "profileID", e.ProfileID, "amount", e.Amount, "type", e.Type)
	return tx, nil
}

// Credit increments the balance, creating the wallet on first use.
func (s *store) Credit(ctx context.Context, e Entry) (*Transaction, error) {
	if e.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	now := time.Now().UTC().Unix()
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO wallets (profile_id, balance, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			balance = balance + excluded.balance,
			updated_at = excluded.updated_at`,
		e.ProfileID, e.Amount, now)
	if err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}
	tx, err := s.insert(ctx, e)
	if err != nil {
		return nil, err
	}
	log.Info("Wallet credited", "profileID", e.ProfileID, "amount", e.Amount, "type", e.Type)
	return tx, nil
}

func (s *store) Record(ctx context.Context, e Entry) (*Transaction, error) {
	if e.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.insert(ctx, e)
}

func (s *store) insert(ctx context.Context, e Entry) (*Transaction, error) {
	tx := &Transaction{
		ID:           uuid.NewString(),
		ProfileID:    e.ProfileID,
		Amount:       e.Amount,
		Type:         e.Type,
		Status:       statusSuccess,
		Description:  e.Description,
		TournamentID: optional(e.TournamentID),
		Reference:    optional(e.Reference),
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions (id, profile_id, amount, type, status, description, tournament_id, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.ProfileID, tx.Amount, tx.Type, tx.Status, tx.Description, tx.TournamentID, tx.Reference, tx.CreatedAt.Unix())
	if database.IsUniqueViolation(err) {
		return nil, ErrDuplicateReference
	}
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

func (s *store) ListTransactions(ctx context.Context, profileID string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, profile_id, amount, type, status, description, tournament_id, reference, created_at
		FROM transactions WHERE profile_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var (
			t                 Transaction
			tournamentID, ref sql.NullString
			createdAt         int64
		)
		if err := rows.Scan(&t.ID, &t.ProfileID, &t.Amount, &t.Type, &t.Status, &t.Description, &tournamentID, &ref, &createdAt); err != nil {
			log.Error("Failed to scan transaction row", "error", err, "profileID", profileID)
			continue
		}
		if tournamentID.Valid {
			t.TournamentID = &tournamentID.String
		}
		if ref.Valid {
			t.Reference = &ref.String
		}
		t.CreatedAt = time.Unix(createdAt, 0).UTC()
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (s *store) SumByTournament(ctx context.Context, tournamentID string, txType TxType) (int64, error) {
	var total int64
	err := s.q.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE tournament_id = ? AND type = ? AND status = ?",
		tournamentID, txType, statusSuccess).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return total, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
