package compensation

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

const columns = `id, kind, profile_id, tournament_id, withdrawal_id, reference, amount, reason, status, attempts, last_error, created_at, updated_at`

// New creates a Store bound to q, which may be the database or an open transaction.
func New(q database.Querier) Store {
	return &store{q: q}
}

func (s *store) Create(ctx context.Context, c *Compensation) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Status = StatusPending
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO compensations (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?)`,
		c.ID, c.Kind, c.ProfileID, nullable(c.TournamentID), nullable(c.WithdrawalID), nullable(c.Reference), c.Amount, c.Reason,
		c.Status, now.Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("insert compensation: %w", err)
	}
	log.Info("Compensation recorded", "compensationID", c.ID, "kind", c.Kind, "profileID", c.ProfileID, "amount", c.Amount)
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*Compensation, error) {
	c, err := scan(s.q.QueryRowContext(ctx, "SELECT "+columns+" FROM compensations WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get compensation %s: %w", id, err)
	}
	return c, nil
}

func (s *store) ListPending(ctx context.Context, limit int) ([]Compensation, error) {
	return s.ListByStatus(ctx, StatusPending, limit)
}

func (s *store) ListByStatus(ctx context.Context, status Status, limit int) ([]Compensation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+columns+" FROM compensations WHERE status = ? ORDER BY created_at ASC, rowid ASC LIMIT ?", status, limit)
	if err != nil {
		return nil, fmt.Errorf("list compensations: %w", err)
	}
	defer rows.Close()

	var out []Compensation
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			log.Error("Failed to scan compensation row", "error", err)
			continue
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// MarkApplied flips a pending compensation to applied. It returns
// ErrNotPending when another worker got there first.
func (s *store) MarkApplied(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE compensations SET status = ?, attempts = attempts + 1, last_error = NULL, updated_at = ? WHERE id = ? AND status = ?",
		StatusApplied, time.Now().UTC().Unix(), id, StatusPending)
	if err != nil {
		return fmt.Errorf("mark compensation applied: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotPending
	}
	return nil
}

// RecordFailure counts a failed attempt and marks the compensation failed once
// maxAttempts is reached. It returns the resulting status.
func (s *store) RecordFailure(ctx context.Context, id string, cause error, maxAttempts int) (Status, error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := s.q.ExecContext(ctx, `
		UPDATE compensations SET
			attempts = attempts + 1,
			last_error = ?,
			status = CASE WHEN attempts + 1 >= ? THEN ? ELSE status END,
			updated_at = ?
		WHERE id = ? AND status = ?`,
		msg, maxAttempts, StatusFailed, time.Now().UTC().Unix(), id, StatusPending)
	if err != nil {
		return "", fmt.Errorf("record compensation failure: %w", err)
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return c.Status, nil
}

func scan(scanner interface{ Scan(...any) error }) (*Compensation, error) {
	var (
		c                          Compensation
		tournamentID, withdrawalID sql.NullString
		reference, lastError       sql.NullString
		createdAt, updatedAt       int64
	)
	err := scanner.Scan(&c.ID, &c.Kind, &c.ProfileID, &tournamentID, &withdrawalID, &reference, &c.Amount, &c.Reason,
		&c.Status, &c.Attempts, &lastError, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.TournamentID = tournamentID.String
	c.WithdrawalID = withdrawalID.String
	c.Reference = reference.String
	c.LastError = lastError.String
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	c.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &c, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
