package tournament

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/mauv0809/kingside/internal/currency"
	"github.com/mauv0809/kingside/internal/database"
)

const tournamentColumns = `id, slug, title, description, host_id, entry_fee, currency, max_participants,
	start_date, end_date, platform, external_link, status, prize_pool, created_at, updated_at`

const participantColumns = `id, tournament_id, profile_id, payment_status, payment_method,
	payment_reference, amount_paid, joined_at, updated_at`

// New creates a Store bound to q, which may be the database or an open transaction.
func New(q database.Querier) Store {
	return &store{q: q}
}

// Create inserts a new tournament, filling in the id, slug and timestamps when unset.
func (s *store) Create(ctx context.Context, t *Tournament) error {
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Currency == "" {
		t.Currency = currency.DefaultCode
	}
	if t.Status == "" {
		t.Status = StatusDraft
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = t.CreatedAt
	if t.Slug == "" {
		base, err := s.uniqueSlug(ctx, t.Title)
		if err != nil {
			return err
		}
		t.Slug = base
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO tournaments (`+tournamentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Slug, t.Title, nullString(t.Description), t.HostID, t.EntryFee, t.Currency, nullInt(t.MaxParticipants),
		nullTime(t.StartDate), nullTime(t.EndDate), nullString(t.Platform), nullString(t.ExternalLink),
		t.Status, t.PrizePool, t.CreatedAt.Unix(), t.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}
	log.Info("Tournament created", "tournamentID", t.ID, "slug", t.Slug, "hostID", t.HostID, "entryFee", t.EntryFee)
	return nil
}

func (s *store) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "tournament"
	}
	var exists bool
	if err := s.q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM tournaments WHERE slug = ?)", base).Scan(&exists); err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if !exists {
		return base, nil
	}
	return base + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0], nil
}

func (s *store) Get(ctx context.Context, id string) (*Tournament, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+tournamentColumns+" FROM tournaments WHERE id = ?", id)
	t, err := scanTournament(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tournament %s: %w", id, err)
	}
	return t, nil
}

func (s *store) List(ctx context.Context, filter ListFilter) ([]Tournament, error) {
	query := "SELECT " + tournamentColumns + " FROM tournaments WHERE 1 = 1"
	var args []any
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.HostID != "" {
		query += " AND host_id = ?"
		args = append(args, filter.HostID)
	}
	query += " ORDER BY COALESCE(start_date, created_at) ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	return s.queryTournaments(ctx, query, args...)
}

// UpdateStatus moves a tournament from one status to another. It fails with
// ErrStatusConflict when the tournament is no longer in the expected status.
func (s *store) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE tournaments SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, time.Now().UTC().Unix(), id, from)
	if err != nil {
		return fmt.Errorf("update tournament status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// ListDueTransitions returns published tournaments whose start has passed and
// ongoing tournaments whose end has passed.
func (s *store) ListDueTransitions(ctx context.Context, now time.Time) ([]Tournament, error) {
	ts := now.UTC().Unix()
	return s.queryTournaments(ctx, `
		SELECT `+tournamentColumns+` FROM tournaments
		WHERE (status = ? AND start_date IS NOT NULL AND start_date <= ?)
		   OR (status = ? AND end_date IS NOT NULL AND end_date <= ?)
		ORDER BY start_date ASC`,
		StatusPublished, ts, StatusOngoing, ts)
}

func (s *store) AdjustPrizePool(ctx context.Context, id string, delta int64) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE tournaments SET prize_pool = MAX(prize_pool + ?, 0), updated_at = ? WHERE id = ?",
		delta, time.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("adjust prize pool: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *store) GetParticipant(ctx context.Context, tournamentID, profileID string) (*Participant, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM tournament_participants WHERE tournament_id = ? AND profile_id = ?",
		tournamentID, profileID)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

// AddParticipant inserts a participant. A second row for the same
// (tournament, profile) pair yields ErrDuplicateParticipant.
func (s *store) AddParticipant(ctx context.Context, p *Participant) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = now
	}
	p.UpdatedAt = p.JoinedAt

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO tournament_participants (`+participantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TournamentID, p.ProfileID, p.PaymentStatus, p.PaymentMethod,
		p.PaymentReference, p.AmountPaid, p.JoinedAt.Unix(), p.UpdatedAt.Unix(),
	)
	if database.IsUniqueViolation(err) {
		return ErrDuplicateParticipant
	}
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (s *store) RemoveParticipant(ctx context.Context, tournamentID, profileID string) error {
	res, err := s.q.ExecContext(ctx,
		"DELETE FROM tournament_participants WHERE tournament_id = ? AND profile_id = ?",
		tournamentID, profileID)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (s *store) SetPaymentStatus(ctx context.Context, tournamentID, profileID string, status PaymentStatus) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE tournament_participants SET payment_status = ?, updated_at = ? WHERE tournament_id = ? AND profile_id = ?",
		status, time.Now().UTC().Unix(), tournamentID, profileID)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (s *store) ListParticipants(ctx context.Context, tournamentID string) ([]Participant, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+participantColumns+" FROM tournament_participants WHERE tournament_id = ? ORDER BY joined_at ASC",
		tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			log.Error("Failed to scan participant row", "error", err, "tournamentID", tournamentID)
			continue
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

func (s *store) CountPaidParticipants(ctx context.Context, tournamentID string) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tournament_participants WHERE tournament_id = ? AND payment_status = ?",
		tournamentID, PaymentPaid).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

func (s *store) PaidCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT tournament_id, COUNT(*) FROM tournament_participants WHERE payment_status = ? GROUP BY tournament_id",
		PaymentPaid)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id    string
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan participant count: %w", err)
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

func (s *store) queryTournaments(ctx context.Context, query string, args ...any) ([]Tournament, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			log.Error("Failed to scan tournament row", "error", err)
			continue
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

func scanTournament(scanner interface{ Scan(...any) error }) (*Tournament, error) {
	var (
		t                           Tournament
		description, platform, link sql.NullString
		maxParticipants, start, end sql.NullInt64
		createdAt, updatedAt        int64
	)
	err := scanner.Scan(
		&t.ID, &t.Slug, &t.Title, &description, &t.HostID, &t.EntryFee, &t.Currency, &maxParticipants,
		&start, &end, &platform, &link, &t.Status, &t.PrizePool, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Description = description.String
	t.Platform = platform.String
	t.ExternalLink = link.String
	if maxParticipants.Valid {
		n := int(maxParticipants.Int64)
		t.MaxParticipants = &n
	}
	t.StartDate = timePtr(start)
	t.EndDate = timePtr(end)
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	t.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &t, nil
}

func scanParticipant(scanner interface{ Scan(...any) error }) (*Participant, error) {
	var (
		p                   Participant
		reference           sql.NullString
		joinedAt, updatedAt int64
	)
	err := scanner.Scan(
		&p.ID, &p.TournamentID, &p.ProfileID, &p.PaymentStatus, &p.PaymentMethod,
		&reference, &p.AmountPaid, &joinedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reference.Valid {
		ref := reference.String
		p.PaymentReference = &ref
	}
	p.JoinedAt = time.Unix(joinedAt, 0).UTC()
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &p, nil
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().Unix(), Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
