package tournament_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mauv0809/kingside/internal/database"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (tournament.Store, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return tournament.New(db), db, teardown
}

func newTournament(title string, fee int64, start time.Time) *tournament.Tournament {
	return &tournament.Tournament{
		Title:     title,
		HostID:    "host-1",
		EntryFee:  fee,
		Status:    tournament.StatusPublished,
		StartDate: &start,
	}
}

func TestCreateAndGet(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	start := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	capacity := 16
	tr := newTournament("Lagos Blitz Open", 5000, start)
	tr.MaxParticipants = &capacity
	require.NoError(t, store.Create(ctx, tr))

	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, "lagos-blitz-open", tr.Slug)
	assert.Equal(t, "NGN", tr.Currency)

	got, err := store.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lagos Blitz Open", got.Title)
	assert.Equal(t, int64(5000), got.EntryFee)
	require.NotNil(t, got.StartDate)
	assert.True(t, start.Equal(*got.StartDate))
	require.NotNil(t, got.MaxParticipants)
	assert.Equal(t, 16, *got.MaxParticipants)
	assert.Nil(t, got.EndDate)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, tournament.ErrNotFound)
}

func TestCreate_SlugCollision(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	start := time.Now().Add(time.Hour)
	first := newTournament("Weekend Rapid", 0, start)
	second := newTournament("Weekend Rapid", 0, start)
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	assert.Equal(t, "weekend-rapid", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "weekend-rapid-")
}

func TestParticipants(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	tr := newTournament("Arena", 5000, time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, tr))

	ref := "ref-1"
	p := &tournament.Participant{
		TournamentID:     tr.ID,
		ProfileID:        "profile-1",
		PaymentStatus:    tournament.PaymentPaid,
		PaymentMethod:    tournament.MethodPaystack,
		PaymentReference: &ref,
		AmountPaid:       5000,
	}
	require.NoError(t, store.AddParticipant(ctx, p))

	t.Run("duplicate pair is rejected", func(t *testing.T) {
		dup := &tournament.Participant{
			TournamentID:  tr.ID,
			ProfileID:     "profile-1",
			PaymentStatus: tournament.PaymentPaid,
			PaymentMethod: tournament.MethodWallet,
		}
		err := store.AddParticipant(ctx, dup)
		assert.ErrorIs(t, err, tournament.ErrDuplicateParticipant)
	})

	t.Run("get returns stored reference", func(t *testing.T) {
		got, err := store.GetParticipant(ctx, tr.ID, "profile-1")
		require.NoError(t, err)
		require.NotNil(t, got.PaymentReference)
		assert.Equal(t, "ref-1", *got.PaymentReference)
		assert.Equal(t, tournament.PaymentPaid, got.PaymentStatus)
	})

	t.Run("count only includes paid", func(t *testing.T) {
		require.NoError(t, store.AddParticipant(ctx, &tournament.Participant{
			TournamentID:  tr.ID,
			ProfileID:     "profile-2",
			PaymentStatus: tournament.PaymentPending,
			PaymentMethod: tournament.MethodPaystack,
		}))
		count, err := store.CountPaidParticipants(ctx, tr.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		counts, err := store.PaidCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{tr.ID: 1}, counts)

		all, err := store.ListParticipants(ctx, tr.ID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("set payment status", func(t *testing.T) {
		require.NoError(t, store.SetPaymentStatus(ctx, tr.ID, "profile-2", tournament.PaymentFailed))
		got, err := store.GetParticipant(ctx, tr.ID, "profile-2")
		require.NoError(t, err)
		assert.Equal(t, tournament.PaymentFailed, got.PaymentStatus)
		assert.ErrorIs(t, store.SetPaymentStatus(ctx, tr.ID, "nobody", tournament.PaymentPaid), tournament.ErrParticipantNotFound)
	})

	t.Run("remove deletes the row once", func(t *testing.T) {
		require.NoError(t, store.RemoveParticipant(ctx, tr.ID, "profile-1"))
		_, err := store.GetParticipant(ctx, tr.ID, "profile-1")
		assert.ErrorIs(t, err, tournament.ErrParticipantNotFound)
		assert.ErrorIs(t, store.RemoveParticipant(ctx, tr.ID, "profile-1"), tournament.ErrParticipantNotFound)
	})
}

func TestUpdateStatusIsConditional(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	tr := newTournament("Arena", 0, time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, tr))

	require.NoError(t, store.UpdateStatus(ctx, tr.ID, tournament.StatusPublished, tournament.StatusOngoing))
	err := store.UpdateStatus(ctx, tr.ID, tournament.StatusPublished, tournament.StatusOngoing)
	assert.ErrorIs(t, err, tournament.ErrStatusConflict)

	got, err := store.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tournament.StatusOngoing, got.Status)
}

func TestListDueTransitions(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	now := time.Now()

	started := newTournament("Started", 0, now.Add(-time.Minute))
	upcoming := newTournament("Upcoming", 0, now.Add(time.Hour))
	end := now.Add(-time.Second)
	finished := newTournament("Finished", 0, now.Add(-2*time.Hour))
	finished.Status = tournament.StatusOngoing
	finished.EndDate = &end
	draft := newTournament("Draft", 0, now.Add(-time.Hour))
	draft.Status = tournament.StatusDraft

	for _, tr := range []*tournament.Tournament{started, upcoming, finished, draft} {
		require.NoError(t, store.Create(ctx, tr))
	}

	due, err := store.ListDueTransitions(ctx, now)
	require.NoError(t, err)
	var ids []string
	for _, tr := range due {
		ids = append(ids, tr.ID)
	}
	assert.ElementsMatch(t, []string{started.ID, finished.ID}, ids)
}

func TestAdjustPrizePool(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	tr := newTournament("Arena", 5000, time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, tr))

	require.NoError(t, store.AdjustPrizePool(ctx, tr.ID, 5000))
	require.NoError(t, store.AdjustPrizePool(ctx, tr.ID, 5000))
	require.NoError(t, store.AdjustPrizePool(ctx, tr.ID, -5000))

	got, err := store.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.PrizePool)

	assert.ErrorIs(t, store.AdjustPrizePool(ctx, "missing", 1), tournament.ErrNotFound)
}

func TestList(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	a := newTournament("A", 0, time.Now().Add(time.Hour))
	b := newTournament("B", 0, time.Now().Add(2*time.Hour))
	b.Status = tournament.StatusDraft
	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, b))

	all, err := store.List(ctx, tournament.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Title)

	published, err := store.List(ctx, tournament.ListFilter{Status: tournament.StatusPublished})
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, a.ID, published[0].ID)
}
