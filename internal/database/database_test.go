package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	for _, table := range []string{"tournaments", "tournament_participants", "wallets", "transactions", "withdrawal_transactions", "compensations"} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "Querying for %s table should not produce an error", table)
		assert.Equal(t, table, name)
	}

	var view string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='view' AND name='user_wallet_balance'").Scan(&view)
	require.NoError(t, err)
	assert.Equal(t, "user_wallet_balance", view)
}

func TestWithTx(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		err := WithTx(ctx, db, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO wallets (profile_id, balance, updated_at) VALUES ('p1', 100, 0)")
			return err
		})
		require.NoError(t, err)

		var balance int64
		require.NoError(t, db.QueryRow("SELECT balance FROM wallets WHERE profile_id = 'p1'").Scan(&balance))
		assert.Equal(t, int64(100), balance)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO wallets (profile_id, balance, updated_at) VALUES ('p2', 100, 0)"); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM wallets WHERE profile_id = 'p2'").Scan(&count))
		assert.Equal(t, 0, count)
	})
}

func TestConstraintDetection(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	_, err = db.Exec("INSERT INTO wallets (profile_id, balance, updated_at) VALUES ('p1', 0, 0)")
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO wallets (profile_id, balance, updated_at) VALUES ('p1', 0, 0)")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsCheckViolation(err))

	_, err = db.Exec("UPDATE wallets SET balance = -1 WHERE profile_id = 'p1'")
	require.Error(t, err)
	assert.True(t, IsCheckViolation(err))
	assert.False(t, IsUniqueViolation(err))

	assert.False(t, IsUniqueViolation(nil))
}
