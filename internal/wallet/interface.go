package wallet

import "context"

// Ledger is the only way wallet balances change. Debit and Credit update the
// balance and append to the transaction log, so callers run them inside a
// database transaction.
type Ledger interface {
	Balance(ctx context.Context, profileID string) (int64, error)
	Debit(ctx context.Context, e Entry) (*Transaction, error)
	Credit(ctx context.Context, e Entry) (*Transaction, error)
	// Record appends to the transaction log without moving the balance, for
	// payments that settled outside the wallet.
	Record(ctx context.Context, e Entry) (*Transaction, error)
	ListTransactions(ctx context.Context, profileID string, limit int) ([]Transaction, error)
	SumByTournament(ctx context.Context, tournamentID string, txType TxType) (int64, error)
}
