package transaction

import "context"

// Repository defines the interface for transaction data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// ListLatest retrieves the most recent transactions across all
	// accounts, ordered by transaction date descending.
	ListLatest(ctx context.Context, limit, offset int) ([]*Transaction, error)

	// ListByAccountID retrieves transactions for a specific account,
	// ordered by transaction date descending.
	ListByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]*Transaction, error)

	// Begin opens the storage transaction one sync run executes inside.
	Begin(ctx context.Context) (SyncTx, error)
}

// SyncTx is the transactional surface the sync engine stages inserts
// against. Nothing staged is visible to other sessions until Commit,
// and the existence check sees inserts staged earlier in the same run.
type SyncTx interface {
	// ExistsByPlaidID reports whether a transaction with the given
	// Plaid transaction ID already exists (committed or staged here).
	ExistsByPlaidID(ctx context.Context, plaidTransactionID string) (bool, error)

	// Insert stages a new transaction. Returns ErrDuplicate if the
	// uniqueness constraint on plaid_transaction_id rejects the row.
	Insert(ctx context.Context, params CreateParams) error

	// Commit makes all staged inserts visible atomically.
	Commit() error

	// Rollback discards all staged inserts. Calling it after a
	// successful Commit is a no-op.
	Rollback() error
}
