package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"minty/internal/domain/transaction"
)

type TransactionRepository struct {
	db *DB
}

var _ transaction.Repository = (*TransactionRepository)(nil)

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, account_id, plaid_transaction_id, amount, date, name, merchant_name, category, pending, created_at`

func (r *TransactionRepository) ListLatest(ctx context.Context, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY date DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// Begin opens the database transaction one sync run executes inside.
func (r *TransactionRepository) Begin(ctx context.Context) (transaction.SyncTx, error) {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &syncTx{tx: tx}, nil
}

// syncTx implements transaction.SyncTx on top of a traced Tx.
type syncTx struct {
	tx *Tx
}

func (s *syncTx) ExistsByPlaidID(ctx context.Context, plaidTransactionID string) (bool, error) {
	var exists bool
	err := s.tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE plaid_transaction_id = $1)`,
		plaidTransactionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction existence: %w", err)
	}
	return exists, nil
}

// Insert stages a new transaction. ON CONFLICT DO NOTHING keeps a
// duplicate plaid_transaction_id from aborting the whole transaction
// when two syncs for the same account race; the caller sees
// transaction.ErrDuplicate instead.
func (s *syncTx) Insert(ctx context.Context, params transaction.CreateParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (account_id, plaid_transaction_id, amount, date, name, merchant_name, category, pending)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (plaid_transaction_id) DO NOTHING
	`

	result, err := s.tx.ExecContext(
		ctx, query,
		params.AccountID, params.PlaidTransactionID, params.Amount, params.Date,
		params.Name, params.MerchantName, params.Category, params.Pending,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return transaction.ErrDuplicate
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		// Another sync committed this plaid_transaction_id first.
		return transaction.ErrDuplicate
	}

	return nil
}

func (s *syncTx) Commit() error {
	return s.tx.Commit()
}

func (s *syncTx) Rollback() error {
	return s.tx.Rollback()
}

func collectTransactions(rows *sql.Rows) ([]*transaction.Transaction, error) {
	var transactions []*transaction.Transaction
	for rows.Next() {
		var t transaction.Transaction
		var plaidID, name, merchantName, category sql.NullString

		err := rows.Scan(
			&t.ID, &t.AccountID, &plaidID, &t.Amount, &t.Date,
			&name, &merchantName, &category, &t.Pending, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if plaidID.Valid {
			t.PlaidTransactionID = &plaidID.String
		}
		t.Name = name.String
		if merchantName.Valid {
			t.MerchantName = &merchantName.String
		}
		if category.Valid {
			t.Category = &category.String
		}

		transactions = append(transactions, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}
