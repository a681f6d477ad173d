package postgres

import (
	"context"
	"fmt"
)

// Statements are idempotent so startup can apply them unconditionally.
// transactions.plaid_transaction_id is the idempotency key for sync:
// unique when present, and multiple NULLs are allowed so records the
// provider sent without an ID are never deduplicated.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id                 BIGSERIAL PRIMARY KEY,
	user_id            VARCHAR(50) NOT NULL,
	plaid_account_id   VARCHAR(100) UNIQUE,
	plaid_access_token TEXT,
	name               VARCHAR(100),
	official_name      VARCHAR(100),
	type               VARCHAR(50),
	subtype            VARCHAR(50),
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transactions (
	id                   BIGSERIAL PRIMARY KEY,
	account_id           BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	plaid_transaction_id VARCHAR(100) UNIQUE,
	amount               NUMERIC(19, 4) NOT NULL,
	date                 DATE NOT NULL,
	name                 VARCHAR(200),
	merchant_name        VARCHAR(200),
	category             VARCHAR(200),
	pending              BOOLEAN NOT NULL DEFAULT FALSE,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions (account_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date DESC);
`

// Migrate creates the tables and indexes the API depends on.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
