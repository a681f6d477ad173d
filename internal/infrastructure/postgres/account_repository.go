package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"minty/internal/domain/account"
	"minty/internal/infrastructure/crypto"
)

// AccountRepository stores accounts. Plaid access tokens are encrypted
// before they hit the database and decrypted on read.
type AccountRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository(db *DB, encryptor *crypto.Encryptor) *AccountRepository {
	return &AccountRepository{db: db, encryptor: encryptor}
}

func (r *AccountRepository) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", account.ErrInvalidInput, err)
	}

	encryptedToken, err := r.encryptor.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	query := `
		INSERT INTO accounts (user_id, plaid_account_id, plaid_access_token, name, official_name, type, subtype)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	acct := account.Account{
		UserID:         params.UserID,
		PlaidAccountID: params.PlaidAccountID,
		AccessToken:    params.AccessToken,
		Name:           params.Name,
		OfficialName:   params.OfficialName,
		Type:           params.Type,
		Subtype:        params.Subtype,
	}

	err = r.db.QueryRowContext(
		ctx, query,
		params.UserID, params.PlaidAccountID, encryptedToken, params.Name,
		params.OfficialName, nullIfEmpty(params.Type), nullIfEmpty(params.Subtype),
	).Scan(&acct.ID, &acct.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return &acct, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	query := `
		SELECT id, user_id, plaid_account_id, plaid_access_token, name, official_name, type, subtype, created_at
		FROM accounts
		WHERE id = $1
	`

	acct, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if acct.AccessToken != "" {
		decrypted, err := r.encryptor.Decrypt(acct.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt access token for account %d: %w", id, err)
		}
		acct.AccessToken = decrypted
	}

	return acct, nil
}

func (r *AccountRepository) ListByUserID(ctx context.Context, userID string) ([]*account.Account, error) {
	// Access tokens stay out of listings on purpose.
	query := `
		SELECT id, user_id, plaid_account_id, '', name, official_name, type, subtype, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// Delete removes an account. Its transactions go with it via the
// ON DELETE CASCADE on transactions.account_id.
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var acct account.Account
	var plaidAccountID, accessToken, name, officialName, accountType, subtype sql.NullString

	err := row.Scan(
		&acct.ID, &acct.UserID, &plaidAccountID, &accessToken,
		&name, &officialName, &accountType, &subtype, &acct.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if plaidAccountID.Valid {
		acct.PlaidAccountID = &plaidAccountID.String
	}
	acct.AccessToken = accessToken.String
	acct.Name = name.String
	if officialName.Valid {
		acct.OfficialName = &officialName.String
	}
	acct.Type = accountType.String
	acct.Subtype = subtype.String

	return &acct, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
