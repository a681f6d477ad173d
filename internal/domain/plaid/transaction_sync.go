package plaid

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"minty/internal/domain/account"
	"minty/internal/domain/transaction"
	plaidclient "minty/internal/infrastructure/plaid"
)

// DefaultWindowDays is the trailing window used when the caller does not
// ask for a specific one. A policy default, not a provider limit.
const DefaultWindowDays = 30

// Client is the slice of the Plaid client the sync engine consumes.
type Client interface {
	GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]plaidclient.Transaction, error)
}

// SyncOptions controls one sync run. Zero values mean defaults:
// DefaultWindowDays for WindowDays, today for ReferenceDate. Larger
// windows support backfills.
type SyncOptions struct {
	WindowDays    int
	ReferenceDate time.Time
}

// SyncResult contains the results of a transaction sync run.
// Processed counts raw provider records seen, not rows inserted, so a
// caller can tell "no provider-side activity" from "all duplicates".
type SyncResult struct {
	RunID     string
	AccountID int64
	Processed int
	Created   int
	Skipped   int
	StartDate time.Time
	EndDate   time.Time
}

// TransactionSyncService reconciles Plaid transactions into local storage.
// It never retries provider failures; those propagate to the caller,
// which owns retry policy.
type TransactionSyncService struct {
	client          Client
	accountRepo     account.Repository
	transactionRepo transaction.Repository
}

// NewTransactionSyncService creates a new transaction sync service
func NewTransactionSyncService(client Client, accountRepo account.Repository, transactionRepo transaction.Repository) *TransactionSyncService {
	return &TransactionSyncService{
		client:          client,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// SyncAccountTransactions runs one sync for one account: fetches the
// date window from Plaid and stages an insert for every record not seen
// before, committing all inserts as a single atomic unit. Repeated runs
// over the same window are idempotent; the uniqueness constraint on
// plaid_transaction_id backstops concurrent runs for the same account.
func (s *TransactionSyncService) SyncAccountTransactions(ctx context.Context, accountID int64, opts SyncOptions) (*SyncResult, error) {
	acct, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.AccessToken == "" {
		return nil, fmt.Errorf("account %d has no access token configured", accountID)
	}

	windowDays := opts.WindowDays
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	endDate := opts.ReferenceDate
	if endDate.IsZero() {
		endDate = time.Now()
	}
	endDate = truncateToDate(endDate)
	startDate := endDate.AddDate(0, 0, -windowDays)

	records, err := s.client.GetTransactions(ctx, acct.AccessToken, startDate, endDate)
	if err != nil {
		// Propagated unchanged; the boundary layer decides how much
		// of the provider detail reaches the outside.
		return nil, err
	}

	result := &SyncResult{
		RunID:     uuid.New().String(),
		AccountID: accountID,
		Processed: len(records),
		StartDate: startDate,
		EndDate:   endDate,
	}

	tx, err := s.transactionRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sync transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range records {
		created, err := s.reconcile(ctx, tx, acct.ID, &records[i])
		if err != nil {
			return nil, err
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sync transaction: %w", err)
	}

	log.Printf("Sync %s completed for account %d: processed=%d, created=%d, skipped=%d (window %s to %s)",
		result.RunID, accountID, result.Processed, result.Created, result.Skipped,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	return result, nil
}

// reconcile stages a single raw record. The existence check runs
// per-record inside the open storage transaction, so a record repeated
// within one fetch is caught too and the first occurrence wins.
func (s *TransactionSyncService) reconcile(ctx context.Context, tx transaction.SyncTx, accountID int64, rec *plaidclient.Transaction) (bool, error) {
	var plaidID *string
	if rec.TransactionID != "" {
		exists, err := tx.ExistsByPlaidID(ctx, rec.TransactionID)
		if err != nil {
			return false, fmt.Errorf("failed to check existing transaction %s: %w", rec.TransactionID, err)
		}
		if exists {
			return false, nil
		}
		id := rec.TransactionID
		plaidID = &id
	}
	// Records without a transaction ID are indistinguishable for
	// deduplication and are always treated as new.

	txDate, err := rec.GetDate()
	if err != nil {
		return false, fmt.Errorf("failed to parse date for transaction %s: %w", rec.TransactionID, err)
	}
	if txDate == nil {
		return false, fmt.Errorf("transaction %s has no date", rec.TransactionID)
	}

	params := transaction.CreateParams{
		AccountID:          accountID,
		PlaidTransactionID: plaidID,
		Amount:             rec.Amount,
		Date:               *txDate,
		Name:               rec.Name,
		MerchantName:       rec.MerchantName,
		Category:           transaction.JoinCategories(rec.Category),
		Pending:            rec.Pending,
	}

	err = tx.Insert(ctx, params)
	if errors.Is(err, transaction.ErrDuplicate) {
		// Lost the race with a concurrent sync for this account; the
		// row is already there, which is exactly what we wanted.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction %s: %w", rec.TransactionID, err)
	}
	return true, nil
}

func truncateToDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
