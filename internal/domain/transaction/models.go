package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	// ErrDuplicate is returned when an insert is rejected by the
	// plaid_transaction_id uniqueness constraint. Sync treats this as
	// "already exists, skip", which is what makes concurrent syncs for
	// one account safe without locking.
	ErrDuplicate = errors.New("transaction already exists")

	ErrTransactionNotFound = errors.New("transaction not found")
)

// Transaction represents a single bank transaction synced from Plaid.
// Amount keeps the provider's sign convention: positive = debit/spend.
type Transaction struct {
	ID                 int64           `json:"id"`
	AccountID          int64           `json:"accountId"`
	PlaidTransactionID *string         `json:"plaidTransactionId,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Date               time.Time       `json:"date"`
	Name               string          `json:"name"`
	MerchantName       *string         `json:"merchantName,omitempty"`
	Category           *string         `json:"category"`
	Pending            bool            `json:"pending"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// CreateParams contains parameters for creating a new transaction
type CreateParams struct {
	AccountID          int64
	PlaidTransactionID *string
	Amount             decimal.Decimal
	Date               time.Time
	Name               string
	MerchantName       *string
	Category           *string
	Pending            bool
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.AccountID <= 0 {
		return errors.New("valid account ID is required")
	}
	if p.Date.IsZero() {
		return errors.New("transaction date is required")
	}
	if p.PlaidTransactionID != nil && *p.PlaidTransactionID == "" {
		return errors.New("plaid transaction ID must not be empty when set")
	}
	return nil
}

// JoinCategories collapses a provider category list into a single
// comma-joined string. Returns nil for an empty list so the column
// stays NULL when the provider sent no taxonomy.
func JoinCategories(categories []string) *string {
	if len(categories) == 0 {
		return nil
	}
	joined := strings.Join(categories, ",")
	return &joined
}
