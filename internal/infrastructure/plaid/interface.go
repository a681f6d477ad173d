package plaid

import (
	"context"
	"time"
)

// ClientInterface defines the operations consumed from the Plaid API
type ClientInterface interface {
	CreateLinkToken(ctx context.Context, userID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error)
	GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]Transaction, error)
}
