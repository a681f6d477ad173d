package account

import "context"

// Repository defines the interface for account data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, params CreateParams) (*Account, error)

	// GetByID retrieves an account by its ID. Returns ErrAccountNotFound
	// when no such account exists.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// ListByUserID retrieves all accounts for a specific user
	ListByUserID(ctx context.Context, userID string) ([]*Account, error)

	// Delete removes an account. Its transactions are removed by the
	// storage layer's cascade.
	Delete(ctx context.Context, id int64) error
}
