package account

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// Account represents a bank account linked through Plaid.
// AccessToken holds the decrypted Plaid credential and is never serialized.
type Account struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"userId"`
	PlaidAccountID *string   `json:"plaidAccountId,omitempty"`
	AccessToken    string    `json:"-"`
	Name           string    `json:"name"`
	OfficialName   *string   `json:"officialName,omitempty"`
	Type           string    `json:"type,omitempty"`
	Subtype        string    `json:"subtype,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CreateParams contains parameters for creating a new account
type CreateParams struct {
	UserID         string
	PlaidAccountID *string
	AccessToken    string
	Name           string
	OfficialName   *string
	Type           string
	Subtype        string
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if p.Name == "" {
		return errors.New("account name is required")
	}
	return nil
}
