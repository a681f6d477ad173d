package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	linkTokenPath    = "/link/token/create"
	exchangePath     = "/item/public_token/exchange"
	transactionsPath = "/transactions/get"

	defaultTimeout    = 30 * time.Second
	defaultClientName = "Finance App"

	// Plaid's maximum page size for /transactions/get
	pageSize = 500
)

// environments maps the PLAID_ENV selector to its API base URL.
var environments = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

// Config holds the credentials and environment for a Client.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox, development or production
	BaseURL     string // overrides Environment when set (used by tests)
	Timeout     time.Duration
	ClientName  string // shown to users inside Plaid Link
}

// Client handles communication with the Plaid API
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
	clientName string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new Plaid API client
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		env, ok := environments[strings.ToLower(cfg.Environment)]
		if !ok {
			return nil, fmt.Errorf("unknown plaid environment %q", cfg.Environment)
		}
		baseURL = env
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientName := cfg.ClientName
	if clientName == "" {
		clientName = defaultClientName
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		clientID:   cfg.ClientID,
		secret:     cfg.Secret,
		clientName: clientName,
	}, nil
}

// APIError is returned for any transport or Plaid-level failure. The
// diagnostic detail is meant for operators and logs; handlers must not
// echo it to end users.
type APIError struct {
	StatusCode     int    `json:"-"`
	ErrorType      string `json:"error_type"`
	ErrorCode      string `json:"error_code"`
	ErrorMessage   string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
	RequestID      string `json:"request_id"`

	cause error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("plaid request failed: %v", e.cause)
	}
	return fmt.Sprintf("plaid API error (status %d): %s/%s - %s",
		e.StatusCode, e.ErrorType, e.ErrorCode, e.ErrorMessage)
}

func (e *APIError) Unwrap() error { return e.cause }

// Transaction represents a raw transaction record as returned by Plaid
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"` // positive = debit, per Plaid convention
	DateString    string          `json:"date"`   // "2024-01-05" format
	Name          string          `json:"name"`
	MerchantName  *string         `json:"merchant_name"`
	Category      []string        `json:"category"`
	Pending       bool            `json:"pending"`
}

// GetDate parses and returns the transaction date
func (t *Transaction) GetDate() (*time.Time, error) {
	if t.DateString == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", t.DateString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date '%s': %w", t.DateString, err)
	}
	return &parsed, nil
}

// ExchangeResult is the durable credential returned by a public token exchange
type ExchangeResult struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

type linkTokenUser struct {
	ClientUserID string `json:"client_user_id"`
}

type linkTokenCreateRequest struct {
	ClientID     string        `json:"client_id"`
	Secret       string        `json:"secret"`
	ClientName   string        `json:"client_name"`
	Language     string        `json:"language"`
	CountryCodes []string      `json:"country_codes"`
	Products     []string      `json:"products"`
	User         linkTokenUser `json:"user"`
}

type linkTokenCreateResponse struct {
	LinkToken string `json:"link_token"`
	RequestID string `json:"request_id"`
}

type exchangeRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

type transactionsGetOptions struct {
	Count  int `json:"count"`
	Offset int `json:"offset"`
}

type transactionsGetRequest struct {
	ClientID    string                 `json:"client_id"`
	Secret      string                 `json:"secret"`
	AccessToken string                 `json:"access_token"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	Options     transactionsGetOptions `json:"options"`
}

type transactionsGetResponse struct {
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
	RequestID         string        `json:"request_id"`
}

// CreateLinkToken creates a short-lived link token used to initialize
// the Plaid Link widget on the client
func (c *Client) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user ID is required")
	}

	req := linkTokenCreateRequest{
		ClientID:     c.clientID,
		Secret:       c.secret,
		ClientName:   c.clientName,
		Language:     "en",
		CountryCodes: []string{"US"},
		Products:     []string{"transactions"},
		User:         linkTokenUser{ClientUserID: userID},
	}

	var resp linkTokenCreateResponse
	if err := c.post(ctx, linkTokenPath, req, &resp); err != nil {
		return "", err
	}
	return resp.LinkToken, nil
}

// ExchangePublicToken exchanges a temporary public token for a durable
// access token to be stored against an account
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error) {
	if publicToken == "" {
		return nil, errors.New("public token is required")
	}

	req := exchangeRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		PublicToken: publicToken,
	}

	var resp ExchangeResult
	if err := c.post(ctx, exchangePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransactions fetches all transactions in the inclusive date range,
// following Plaid's count/offset pagination until the reported total is
// reached. No retry happens here; the caller owns retry policy.
func (c *Client) GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]Transaction, error) {
	var all []Transaction
	for {
		req := transactionsGetRequest{
			ClientID:    c.clientID,
			Secret:      c.secret,
			AccessToken: accessToken,
			StartDate:   startDate.Format("2006-01-02"),
			EndDate:     endDate.Format("2006-01-02"),
			Options: transactionsGetOptions{
				Count:  pageSize,
				Offset: len(all),
			},
		}

		var resp transactionsGetResponse
		if err := c.post(ctx, transactionsPath, req, &resp); err != nil {
			return nil, err
		}

		all = append(all, resp.Transactions...)

		if len(all) >= resp.TotalTransactions || len(resp.Transactions) == 0 {
			break
		}
	}
	return all, nil
}

// post sends a JSON request to the Plaid API and decodes the response
// into out. Every failure surfaces as *APIError.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &APIError{cause: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &APIError{cause: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{cause: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil {
			apiErr.ErrorMessage = string(data)
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, cause: fmt.Errorf("failed to unmarshal response: %w", err)}
	}
	return nil
}
