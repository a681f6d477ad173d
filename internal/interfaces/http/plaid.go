package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"minty/internal/domain/account"
	plaidsync "minty/internal/domain/plaid"
	plaidclient "minty/internal/infrastructure/plaid"
)

// TransactionSyncer runs one sync for one account.
type TransactionSyncer interface {
	SyncAccountTransactions(ctx context.Context, accountID int64, opts plaidsync.SyncOptions) (*plaidsync.SyncResult, error)
}

// PlaidHandler serves the bank-link endpoints: link token creation,
// public token exchange and transaction sync.
type PlaidHandler struct {
	client      plaidclient.ClientInterface
	accountRepo account.Repository
	syncService TransactionSyncer
	userID      string // configured identity until real authentication lands

	// defaultWindowDays is the operator-configured sync window, used
	// when a request does not carry window_days.
	defaultWindowDays int
}

func NewPlaidHandler(client plaidclient.ClientInterface, accountRepo account.Repository, syncService TransactionSyncer, userID string, defaultWindowDays int) *PlaidHandler {
	return &PlaidHandler{
		client:            client,
		accountRepo:       accountRepo,
		syncService:       syncService,
		userID:            userID,
		defaultWindowDays: defaultWindowDays,
	}
}

// HandleCreateLinkToken returns a link token for initializing Plaid Link
func (h *PlaidHandler) HandleCreateLinkToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	linkToken, err := h.client.CreateLinkToken(r.Context(), h.userID)
	if err != nil {
		// Provider detail goes to the log, not the response body.
		log.Printf("Error creating link token for user %s: %v", h.userID, err)
		http.Error(w, "Failed to create link token", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"link_token": linkToken})
}

type ExchangePublicTokenRequest struct {
	PublicToken string `json:"public_token"`
}

// HandleExchangePublicToken exchanges the widget's public token for a
// durable access token and creates the account row holding it.
func (h *PlaidHandler) HandleExchangePublicToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ExchangePublicTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PublicToken == "" {
		http.Error(w, "public_token is required", http.StatusBadRequest)
		return
	}

	result, err := h.client.ExchangePublicToken(r.Context(), req.PublicToken)
	if err != nil {
		log.Printf("Error exchanging public token: %v", err)
		http.Error(w, "Failed to exchange public token", http.StatusBadGateway)
		return
	}

	acct, err := h.accountRepo.Create(r.Context(), account.CreateParams{
		UserID:      h.userID,
		AccessToken: result.AccessToken,
		Name:        "Connected Account",
	})
	if err != nil {
		log.Printf("Error creating account after token exchange: %v", err)
		http.Error(w, "Failed to save account", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":    true,
		"account_id": acct.ID,
	})
}

// HandleSyncTransactions triggers one sync run for the account given by
// the account_id query parameter. window_days widens the fetch window
// for backfills.
func (h *PlaidHandler) HandleSyncTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID, err := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	if err != nil || accountID <= 0 {
		http.Error(w, "account_id is required", http.StatusBadRequest)
		return
	}

	opts := plaidsync.SyncOptions{WindowDays: h.defaultWindowDays}
	if windowStr := r.URL.Query().Get("window_days"); windowStr != "" {
		windowDays, err := strconv.Atoi(windowStr)
		if err != nil || windowDays <= 0 {
			http.Error(w, "window_days must be a positive integer", http.StatusBadRequest)
			return
		}
		opts.WindowDays = windowDays
	}

	result, err := h.syncService.SyncAccountTransactions(r.Context(), accountID, opts)
	if err != nil {
		var apiErr *plaidclient.APIError
		switch {
		case errors.Is(err, account.ErrAccountNotFound):
			http.Error(w, "Account not found", http.StatusNotFound)
		case errors.As(err, &apiErr):
			log.Printf("Provider error syncing account %d: %v", accountID, apiErr)
			http.Error(w, "Bank provider request failed", http.StatusBadGateway)
		default:
			log.Printf("Error syncing account %d: %v", accountID, err)
			http.Error(w, "Failed to sync transactions", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"synced":  result.Processed,
	})
}
