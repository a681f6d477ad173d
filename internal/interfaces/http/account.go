package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"minty/internal/domain/account"
)

type AccountHandler struct {
	accountRepo account.Repository
	userID      string
}

func NewAccountHandler(accountRepo account.Repository, userID string) *AccountHandler {
	return &AccountHandler{accountRepo: accountRepo, userID: userID}
}

// HandleListAccounts returns the configured user's linked accounts.
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accounts, err := h.accountRepo.ListByUserID(r.Context(), h.userID)
	if err != nil {
		log.Printf("Error listing accounts for user %s: %v", h.userID, err)
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []*account.Account{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}

// HandleAccountByID serves GET and DELETE for a single account.
// Deleting an account cascades to its transactions.
func (h *AccountHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	acct, err := h.accountRepo.GetByID(r.Context(), id)
	if errors.Is(err, account.ErrAccountNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error getting account %d: %v", id, err)
		http.Error(w, "Failed to get account", http.StatusInternalServerError)
		return
	}

	// Accounts of other users are indistinguishable from missing ones.
	if acct.UserID != h.userID {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(acct)

	case http.MethodDelete:
		if err := h.accountRepo.Delete(r.Context(), id); err != nil {
			log.Printf("Error deleting account %d: %v", id, err)
			http.Error(w, "Failed to delete account", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
