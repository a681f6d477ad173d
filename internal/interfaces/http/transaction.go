package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"minty/internal/domain/transaction"
)

// maxTransactionPageSize caps list responses at the latest 100 rows.
const maxTransactionPageSize = 100

type TransactionHandler struct {
	transactionRepo transaction.Repository
}

func NewTransactionHandler(transactionRepo transaction.Repository) *TransactionHandler {
	return &TransactionHandler{transactionRepo: transactionRepo}
}

// TransactionResponse is the wire shape for a stored transaction.
// Date carries the calendar date only.
type TransactionResponse struct {
	ID           int64           `json:"id"`
	AccountID    int64           `json:"accountId"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date"`
	Name         string          `json:"name"`
	MerchantName *string         `json:"merchantName,omitempty"`
	Category     *string         `json:"category"`
	Pending      bool            `json:"pending"`
}

// HandleListTransactions returns the latest transactions by date
// descending, optionally filtered to one account via accountId.
func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := maxTransactionPageSize
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = min(parsedLimit, maxTransactionPageSize)
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			offset = parsedOffset
		}
	}

	var (
		transactions []*transaction.Transaction
		err          error
	)
	if accountIDStr := r.URL.Query().Get("accountId"); accountIDStr != "" {
		accountID, parseErr := strconv.ParseInt(accountIDStr, 10, 64)
		if parseErr != nil || accountID <= 0 {
			http.Error(w, "accountId must be a positive integer", http.StatusBadRequest)
			return
		}
		transactions, err = h.transactionRepo.ListByAccountID(r.Context(), accountID, limit, offset)
	} else {
		transactions, err = h.transactionRepo.ListLatest(r.Context(), limit, offset)
	}
	if err != nil {
		log.Printf("Error listing transactions: %v", err)
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}

	responses := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		responses = append(responses, TransactionResponse{
			ID:           t.ID,
			AccountID:    t.AccountID,
			Amount:       t.Amount,
			Date:         t.Date.Format("2006-01-02"),
			Name:         t.Name,
			MerchantName: t.MerchantName,
			Category:     t.Category,
			Pending:      t.Pending,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}
