package main

import (
	"net/http"

	httphandlers "minty/internal/interfaces/http"
	"minty/internal/shared/config"
	"minty/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Bank linking and sync
	mux.HandleFunc("/api/plaid/create_link_token", deps.PlaidHandler.HandleCreateLinkToken)
	mux.HandleFunc("/api/plaid/exchange_public_token", deps.PlaidHandler.HandleExchangePublicToken)
	mux.HandleFunc("/api/plaid/sync_transactions", deps.PlaidHandler.HandleSyncTransactions)

	// Stored data
	mux.HandleFunc("/api/transactions", deps.TransactionHandler.HandleListTransactions)
	mux.HandleFunc("/api/accounts", deps.AccountHandler.HandleListAccounts)
	mux.HandleFunc("/api/accounts/{id}", deps.AccountHandler.HandleAccountByID)

	// Apply global middleware
	var handler http.Handler = mux
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(middleware.Tracing(handler))
	}
	handler = middleware.Logging(middleware.CORS(cfg.Server.AllowedOrigins)(handler))

	return handler
}
