package main

import (
	"log"

	plaidsync "minty/internal/domain/plaid"
	"minty/internal/infrastructure/crypto"
	plaidclient "minty/internal/infrastructure/plaid"
	"minty/internal/infrastructure/postgres"
	httphandlers "minty/internal/interfaces/http"
	"minty/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	PlaidHandler       *httphandlers.PlaidHandler
	TransactionHandler *httphandlers.TransactionHandler
	AccountHandler     *httphandlers.AccountHandler

	// Sync service (exposed for future schedulers/CLIs)
	TransactionSyncService *plaidsync.TransactionSyncService
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	// Repositories
	accountRepo := postgres.NewAccountRepository(db, encryptor)
	transactionRepo := postgres.NewTransactionRepository(db)

	// Plaid client and sync service
	client, err := plaidclient.NewClient(plaidclient.Config{
		ClientID:    cfg.Plaid.ClientID,
		Secret:      cfg.Plaid.Secret,
		Environment: cfg.Plaid.Environment,
		Timeout:     cfg.Plaid.Timeout,
		ClientName:  cfg.Plaid.ClientName,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	syncService := plaidsync.NewTransactionSyncService(client, accountRepo, transactionRepo)

	// Handlers
	plaidHandler := httphandlers.NewPlaidHandler(client, accountRepo, syncService, cfg.App.UserID, cfg.Sync.WindowDays)
	transactionHandler := httphandlers.NewTransactionHandler(transactionRepo)
	accountHandler := httphandlers.NewAccountHandler(accountRepo, cfg.App.UserID)

	return &Dependencies{
		DB:                     db,
		PlaidHandler:           plaidHandler,
		TransactionHandler:     transactionHandler,
		AccountHandler:         accountHandler,
		TransactionSyncService: syncService,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
