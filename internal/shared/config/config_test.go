package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("PLAID_CLIENT_ID", "test-client-id")
	t.Setenv("PLAID_SECRET", "test-secret")
	t.Setenv("ENCRYPTION_KEY", "01234567890123456789012345678901") // 32 bytes
}

func TestLoad_Success(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Plaid.ClientID != "test-client-id" {
		t.Errorf("Plaid.ClientID = %q, want %q", cfg.Plaid.ClientID, "test-client-id")
	}
	if cfg.Plaid.Environment != "sandbox" {
		t.Errorf("Plaid.Environment = %q, want %q", cfg.Plaid.Environment, "sandbox")
	}
	if cfg.Plaid.Timeout != 30*time.Second {
		t.Errorf("Plaid.Timeout = %v, want %v", cfg.Plaid.Timeout, 30*time.Second)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 5432)
	}
	if cfg.Sync.WindowDays != 30 {
		t.Errorf("Sync.WindowDays = %d, want %d", cfg.Sync.WindowDays, 30)
	}
	if cfg.App.UserID != "test_user_123" {
		t.Errorf("App.UserID = %q, want %q", cfg.App.UserID, "test_user_123")
	}
}

func TestLoad_MissingPlaidClientID(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("PLAID_CLIENT_ID", "")
	os.Unsetenv("PLAID_CLIENT_ID")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for missing PLAID_CLIENT_ID, got nil")
	}
}

func TestLoad_MissingPlaidSecret(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("PLAID_SECRET", "")
	os.Unsetenv("PLAID_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for missing PLAID_SECRET, got nil")
	}
}

func TestLoad_InvalidPlaidEnv(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("PLAID_ENV", "staging")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for invalid PLAID_ENV, got nil")
	}
}

func TestLoad_PlaidEnvCaseInsensitive(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("PLAID_ENV", "Production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Plaid.Environment != "production" {
		t.Errorf("Plaid.Environment = %q, want %q", cfg.Plaid.Environment, "production")
	}
}

func TestLoad_InvalidEncryptionKeyLength(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("ENCRYPTION_KEY", "too-short")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for invalid ENCRYPTION_KEY length, got nil")
	}
}

func TestLoad_InvalidSyncWindow(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"NotANumber", "abc"},
		{"Zero", "0"},
		{"Negative", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnvVars(t)
			t.Setenv("SYNC_WINDOW_DAYS", tt.value)

			_, err := Load()
			if err == nil {
				t.Errorf("Load() expected error for SYNC_WINDOW_DAYS=%q, got nil", tt.value)
			}
		})
	}
}

func TestLoad_CustomSyncWindow(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("SYNC_WINDOW_DAYS", "90")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Sync.WindowDays != 90 {
		t.Errorf("Sync.WindowDays = %d, want %d", cfg.Sync.WindowDays, 90)
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := []string{"http://localhost:5173", "https://app.example.com"}
	if len(cfg.Server.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.Server.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.Server.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.Server.AllowedOrigins[i], want[i])
		}
	}
}

func TestConnectionString(t *testing.T) {
	c := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "minty",
		Password: "hunter2",
		DBName:   "minty",
		SSLMode:  "require",
	}

	got := c.ConnectionString()
	want := "host=db.internal port=5433 user=minty password=hunter2 dbname=minty sslmode=require"
	if got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
