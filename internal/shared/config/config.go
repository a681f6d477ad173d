package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Plaid      PlaidConfig
	Sync       SyncConfig
	App        AppConfig
	Encryption EncryptionConfig
	Telemetry  TelemetryConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PlaidConfig struct {
	ClientID    string
	Secret      string
	Environment string
	Timeout     time.Duration
	ClientName  string
}

type SyncConfig struct {
	WindowDays int
}

// AppConfig carries the single configured user identity. A stand-in
// until real authentication threads a user through each request.
type AppConfig struct {
	UserID string
}

type EncryptionConfig struct {
	Key string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	MetricsPort  string
}

var validPlaidEnvironments = map[string]struct{}{
	"sandbox":     {},
	"development": {},
	"production":  {},
}

func Load() (*Config, error) {

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	plaidClientID := os.Getenv("PLAID_CLIENT_ID")
	if plaidClientID == "" {
		return nil, fmt.Errorf("PLAID_CLIENT_ID is required")
	}
	plaidSecret := os.Getenv("PLAID_SECRET")
	if plaidSecret == "" {
		return nil, fmt.Errorf("PLAID_SECRET is required")
	}

	plaidEnv := strings.ToLower(getEnv("PLAID_ENV", "sandbox"))
	if _, ok := validPlaidEnvironments[plaidEnv]; !ok {
		return nil, fmt.Errorf("invalid PLAID_ENV %q (expected sandbox, development or production)", plaidEnv)
	}

	plaidTimeout, err := time.ParseDuration(getEnv("PLAID_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLAID_TIMEOUT: %w", err)
	}

	syncWindowDays, err := strconv.Atoi(getEnv("SYNC_WINDOW_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_WINDOW_DAYS: %w", err)
	}
	if syncWindowDays <= 0 {
		return nil, fmt.Errorf("SYNC_WINDOW_DAYS must be positive, got %d", syncWindowDays)
	}

	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	if encryptionKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if len(encryptionKey) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes, got %d", len(encryptionKey))
	}

	// Parse allowed origins (comma-separated list); empty means allow any
	var allowedOrigins []string
	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins = append(allowedOrigins, origin)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Host:           getEnv("HOST", "0.0.0.0"),
			AllowedOrigins: allowedOrigins,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "minty"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "minty"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Plaid: PlaidConfig{
			ClientID:    plaidClientID,
			Secret:      plaidSecret,
			Environment: plaidEnv,
			Timeout:     plaidTimeout,
			ClientName:  getEnv("PLAID_CLIENT_NAME", "Finance App"),
		},
		Sync: SyncConfig{
			WindowDays: syncWindowDays,
		},
		App: AppConfig{
			UserID: getEnv("APP_USER_ID", "test_user_123"),
		},
		Encryption: EncryptionConfig{
			Key: encryptionKey,
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("TELEMETRY_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "minty-api"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9090"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
