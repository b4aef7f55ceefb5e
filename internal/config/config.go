package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Backend selects the persistence variant
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Persistence
	Backend     Backend
	DatabaseURL string

	// Ledger
	Budget decimal.Decimal
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	budget, err := decimal.NewFromString(getEnv("BUDGET", "500000"))
	if err != nil {
		return nil, fmt.Errorf("BUDGET must be a decimal number: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:         getEnv("ENV", "development"),
		Backend:     Backend(getEnv("BACKEND", string(BackendMemory))),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Budget:      budget,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("BACKEND must be %q or %q, got %q", BackendMemory, BackendPostgres, c.Backend)
	}

	if c.Budget.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("BUDGET must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
