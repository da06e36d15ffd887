// Package config loads the runtime configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the settings the wiring binary needs.
type Config struct {
	// DatabaseDSN selects the storage medium: a sqlite path/URI or a
	// postgres:// URL.
	DatabaseDSN string
	Env         string
}

// Load reads configuration from the environment with sensible defaults.
// Precedence: explicit env var > .env file > default.
func Load() Config {
	// Missing .env is fine; env vars and defaults still apply.
	_ = godotenv.Load()
	cfg := Config{}
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "invoicebuilder.db")
	cfg.Env = getEnv("APP_ENV", "development")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
