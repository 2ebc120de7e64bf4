// Package config reads the server configuration from environment variables
// and command-line flags. Environment variables win over flags.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the server configuration.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabasePath  string `env:"DB_PATH"`
	JWTSecret     string `env:"JWT_SECRET"`
	TokenDuration string `env:"TOKEN_DURATION"`
}

// Parse reads the configuration from flags and environment variables.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabasePath := cfg.DatabasePath
	envJWTSecret := cfg.JWTSecret
	envTokenDuration := cfg.TokenDuration

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabasePath, "d", "./data/ledger.db", "path to the SQLite database file")
	flag.StringVar(&cfg.JWTSecret, "s", "", "secret key for bearer tokens")
	flag.StringVar(&cfg.TokenDuration, "t", "720h", "bearer token validity duration")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabasePath != "" {
		cfg.DatabasePath = envDatabasePath
	}
	if envJWTSecret != "" {
		cfg.JWTSecret = envJWTSecret
	}
	if envTokenDuration != "" {
		cfg.TokenDuration = envTokenDuration
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}
