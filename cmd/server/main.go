package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/sunny0223day/accountingbot/internal/auth"
	"github.com/sunny0223day/accountingbot/internal/config"
	"github.com/sunny0223day/accountingbot/internal/server"
	"github.com/sunny0223day/accountingbot/internal/service"
	"github.com/sunny0223day/accountingbot/internal/storage/sqlite"
	"github.com/sunny0223day/accountingbot/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Parse()
	if err != nil {
		slog.Error("Failed to parse configuration", "error", err)
		os.Exit(1)
	}

	tokenDuration, err := time.ParseDuration(cfg.TokenDuration)
	if err != nil {
		slog.Error("Invalid token duration", "value", cfg.TokenDuration, "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DatabasePath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, tokenDuration)
	srv := server.New(
		service.NewLedgerService(store),
		service.NewQueryService(store),
		jwtManager,
	)

	slog.Info("Server starting", "address", cfg.RunAddress)
	if err := http.ListenAndServe(cfg.RunAddress, srv.Router()); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
