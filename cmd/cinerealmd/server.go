package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DEHZ00/Cinerealm/internal/anilist"
	"github.com/DEHZ00/Cinerealm/internal/catalog"
	"github.com/DEHZ00/Cinerealm/internal/player"
	"github.com/DEHZ00/Cinerealm/internal/server"
	"github.com/DEHZ00/Cinerealm/internal/storage"
	"github.com/DEHZ00/Cinerealm/pkg/config"
)

func newLogger(cfg *config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.GetLogLevel()}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func runServer(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := newLogger(&cfg.Logging)
	logger.Info("Starting cinerealmd", "version", version, "config", configPath)

	if err := cfg.Storage.CreateDataDirectory(); err != nil {
		return fmt.Errorf("data directory: %w", err)
	}

	store, err := storage.NewStore(cfg.Storage.DatabasePath(), logger.With("component", "storage"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	catalogClient := catalog.New(&cfg.Catalog, logger.With("component", "catalog"))
	resolver := anilist.New(&cfg.AnimeIDs, logger.With("component", "anilist"))
	orch := player.NewOrchestrator(&cfg.Playback, store, catalogClient, resolver, logger.With("component", "player"))

	srv := server.New(&cfg.Server, store, catalogClient, orch, logger.With("component", "server"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
