package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/illegalcall/codecraft/internal/api"
	"github.com/illegalcall/codecraft/internal/completion"
	"github.com/illegalcall/codecraft/internal/config"
	"github.com/illegalcall/codecraft/internal/pkg/supabase"
	"github.com/illegalcall/codecraft/internal/storage"
	"github.com/illegalcall/codecraft/pkg/database"
	"github.com/illegalcall/codecraft/pkg/kafka"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	logger := slog.Default()
	ctx := context.Background()

	// Initialize database clients
	db, err := database.NewClients(ctx, cfg.Database.URL, database.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("✅ Connected to databases")

	if err := db.CreateProjectsTable(ctx); err != nil {
		slog.Error("Failed to create projects table", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer
	producer, err := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.RetryMax, cfg.Kafka.RetryBackoff)
	if err != nil {
		slog.Error("Failed to create Kafka producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()
	slog.Info("✅ Connected to Kafka")

	completer, err := completion.New(ctx, cfg.Completion)
	if err != nil {
		slog.Error("Failed to create completion client", "error", err)
		os.Exit(1)
	}

	var identity api.IdentityProvider
	if client, err := supabase.NewClient(cfg.Identity.SupabaseURL, cfg.Identity.SupabaseKey, logger); err != nil {
		slog.Warn("Identity provider unavailable; POST /api/login is disabled", "error", err)
	} else {
		identity = client
	}

	store, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Create and start server
	server := api.NewServer(cfg, db, producer, completer, identity, store, logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		slog.Info("Received shutdown signal", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	slog.Info("Starting API server", "port", cfg.Server.Port, "env", cfg.Server.Environment)
	if err := server.Start(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
