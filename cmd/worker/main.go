package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/codecraft/internal/config"
	"github.com/illegalcall/codecraft/internal/jobs"
	"github.com/illegalcall/codecraft/internal/projects"
	"github.com/illegalcall/codecraft/internal/storage"
	"github.com/illegalcall/codecraft/internal/worker"
	"github.com/illegalcall/codecraft/pkg/database"
	"github.com/illegalcall/codecraft/pkg/kafka"
	"github.com/illegalcall/codecraft/pkg/metrics"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()
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

	// Initialize Kafka consumer
	consumer, err := kafka.NewConsumer(cfg.Kafka.Broker, cfg.Kafka.Group)
	if err != nil {
		slog.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()
	slog.Info("✅ Connected to Kafka")

	store, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	repo := projects.NewRepository(db)
	deployer := jobs.NewDeployer(repo, store, cfg.Deploy.BaseURL)

	metricsApp := fiber.New(fiber.Config{DisableStartupMessage: true})
	metricsApp.Get("/metrics", metrics.Handler())
	go func() {
		if err := metricsApp.Listen(cfg.Server.MetricsPort); err != nil {
			slog.Error("Metrics server error", "error", err)
		}
	}()
	defer metricsApp.Shutdown()

	// Create and start worker
	w := worker.NewWorker(cfg, repo, deployer.Deploy, jobs.NewHTTPWebhookClient(10*time.Second), consumer)

	if err := w.Start(ctx); err != nil {
		slog.Error("Worker error", "error", err)
		os.Exit(1)
	}
}
