package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/illegalcall/codecraft/internal/config"
	"github.com/illegalcall/codecraft/internal/jobs"
	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/pkg/metrics"
)

// StatusStore records project status transitions.
type StatusStore interface {
	SetStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus, deploymentURL *string) error
}

type Worker struct {
	cfg      *config.Config
	projects StatusStore
	deploy   jobs.DeployHandlerFunc
	webhook  jobs.WebhookClient
	consumer sarama.ConsumerGroup

	mu    sync.Mutex
	ready chan bool
}

func NewWorker(cfg *config.Config, projects StatusStore, deploy jobs.DeployHandlerFunc, webhook jobs.WebhookClient, consumer sarama.ConsumerGroup) *Worker {
	slog.Info("Initializing new Worker")
	return &Worker{
		cfg:      cfg,
		projects: projects,
		deploy:   deploy,
		webhook:  webhook,
		consumer: consumer,
		ready:    make(chan bool),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	topics := []string{w.cfg.Kafka.Topic}
	slog.Info("Starting worker", "topics", topics)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for err := range w.consumer.Errors() {
			slog.Error("Kafka consumer error received", "error", err)
		}
	}()

	ready := w.readyChan()

	go func() {
		for {
			if err := w.consumer.Consume(ctx, topics, w); err != nil {
				slog.Error("Error from consumer.Consume", "error", err)
			}
			if ctx.Err() != nil {
				slog.Info("Context error detected, exiting consumer loop", "error", ctx.Err())
				return
			}
			// Rebalance: the next session closes a fresh channel.
			w.mu.Lock()
			w.ready = make(chan bool)
			w.mu.Unlock()
		}
	}()

	select {
	case <-ready:
		slog.Info("Worker setup complete; consumer ready")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("Context cancelled; shutting down worker")
	}

	slog.Info("Worker shutting down gracefully")
	return nil
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (w *Worker) Setup(sarama.ConsumerGroupSession) error {
	slog.Info("Consumer group session setup complete")
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.ready:
	default:
		close(w.ready)
	}
	return nil
}

func (w *Worker) readyChan() chan bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (w *Worker) Cleanup(sarama.ConsumerGroupSession) error {
	slog.Info("Consumer group session cleanup complete")
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (w *Worker) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		slog.Info("Message received from Kafka", "offset", message.Offset, "partition", message.Partition)
		if err := w.processJob(session.Context(), message); err != nil {
			slog.Error("Failed to process deploy job", "error", err)
		}
		session.MarkMessage(message, "")
	}
	return nil
}

func (w *Worker) processJob(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var job models.DeployJob
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		slog.Error("JSON unmarshalling failed", "error", err, "raw", string(msg.Value))
		return fmt.Errorf("failed to parse deploy job: %w", err)
	}
	slog.Info("Deploy job parsed", "project_id", job.ProjectID, "owner_id", job.OwnerID)

	start := time.Now()
	defer func() { metrics.DeployDuration.Observe(time.Since(start).Seconds()) }()

	var (
		result jobs.Result
		err    error
	)
	attempts := w.cfg.Kafka.RetryMax
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err = w.deploy(ctx, job)
		if err == nil {
			break
		}
		slog.Error("Deploy attempt failed", "project_id", job.ProjectID, "attempt", attempt, "error", err)
		if attempt < attempts {
			select {
			case <-time.After(w.cfg.Kafka.RetryBackoff):
			case <-ctx.Done():
				err = ctx.Err()
				attempt = attempts
			}
		}
	}

	event := models.DeployEvent{ProjectID: job.ProjectID, Timestamp: time.Now().UTC()}

	if err != nil {
		slog.Error("Deploy ultimately failed", "project_id", job.ProjectID, "error", err)
		if dbErr := w.projects.SetStatus(ctx, job.ProjectID, models.StatusDraft, nil); dbErr != nil {
			slog.Error("Failed to reset project status", "project_id", job.ProjectID, "error", dbErr)
		}
		metrics.Deploys.WithLabelValues(metrics.StatusFailed).Inc()
		event.Status = models.StatusDraft
		event.Error = err.Error()
		w.notify(ctx, event)
		return err
	}

	url, _ := result.Data.(string)
	if err := w.projects.SetStatus(ctx, job.ProjectID, models.StatusDeployed, &url); err != nil {
		slog.Error("Failed to mark project deployed", "project_id", job.ProjectID, "error", err)
		return err
	}
	slog.Info("Project deployed", "project_id", job.ProjectID, "url", url)

	metrics.Deploys.WithLabelValues(metrics.StatusDeployed).Inc()
	event.Status = models.StatusDeployed
	event.DeploymentURL = url
	w.notify(ctx, event)
	return nil
}

func (w *Worker) notify(ctx context.Context, event models.DeployEvent) {
	if w.webhook == nil || w.cfg.Deploy.WebhookURL == "" {
		return
	}
	if err := w.webhook.Send(ctx, w.cfg.Deploy.WebhookURL, event); err != nil {
		slog.Error("Failed to send deploy webhook", "project_id", event.ProjectID, "error", err)
	}
}
