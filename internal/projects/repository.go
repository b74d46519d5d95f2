// Package projects stores projects in Postgres and mirrors their status in
// Redis, where the deploy worker updates it first.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/pkg/database"
)

var ErrNotFound = errors.New("project not found")

const selectColumns = "id, owner_id, name, description, framework, status, deployment_url, created_at, updated_at"

func StatusKey(id uuid.UUID) string {
	return fmt.Sprintf("project:%s", id)
}

func PayloadKey(id uuid.UUID) string {
	return fmt.Sprintf("project:%s:payload", id)
}

type Repository struct {
	db  *database.Clients
	now func() time.Time
}

func NewRepository(db *database.Clients) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) Create(ctx context.Context, ownerID string, req models.CreateProjectRequest) (*models.Project, error) {
	now := r.now().UTC()
	project := &models.Project{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Framework:   req.Framework,
		Status:      models.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.db.DB.ExecContext(ctx,
		"INSERT INTO projects (id, owner_id, name, description, framework, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		project.ID, project.OwnerID, project.Name, project.Description, project.Framework, project.Status, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	if err := r.db.Redis.Set(ctx, StatusKey(project.ID), string(project.Status), 0).Err(); err != nil {
		// The row is the source of truth; the overlay catches up on the next status change.
		slog.Error("Failed to set project status in Redis", "project_id", project.ID, "error", err)
	}

	return project, nil
}

// List returns the owner's projects, most recently updated first.
func (r *Repository) List(ctx context.Context, ownerID string) ([]models.Project, error) {
	projects := []models.Project{}
	err := r.db.DB.SelectContext(ctx, &projects,
		"SELECT "+selectColumns+" FROM projects WHERE owner_id = $1 ORDER BY updated_at DESC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	for i := range projects {
		r.overlayStatus(ctx, &projects[i])
	}
	return projects, nil
}

// Get returns the project only if ownerID owns it.
func (r *Repository) Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.DB.GetContext(ctx, &project,
		"SELECT "+selectColumns+" FROM projects WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	r.overlayStatus(ctx, &project)
	return &project, nil
}

// SetStatus updates the status in Postgres and Redis. A non-nil deploymentURL
// is stored alongside.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus, deploymentURL *string) error {
	var err error
	if deploymentURL != nil {
		_, err = r.db.DB.ExecContext(ctx,
			"UPDATE projects SET status = $1, deployment_url = $2, updated_at = $3 WHERE id = $4",
			status, *deploymentURL, r.now().UTC(), id)
	} else {
		_, err = r.db.DB.ExecContext(ctx,
			"UPDATE projects SET status = $1, updated_at = $2 WHERE id = $3",
			status, r.now().UTC(), id)
	}
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	if err := r.db.Redis.Set(ctx, StatusKey(id), string(status), 0).Err(); err != nil {
		return fmt.Errorf("failed to set project status in Redis: %w", err)
	}
	return nil
}

// SavePayload keeps the HTML to deploy for ttl.
func (r *Repository) SavePayload(ctx context.Context, id uuid.UUID, payload []byte, ttl time.Duration) error {
	if err := r.db.Redis.Set(ctx, PayloadKey(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store deploy payload: %w", err)
	}
	return nil
}

func (r *Repository) LoadPayload(ctx context.Context, id uuid.UUID) ([]byte, error) {
	payload, err := r.db.Redis.Get(ctx, PayloadKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("deploy payload for %s expired or missing", id)
		}
		return nil, fmt.Errorf("failed to load deploy payload: %w", err)
	}
	return payload, nil
}

func (r *Repository) overlayStatus(ctx context.Context, project *models.Project) {
	status, err := r.db.Redis.Get(ctx, StatusKey(project.ID)).Result()
	if err != nil {
		return
	}
	if s := models.ProjectStatus(status); s.Valid() {
		project.Status = s
	}
}
