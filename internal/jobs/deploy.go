package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/internal/storage"
)

// PayloadLoader fetches the HTML queued for a deploy job.
type PayloadLoader interface {
	LoadPayload(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// Deployer publishes a project's preview as a static site.
type Deployer struct {
	payloads PayloadLoader
	storage  storage.Storage
	baseURL  string
}

func NewDeployer(payloads PayloadLoader, store storage.Storage, baseURL string) *Deployer {
	return &Deployer{payloads: payloads, storage: store, baseURL: baseURL}
}

// SiteURL is the public address of a deployed project.
func (d *Deployer) SiteURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/%s/", d.baseURL, id)
}

// Deploy writes the queued preview to <id>/index.html and returns the site
// URL in Result.Data.
func (d *Deployer) Deploy(ctx context.Context, job models.DeployJob) (Result, error) {
	if job.ProjectID == uuid.Nil {
		return Result{}, errors.New("deploy job has no project id")
	}

	raw, err := d.payloads.LoadPayload(ctx, job.ProjectID)
	if err != nil {
		return Result{}, err
	}

	var payload models.DeployPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Result{}, fmt.Errorf("failed to parse deploy payload: %w", err)
	}
	if payload.HTML == "" {
		return Result{}, errors.New("deploy payload has no HTML")
	}

	file, err := d.storage.Put(ctx, path.Join(job.ProjectID.String(), "index.html"), []byte(payload.HTML))
	if err != nil {
		return Result{}, fmt.Errorf("failed to store site: %w", err)
	}

	url := d.SiteURL(job.ProjectID)
	slog.Info("Site published", "project_id", job.ProjectID, "file", file, "url", url)

	return Result{
		Data: url,
		Metadata: map[string]interface{}{
			"file":  file,
			"bytes": len(payload.HTML),
		},
	}, nil
}
