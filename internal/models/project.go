package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	StatusDraft    ProjectStatus = "draft"
	StatusBuilding ProjectStatus = "building"
	StatusDeployed ProjectStatus = "deployed"
)

// Valid reports whether s is one of the known project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusBuilding, StatusDeployed:
		return true
	}
	return false
}

type Project struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	OwnerID       string        `json:"ownerId" db:"owner_id"`
	Name          string        `json:"name" db:"name"`
	Description   string        `json:"description" db:"description"`
	Framework     string        `json:"framework" db:"framework"`
	Status        ProjectStatus `json:"status" db:"status"`
	DeploymentURL *string       `json:"deploymentUrl" db:"deployment_url"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}

// DeployJob is the Kafka message asking the worker to publish a project.
// The preview HTML itself is kept in Redis under the project's payload key.
type DeployJob struct {
	ProjectID   uuid.UUID `json:"id"`
	OwnerID     string    `json:"ownerId"`
	RequestedAt time.Time `json:"requestedAt"`
}

// DeployPayload is stored in Redis next to a queued DeployJob.
type DeployPayload struct {
	HTML string `json:"html"`
}

// DeployEvent is posted to the deploy webhook once a job finishes.
type DeployEvent struct {
	ProjectID     uuid.UUID     `json:"projectId"`
	Status        ProjectStatus `json:"status"`
	DeploymentURL string        `json:"deploymentUrl,omitempty"`
	Error         string        `json:"error,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}
