package jobs

import (
	"context"

	"github.com/illegalcall/codecraft/internal/models"
)

// Result represents the outcome of a job execution
type Result struct {
	// Data contains the job result data
	Data interface{} `json:"data"`
	// Metadata contains additional information about the result
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DeployHandlerFunc defines the signature for deploy job handlers
type DeployHandlerFunc func(ctx context.Context, job models.DeployJob) (Result, error)
