// Package agent provides the HTTP client for the external conversion agent
// service. The agent performs the actual content work (page scraping, video
// transcript extraction) and is treated as an opaque collaborator: Sexton
// only starts tasks and polls their status.
package agent

import (
	"context"
	"errors"

	"github.com/parishworks/sexton/internal/conversions"
)

// Client is the contract consumed by the workflow steps. Tests substitute
// a scripted fake.
type Client interface {
	// StartConversion asks the agent to begin converting the subject's
	// content and returns the agent-assigned task id and initial status.
	StartConversion(ctx context.Context, kind conversions.Kind, req StartRequest) (*StartResponse, error)

	// TaskStatus fetches the agent's current view of a task.
	TaskStatus(ctx context.Context, kind conversions.Kind, taskID string) (*TaskStatusResponse, error)
}

// StartRequest carries the inputs for a start-conversion call.
// IdempotencyKey is a client-generated token, stable across retries of the
// same workflow, that lets the agent dedupe repeated starts.
type StartRequest struct {
	URL            string
	SubjectID      string
	IdempotencyKey string
}

// StartResponse is the agent's acknowledgement of an accepted conversion.
type StartResponse struct {
	TaskID     string `json:"task_id"`
	TaskStatus string `json:"task_status"`
}

// TaskStatusResponse is the agent's report on a task. Error carries failure
// detail when TaskStatus is "failed"; it is empty otherwise.
type TaskStatusResponse struct {
	TaskStatus string `json:"task_status"`
	Error      string `json:"error,omitempty"`
}

// ErrUnavailable indicates the agent service could not be reached or
// answered with a non-2xx status.
var ErrUnavailable = errors.New("agent service unavailable")
