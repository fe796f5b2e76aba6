// Package conversions implements the conversion record domain for Sexton.
// A conversion record tracks one attempt to convert external content (a web
// page, a YouTube video) into a CMS document via the agent service: the
// agent-assigned task id, its last observed status, and the queue job that
// owns the attempt. Records are never deleted; they form the audit trail
// behind the polling API.
package conversions

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a conversion variety. Each kind persists to its own table
// and maps to its own agent endpoints.
type Kind string

const (
	// KindPage converts an external web page into a CMS page.
	KindPage Kind = "page"
	// KindPost creates a CMS post from a YouTube video transcript.
	KindPost Kind = "post"
)

// Collection returns the URL path segment for the kind's record collection.
func (k Kind) Collection() string {
	return string(k) + "-conversions"
}

// Table returns the database table backing the kind's records.
func (k Kind) Table() string {
	return string(k) + "_conversions"
}

// Valid reports whether k is a known conversion kind.
func (k Kind) Valid() bool {
	return k == KindPage || k == KindPost
}

// Status is the agent-reported state of a conversion task.
// Transitions move monotonically toward a terminal state; there is no
// defined transition back from completed or failed.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ActiveStatuses are the non-terminal statuses. A subject with a record in
// one of these states has a conversion in flight.
var ActiveStatuses = []Status{StatusQueued, StatusRunning}

// Terminal reports whether the status is completed or failed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus validates a raw agent status string.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusQueued, StatusRunning, StatusCompleted, StatusFailed:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Record is one conversion attempt. SubjectID and AgentTaskID are immutable
// after creation; AgentTaskStatus and LastError are written by the wait step
// on every poll.
type Record struct {
	ID              uuid.UUID `json:"id"`
	SubjectID       string    `json:"subject_id"`
	AgentTaskID     string    `json:"agent_task_id"`
	AgentTaskStatus Status    `json:"agent_task_status"`
	LastError       *string   `json:"last_error,omitempty"`
	JobID           uuid.UUID `json:"job_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Active reports whether the record's status is non-terminal.
func (r *Record) Active() bool {
	return !r.AgentTaskStatus.Terminal()
}

// CreateCommand carries the data needed to register a new conversion attempt.
type CreateCommand struct {
	SubjectID       string
	AgentTaskID     string
	AgentTaskStatus Status
	JobID           uuid.UUID
}
