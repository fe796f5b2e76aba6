// Package queue implements the durable job queue behind Sexton's conversion
// workflows. A job executes a registered definition: an ordered pipeline of
// steps under a single job identity, where each step's JSON output feeds the
// next step's input. Steps run at-least-once with per-step retry budgets;
// a step may also ask to be rescheduled without consuming an attempt, which
// is how polling steps wait without holding a worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is completed or failed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one unit of queued work. Input holds the current step's input:
// the enqueue payload for step 0, the previous step's output afterwards.
// Output is set when the final step completes.
type Job struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Step      int             `json:"step"`
	Input     json.RawMessage `json:"input"`
	Output    json.RawMessage `json:"output,omitempty"`
	Status    Status          `json:"status"`
	Attempts  int             `json:"attempts"`
	RunAt     time.Time       `json:"run_at"`
	LastError *string         `json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// HandlerFunc executes one step. The job is provided for identity (e.g.
// deriving idempotency keys); input is the current step input. Returning
// a Permanent error fails the job immediately; returning a RetryAfter error
// reschedules the step without consuming an attempt; any other error
// consumes an attempt from the step's budget.
type HandlerFunc func(ctx context.Context, job *Job, input json.RawMessage) (json.RawMessage, error)

// Step is a single retryable unit of work within a definition.
type Step struct {
	Name        string
	MaxAttempts int
	Handler     HandlerFunc
}

func (s Step) maxAttempts() int {
	if s.MaxAttempts < 1 {
		return 1
	}
	return s.MaxAttempts
}

// Definition binds a job kind to its ordered steps. A single-step definition
// models a standalone task; a multi-step definition models a workflow.
type Definition struct {
	Kind  string
	Steps []Step
}

// Registry holds the job definitions a runner can execute.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]Definition),
	}
}

// Register adds a definition. Kinds must be unique and every step needs a handler.
func (r *Registry) Register(def Definition) error {
	if def.Kind == "" {
		return fmt.Errorf("definition kind required")
	}
	if _, exists := r.defs[def.Kind]; exists {
		return fmt.Errorf("definition already registered: %s", def.Kind)
	}
	if len(def.Steps) == 0 {
		return fmt.Errorf("definition %s has no steps", def.Kind)
	}
	for i, step := range def.Steps {
		if step.Handler == nil {
			return fmt.Errorf("definition %s step %d has no handler", def.Kind, i)
		}
	}

	r.defs[def.Kind] = def
	return nil
}

// Lookup returns the definition for a kind.
func (r *Registry) Lookup(kind string) (Definition, bool) {
	def, ok := r.defs[kind]
	return def, ok
}

// Kinds returns all registered kinds, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.defs))
	for kind := range r.defs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
