package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store. It mirrors the Postgres store's
// claim-and-lease semantics behind a mutex and supports an injectable clock
// so tests can step through poll and backoff delays without sleeping.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*Job
	now  func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[uuid.UUID]*Job),
		now:  time.Now,
	}
}

// SetClock replaces the store's time source.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryStore) Enqueue(_ context.Context, kind string, input any) (*Job, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal job input: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	job := &Job{
		ID:        uuid.New(),
		Kind:      kind,
		Input:     payload,
		Status:    StatusQueued,
		RunAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.jobs[job.ID] = job
	return copyJob(job), nil
}

func (m *MemoryStore) Claim(_ context.Context, lease time.Duration) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	var due *Job
	for _, job := range m.jobs {
		if job.Status.Terminal() || job.RunAt.After(now) {
			continue
		}
		if due == nil || job.RunAt.Before(due.RunAt) {
			due = job
		}
	}

	if due == nil {
		return nil, nil
	}

	due.Status = StatusRunning
	due.RunAt = now.Add(lease)
	due.UpdatedAt = now
	return copyJob(due), nil
}

func (m *MemoryStore) Advance(_ context.Context, id uuid.UUID, step int, input json.RawMessage) error {
	return m.update(id, func(job *Job) {
		job.Step = step
		job.Input = input
		job.Attempts = 0
		job.Status = StatusRunning
		job.RunAt = m.now()
		job.LastError = nil
	})
}

func (m *MemoryStore) Complete(_ context.Context, id uuid.UUID, output json.RawMessage) error {
	return m.update(id, func(job *Job) {
		job.Status = StatusCompleted
		job.Output = output
		job.LastError = nil
	})
}

func (m *MemoryStore) Fail(_ context.Context, id uuid.UUID, message string) error {
	return m.update(id, func(job *Job) {
		job.Status = StatusFailed
		job.LastError = &message
	})
}

func (m *MemoryStore) Reschedule(_ context.Context, id uuid.UUID, runAt time.Time, attempts int, message *string) error {
	return m.update(id, func(job *Job) {
		job.Status = StatusRunning
		job.RunAt = runAt
		job.Attempts = attempts
		if message != nil {
			job.LastError = message
		}
	})
}

func (m *MemoryStore) Find(_ context.Context, id uuid.UUID) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return copyJob(job), nil
}

func (m *MemoryStore) update(id uuid.UUID, fn func(*Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return ErrJobNotFound
	}

	fn(job)
	job.UpdatedAt = m.now()
	return nil
}

func copyJob(job *Job) *Job {
	c := *job
	if job.LastError != nil {
		msg := *job.LastError
		c.LastError = &msg
	}
	return &c
}
