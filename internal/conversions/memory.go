package conversions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parishworks/sexton/pkg/pagination"
)

// Memory is an in-memory System used by tests and by local development
// without a database. It enforces the same single-active-conversion
// constraint the partial unique index provides in PostgreSQL.
type Memory struct {
	mu         sync.Mutex
	kind       Kind
	records    map[uuid.UUID]*Record
	pagination pagination.Config
	now        func() time.Time
}

// NewMemory creates an empty in-memory store for the given kind.
func NewMemory(kind Kind) *Memory {
	return &Memory{
		kind:       kind,
		records:    make(map[uuid.UUID]*Record),
		pagination: pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		now:        time.Now,
	}
}

// SetClock overrides the time source. Tests use it to control timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) Kind() Kind {
	return m.kind
}

func (m *Memory) List(
	_ context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page.Normalize(m.pagination)

	matches := make([]Record, 0)
	for _, rec := range m.records {
		if filters.matches(rec) {
			matches = append(matches, *rec)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)

	result := pagination.NewPageResult(matches[start:end], total, page.Page, page.PageSize)
	return &result, nil
}

func (m *Memory) Find(_ context.Context, id uuid.UUID) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	out := *rec
	return &out, nil
}

func (m *Memory) FindActive(_ context.Context, subjectID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := m.findActiveLocked(subjectID)
	if found == nil {
		return nil, nil
	}

	out := *found
	return &out, nil
}

func (m *Memory) CountActive(_ context.Context, subjectID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, rec := range m.records {
		if rec.SubjectID == subjectID && rec.Active() {
			count++
		}
	}
	return count, nil
}

func (m *Memory) FindByJob(_ context.Context, jobID uuid.UUID) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found *Record
	for _, rec := range m.records {
		if rec.JobID != jobID {
			continue
		}
		if found == nil || rec.CreatedAt.After(found.CreatedAt) {
			found = rec
		}
	}

	if found == nil {
		return nil, nil
	}

	out := *found
	return &out, nil
}

func (m *Memory) Create(_ context.Context, cmd CreateCommand) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !cmd.AgentTaskStatus.Terminal() && m.findActiveLocked(cmd.SubjectID) != nil {
		return nil, ErrActive
	}

	now := m.now()
	rec := &Record{
		ID:              uuid.New(),
		SubjectID:       cmd.SubjectID,
		AgentTaskID:     cmd.AgentTaskID,
		AgentTaskStatus: cmd.AgentTaskStatus,
		JobID:           cmd.JobID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.records[rec.ID] = rec

	out := *rec
	return &out, nil
}

func (m *Memory) UpdateStatus(_ context.Context, id uuid.UUID, status Status, lastError *string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	rec.AgentTaskStatus = status
	if lastError != nil {
		detail := *lastError
		rec.LastError = &detail
	}
	rec.UpdatedAt = m.now()

	out := *rec
	return &out, nil
}

func (m *Memory) findActiveLocked(subjectID string) *Record {
	var found *Record
	for _, rec := range m.records {
		if rec.SubjectID != subjectID || !rec.Active() {
			continue
		}
		if found == nil || rec.CreatedAt.After(found.CreatedAt) {
			found = rec
		}
	}
	return found
}

func (f Filters) matches(rec *Record) bool {
	if f.SubjectID != nil && rec.SubjectID != *f.SubjectID {
		return false
	}
	if f.AgentTaskID != nil && rec.AgentTaskID != *f.AgentTaskID {
		return false
	}
	if f.Status != nil && rec.AgentTaskStatus != *f.Status {
		return false
	}
	if f.Active != nil && *f.Active && !rec.Active() {
		return false
	}
	return true
}
