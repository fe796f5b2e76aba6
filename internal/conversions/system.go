package conversions

import (
	"context"

	"github.com/google/uuid"

	"github.com/parishworks/sexton/pkg/pagination"
)

// System defines the store contract for one kind's conversion records.
// Both the workflow steps and the polling API consume it; tests substitute
// the in-memory implementation. Records are created by the begin step,
// mutated only by the wait step, and never deleted.
type System interface {
	Kind() Kind

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Record], error)

	Find(ctx context.Context, id uuid.UUID) (*Record, error)

	// FindActive returns the most recently created non-terminal record for
	// the subject, or nil when none exists.
	FindActive(ctx context.Context, subjectID string) (*Record, error)

	// CountActive counts non-terminal records for the subject.
	CountActive(ctx context.Context, subjectID string) (int, error)

	// FindByJob returns the record owned by the given queue job, or nil.
	FindByJob(ctx context.Context, jobID uuid.UUID) (*Record, error)

	Create(ctx context.Context, cmd CreateCommand) (*Record, error)

	// UpdateStatus overwrites the record's status, optionally records an
	// error detail, and bumps updated_at.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, lastError *string) (*Record, error)
}
