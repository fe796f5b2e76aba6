package conversions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/parishworks/sexton/pkg/pagination"
	"github.com/parishworks/sexton/pkg/query"
	"github.com/parishworks/sexton/pkg/repository"
)

type repo struct {
	db         *sql.DB
	kind       Kind
	projection *query.ProjectionMap
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a conversion record repository for the given kind, backed by
// the kind's table.
func New(
	db *sql.DB,
	kind Kind,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		kind:       kind,
		projection: projectionFor(kind),
		logger:     logger.With("system", "conversions", "kind", string(kind)),
		pagination: pagination,
	}
}

func (r *repo) Kind() Kind {
	return r.kind
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(r.projection, defaultSort).
		WhereSearch(page.Search, "SubjectID", "AgentTaskID")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", r.kind.Table(), err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	records, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.kind.Table(), err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	q, args := query.NewBuilder(r.projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrActive)
	}
	return &rec, nil
}

func (r *repo) FindActive(ctx context.Context, subjectID string) (*Record, error) {
	q, args := query.
		NewBuilder(r.projection, defaultSort).
		WhereEquals("SubjectID", subjectID).
		WhereIn("AgentTaskStatus", statusValues(ActiveStatuses)).
		BuildSingleOrNull()

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active conversion: %w", err)
	}
	return &rec, nil
}

func (r *repo) CountActive(ctx context.Context, subjectID string) (int, error) {
	q, args := query.
		NewBuilder(r.projection).
		WhereEquals("SubjectID", subjectID).
		WhereIn("AgentTaskStatus", statusValues(ActiveStatuses)).
		BuildCount()

	var count int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active conversions: %w", err)
	}
	return count, nil
}

func (r *repo) FindByJob(ctx context.Context, jobID uuid.UUID) (*Record, error) {
	q, args := query.
		NewBuilder(r.projection, defaultSort).
		WhereEquals("JobID", jobID).
		BuildSingleOrNull()

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find conversion by job: %w", err)
	}
	return &rec, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Record, error) {
	q := fmt.Sprintf(`
		INSERT INTO %s(id, subject_id, agent_task_id, agent_task_status, job_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, subject_id, agent_task_id, agent_task_status, last_error, job_id, created_at, updated_at`,
		r.kind.Table(),
	)

	insertArgs := []any{
		uuid.New(),
		cmd.SubjectID,
		cmd.AgentTaskID,
		string(cmd.AgentTaskStatus),
		cmd.JobID,
	}

	rec, err := repository.QueryOne(ctx, r.db, q, insertArgs, scanRecord)
	if err != nil {
		// The partial unique index on active records fires when a concurrent
		// submission won the race for the same subject.
		return nil, repository.MapError(err, ErrNotFound, ErrActive)
	}

	r.logger.Info(
		"conversion created",
		"id", rec.ID,
		"subject_id", rec.SubjectID,
		"agent_task_id", rec.AgentTaskID,
	)
	return &rec, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, lastError *string) (*Record, error) {
	q := fmt.Sprintf(`
		UPDATE %s
		SET agent_task_status = $1, last_error = COALESCE($2, last_error), updated_at = now()
		WHERE id = $3
		RETURNING id, subject_id, agent_task_id, agent_task_status, last_error, job_id, created_at, updated_at`,
		r.kind.Table(),
	)

	rec, err := repository.QueryOne(ctx, r.db, q, []any{string(status), lastError, id}, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrActive)
	}
	return &rec, nil
}
