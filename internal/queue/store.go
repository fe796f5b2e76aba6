package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parishworks/sexton/pkg/repository"
)

// Store is the durable backing of the queue. The Postgres implementation is
// the production store; Memory backs tests and single-process setups.
type Store interface {
	// Enqueue persists a new job for the kind with the given step-0 input.
	Enqueue(ctx context.Context, kind string, input any) (*Job, error)

	// Claim leases the next due job, marking it running and pushing its
	// run_at out by the lease duration so a crashed worker's job becomes
	// claimable again. Returns (nil, nil) when nothing is due.
	Claim(ctx context.Context, lease time.Duration) (*Job, error)

	// Advance moves a job to the next step, storing the finished step's
	// output as the next step's input and resetting the attempt counter.
	Advance(ctx context.Context, id uuid.UUID, step int, input json.RawMessage) error

	// Complete marks a job completed with its final output.
	Complete(ctx context.Context, id uuid.UUID, output json.RawMessage) error

	// Fail marks a job failed with an error message.
	Fail(ctx context.Context, id uuid.UUID, message string) error

	// Reschedule makes a job due again at runAt with the given attempt
	// count. A non-nil message records the error that caused the retry.
	Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time, attempts int, message *string) error

	// Find returns a job by id.
	Find(ctx context.Context, id uuid.UUID) (*Job, error)
}

type store struct {
	db *sql.DB
}

// NewStore creates the Postgres-backed Store.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

const jobColumns = `id, kind, step, input, output, status, attempts, run_at, last_error, created_at, updated_at`

func (s *store) Enqueue(ctx context.Context, kind string, input any) (*Job, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal job input: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO public.jobs (id, kind, step, input, status, attempts, run_at)
		VALUES ($1, $2, 0, $3, 'queued', 0, now())
		RETURNING %s`,
		jobColumns,
	)

	job, err := repository.QueryOne(
		ctx, s.db, query,
		[]any{uuid.New(), kind, payload},
		scanJob,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Claim uses SKIP LOCKED so concurrent workers never contend over the same
// row. Leasing rather than deleting keeps crashed work recoverable: a job
// whose lease expires is simply due again.
func (s *store) Claim(ctx context.Context, lease time.Duration) (*Job, error) {
	query := fmt.Sprintf(`
		UPDATE public.jobs
		SET status = 'running', run_at = now() + make_interval(secs => $1), updated_at = now()
		WHERE id = (
			SELECT id FROM public.jobs
			WHERE status IN ('queued', 'running')
			AND run_at <= now()
			ORDER BY run_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s`,
		jobColumns,
	)

	job, err := repository.QueryOne(
		ctx, s.db, query,
		[]any{lease.Seconds()},
		scanJob,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (s *store) Advance(ctx context.Context, id uuid.UUID, step int, input json.RawMessage) error {
	query := `
		UPDATE public.jobs
		SET step = $2, input = $3, attempts = 0, status = 'running',
			run_at = now(), last_error = NULL, updated_at = now()
		WHERE id = $1`

	return s.update(ctx, id, query, id, step, input)
}

func (s *store) Complete(ctx context.Context, id uuid.UUID, output json.RawMessage) error {
	query := `
		UPDATE public.jobs
		SET status = 'completed', output = $2, last_error = NULL, updated_at = now()
		WHERE id = $1`

	return s.update(ctx, id, query, id, output)
}

func (s *store) Fail(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE public.jobs
		SET status = 'failed', last_error = $2, updated_at = now()
		WHERE id = $1`

	return s.update(ctx, id, query, id, message)
}

func (s *store) Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time, attempts int, message *string) error {
	query := `
		UPDATE public.jobs
		SET status = 'running', run_at = $2, attempts = $3,
			last_error = COALESCE($4, last_error), updated_at = now()
		WHERE id = $1`

	return s.update(ctx, id, query, id, runAt, attempts, message)
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM public.jobs WHERE id = $1`, jobColumns)

	job, err := repository.QueryOne(ctx, s.db, query, []any{id}, scanJob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (s *store) update(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	if err := repository.ExecExpectOne(ctx, s.db, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return ErrJobNotFound
		}
		return err
	}
	return nil
}

func scanJob(s repository.Scanner) (Job, error) {
	var (
		job       Job
		input     []byte
		output    []byte
		lastError sql.NullString
	)

	err := s.Scan(
		&job.ID,
		&job.Kind,
		&job.Step,
		&input,
		&output,
		&job.Status,
		&job.Attempts,
		&job.RunAt,
		&lastError,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return Job{}, err
	}

	job.Input = json.RawMessage(input)
	if output != nil {
		job.Output = json.RawMessage(output)
	}
	if lastError.Valid {
		job.LastError = &lastError.String
	}

	return job, nil
}
