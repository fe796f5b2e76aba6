package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/parishworks/sexton/pkg/lifecycle"
)

// RunnerConfig tunes the worker pool.
type RunnerConfig struct {
	Workers      int
	PollInterval time.Duration
	Lease        time.Duration
	BackoffBase  time.Duration
	BackoffCap   time.Duration
}

// Runner drives a worker pool that claims due jobs from the store and
// executes their definition steps.
type Runner struct {
	store    Store
	registry *Registry
	logger   *slog.Logger
	config   RunnerConfig
}

// NewRunner creates a Runner.
func NewRunner(
	store Store,
	registry *Registry,
	logger *slog.Logger,
	config RunnerConfig,
) *Runner {
	if config.Workers < 1 {
		config.Workers = 1
	}

	return &Runner{
		store:    store,
		registry: registry,
		logger:   logger.With("system", "queue"),
		config:   config,
	}
}

// Start launches the workers under the lifecycle coordinator. Workers stop
// when the coordinator's context is cancelled; shutdown waits for in-flight
// jobs to finish their current step.
func (r *Runner) Start(lc *lifecycle.Coordinator) {
	ctx := lc.Context()

	g := new(errgroup.Group)
	for i := 0; i < r.config.Workers; i++ {
		g.Go(func() error {
			r.work(ctx)
			return nil
		})
	}

	r.logger.Info(
		"queue workers started",
		"workers", r.config.Workers,
		"kinds", r.registry.Kinds(),
	)

	lc.OnShutdown(func() {
		<-ctx.Done()
		g.Wait()
		r.logger.Info("queue workers stopped")
	})
}

func (r *Runner) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ran, err := r.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.Error("claim job", "error", err)
		}

		if ran {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.config.PollInterval):
		}
	}
}

// RunOnce claims and executes at most one due job. It reports whether a job
// was claimed. Tests use it to drive the queue deterministically.
func (r *Runner) RunOnce(ctx context.Context) (bool, error) {
	job, err := r.store.Claim(ctx, r.config.Lease)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	r.execute(ctx, job)
	return true, nil
}

func (r *Runner) execute(ctx context.Context, job *Job) {
	logger := r.logger.With("job_id", job.ID, "kind", job.Kind, "step", job.Step)

	def, ok := r.registry.Lookup(job.Kind)
	if !ok {
		r.settle(ctx, logger, r.store.Fail(ctx, job.ID, fmt.Sprintf("%v: %s", ErrUnknownKind, job.Kind)))
		return
	}
	if job.Step >= len(def.Steps) {
		r.settle(ctx, logger, r.store.Fail(ctx, job.ID, fmt.Sprintf("step %d out of range", job.Step)))
		return
	}

	step := def.Steps[job.Step]
	output, err := step.Handler(ctx, job, job.Input)

	switch {
	case err == nil:
		if job.Step+1 < len(def.Steps) {
			logger.Info("step finished", "name", step.Name)
			r.settle(ctx, logger, r.store.Advance(ctx, job.ID, job.Step+1, output))
		} else {
			logger.Info("job completed", "name", step.Name)
			r.settle(ctx, logger, r.store.Complete(ctx, job.ID, output))
		}
	case isRetryAfter(err):
		delay, _ := RetryDelay(err)
		r.settle(ctx, logger, r.store.Reschedule(ctx, job.ID, time.Now().Add(delay), job.Attempts, nil))
	case IsPermanent(err):
		logger.Warn("job failed", "name", step.Name, "error", err)
		r.settle(ctx, logger, r.store.Fail(ctx, job.ID, err.Error()))
	default:
		attempts := job.Attempts + 1
		if attempts >= step.maxAttempts() {
			logger.Warn(
				"job failed",
				"name", step.Name,
				"attempts", attempts,
				"error", err,
			)
			r.settle(ctx, logger, r.store.Fail(ctx, job.ID, err.Error()))
			return
		}

		delay := r.backoff(attempts)
		logger.Warn(
			"step retry scheduled",
			"name", step.Name,
			"attempts", attempts,
			"delay", delay,
			"error", err,
		)

		message := err.Error()
		r.settle(ctx, logger, r.store.Reschedule(ctx, job.ID, time.Now().Add(delay), attempts, &message))
	}
}

// settle logs store write failures. The job stays leased, so a lost write
// surfaces as the job becoming due again after the lease expires.
func (r *Runner) settle(ctx context.Context, logger *slog.Logger, err error) {
	if err != nil && ctx.Err() == nil {
		logger.Error("record job outcome", "error", err)
	}
}

func (r *Runner) backoff(attempts int) time.Duration {
	delay := r.config.BackoffBase
	if delay <= 0 {
		delay = time.Second
	}

	for i := 1; i < attempts; i++ {
		delay *= 2
		if r.config.BackoffCap > 0 && delay >= r.config.BackoffCap {
			return r.config.BackoffCap
		}
	}

	return delay
}

func isRetryAfter(err error) bool {
	_, ok := RetryDelay(err)
	return ok
}
