package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/parishworks/sexton/internal/queue"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRunnerConfig() queue.RunnerConfig {
	return queue.RunnerConfig{
		Workers:      1,
		PollInterval: time.Millisecond,
		Lease:        time.Minute,
		BackoffBase:  time.Millisecond,
		BackoffCap:   time.Second,
	}
}

// drive runs due jobs until the target job reaches a terminal status,
// stepping the store clock past reschedule delays between claims.
func drive(t *testing.T, runner *queue.Runner, store *queue.MemoryStore, jobID uuid.UUID, now *time.Time) *queue.Job {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if _, err := runner.RunOnce(ctx); err != nil {
			t.Fatalf("run once failed: %v", err)
		}

		job, err := store.Find(ctx, jobID)
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if job.Status.Terminal() {
			return job
		}

		*now = now.Add(10 * time.Second)
	}

	t.Fatal("job did not settle")
	return nil
}

func TestRunnerCompletesMultiStepJob(t *testing.T) {
	store := queue.NewMemoryStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })

	reg := queue.NewRegistry()
	var steps []string

	err := reg.Register(queue.Definition{
		Kind: "two-step",
		Steps: []queue.Step{
			{
				Name: "first",
				Handler: func(_ context.Context, _ *queue.Job, input json.RawMessage) (json.RawMessage, error) {
					steps = append(steps, "first:"+string(input))
					return json.RawMessage(`{"n":1}`), nil
				},
			},
			{
				Name: "second",
				Handler: func(_ context.Context, _ *queue.Job, input json.RawMessage) (json.RawMessage, error) {
					steps = append(steps, "second:"+string(input))
					return json.RawMessage(`{"n":2}`), nil
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	runner := queue.NewRunner(store, reg, testLogger(), testRunnerConfig())

	job, err := store.Enqueue(context.Background(), "two-step", map[string]int{"n": 0})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	final := drive(t, runner, store, job.ID, &now)

	if final.Status != queue.StatusCompleted {
		t.Errorf("status = %s, want completed", final.Status)
	}
	if string(final.Output) != `{"n":2}` {
		t.Errorf("output = %s, want final step output", final.Output)
	}
	if len(steps) != 2 {
		t.Fatalf("steps = %v, want two executions", steps)
	}
	if steps[0] != `first:{"n":0}` {
		t.Errorf("first step = %s, want enqueue input", steps[0])
	}
	if steps[1] != `second:{"n":1}` {
		t.Errorf("second step = %s, want first step output", steps[1])
	}
}

func TestRunnerRetriesUntilBudgetExhausted(t *testing.T) {
	store := queue.NewMemoryStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })

	reg := queue.NewRegistry()
	calls := 0

	err := reg.Register(queue.Definition{
		Kind: "flaky",
		Steps: []queue.Step{{
			Name:        "work",
			MaxAttempts: 3,
			Handler: func(context.Context, *queue.Job, json.RawMessage) (json.RawMessage, error) {
				calls++
				return nil, errors.New("upstream hiccup")
			},
		}},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	runner := queue.NewRunner(store, reg, testLogger(), testRunnerConfig())

	job, err := store.Enqueue(context.Background(), "flaky", nil)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	final := drive(t, runner, store, job.ID, &now)

	if final.Status != queue.StatusFailed {
		t.Errorf("status = %s, want failed", final.Status)
	}
	if calls != 3 {
		t.Errorf("handler calls = %d, want 3", calls)
	}
	if final.LastError == nil || *final.LastError != "upstream hiccup" {
		t.Errorf("last error = %v, want upstream hiccup", final.LastError)
	}
}

func TestRunnerPermanentErrorFailsImmediately(t *testing.T) {
	store := queue.NewMemoryStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })

	reg := queue.NewRegistry()
	calls := 0

	err := reg.Register(queue.Definition{
		Kind: "doomed",
		Steps: []queue.Step{{
			Name:        "work",
			MaxAttempts: 5,
			Handler: func(context.Context, *queue.Job, json.RawMessage) (json.RawMessage, error) {
				calls++
				return nil, queue.Permanent(errors.New("conflict"))
			},
		}},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	runner := queue.NewRunner(store, reg, testLogger(), testRunnerConfig())

	job, err := store.Enqueue(context.Background(), "doomed", nil)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	final := drive(t, runner, store, job.ID, &now)

	if final.Status != queue.StatusFailed {
		t.Errorf("status = %s, want failed", final.Status)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1 (no retries)", calls)
	}
}

func TestRunnerRetryAfterDoesNotConsumeAttempts(t *testing.T) {
	store := queue.NewMemoryStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })

	reg := queue.NewRegistry()
	polls := 0

	err := reg.Register(queue.Definition{
		Kind: "poller",
		Steps: []queue.Step{{
			Name:        "poll",
			MaxAttempts: 2,
			Handler: func(context.Context, *queue.Job, json.RawMessage) (json.RawMessage, error) {
				polls++
				if polls < 5 {
					return nil, queue.RetryAfter(time.Second)
				}
				return json.RawMessage(`{"status":"completed"}`), nil
			},
		}},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	runner := queue.NewRunner(store, reg, testLogger(), testRunnerConfig())

	job, err := store.Enqueue(context.Background(), "poller", nil)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	final := drive(t, runner, store, job.ID, &now)

	if final.Status != queue.StatusCompleted {
		t.Errorf("status = %s, want completed after polling", final.Status)
	}
	if polls != 5 {
		t.Errorf("polls = %d, want 5 (rescheduled past the attempt budget)", polls)
	}
	if final.Attempts != 0 {
		t.Errorf("attempts = %d, want 0 (polling consumes no attempts)", final.Attempts)
	}
}

func TestRunnerFailsUnknownKind(t *testing.T) {
	store := queue.NewMemoryStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })

	runner := queue.NewRunner(store, queue.NewRegistry(), testLogger(), testRunnerConfig())

	job, err := store.Enqueue(context.Background(), "ghost", nil)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	final := drive(t, runner, store, job.ID, &now)

	if final.Status != queue.StatusFailed {
		t.Errorf("status = %s, want failed", final.Status)
	}
	if final.LastError == nil {
		t.Error("last error should name the unknown kind")
	}
}

func TestRunOnceEmptyQueue(t *testing.T) {
	store := queue.NewMemoryStore()
	runner := queue.NewRunner(store, queue.NewRegistry(), testLogger(), testRunnerConfig())

	ran, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if ran {
		t.Error("RunOnce on empty queue should report no work")
	}
}
