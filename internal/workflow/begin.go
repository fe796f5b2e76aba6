package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parishworks/sexton/internal/agent"
	"github.com/parishworks/sexton/internal/conversions"
	"github.com/parishworks/sexton/internal/queue"
)

// beginMaxAttempts bounds retries of the begin step. The agent start call is
// idempotent per job, so a retried begin cannot double-start a conversion.
const beginMaxAttempts = 2

func (rt *Runtime) beginStep(kind conversions.Kind, name string) queue.Step {
	return queue.Step{
		Name:        name,
		MaxAttempts: beginMaxAttempts,
		Handler:     rt.begin(kind),
	}
}

// begin starts a conversion: reject if the subject already has one in flight,
// ask the agent to start the task, then register the conversion record. The
// conflict pre-check is best-effort; the records table's partial unique index
// settles concurrent submissions, and the resulting insert conflict maps to
// the same permanent error.
func (rt *Runtime) begin(kind conversions.Kind) queue.HandlerFunc {
	sys := rt.system(kind)

	return func(ctx context.Context, job *queue.Job, input json.RawMessage) (json.RawMessage, error) {
		var in BeginInput
		if err := json.Unmarshal(input, &in); err != nil {
			return nil, queue.Permanent(fmt.Errorf("%w: %v", ErrInvalidInput, err))
		}
		if err := in.Validate(); err != nil {
			return nil, queue.Permanent(err)
		}

		active, err := sys.CountActive(ctx, in.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("count active conversions: %w", err)
		}
		if active > 0 {
			return nil, queue.Permanent(conversions.ErrActive)
		}

		started, err := rt.Agent.StartConversion(ctx, kind, agent.StartRequest{
			URL:            in.URL,
			SubjectID:      in.SubjectID,
			IdempotencyKey: job.ID.String(),
		})
		if err != nil {
			return nil, fmt.Errorf("start conversion: %w", err)
		}

		status, err := conversions.ParseStatus(started.TaskStatus)
		if err != nil {
			return nil, queue.Permanent(err)
		}

		record, err := sys.Create(ctx, conversions.CreateCommand{
			SubjectID:       in.SubjectID,
			AgentTaskID:     started.TaskID,
			AgentTaskStatus: status,
			JobID:           job.ID,
		})
		if err != nil {
			if errors.Is(err, conversions.ErrActive) {
				return nil, queue.Permanent(err)
			}
			return nil, fmt.Errorf("create conversion record: %w", err)
		}

		rt.logger().Info(
			"conversion registered",
			"kind", string(kind),
			"subject_id", in.SubjectID,
			"conversion_id", record.ID,
			"agent_task_id", record.AgentTaskID,
		)

		return json.Marshal(BeginOutput{ConversionID: record.ID})
	}
}
