package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/parishworks/sexton/internal/conversions"
	"github.com/parishworks/sexton/internal/queue"
)

// waitMaxAttempts bounds retries on transient agent failures. Routine
// polling does not consume attempts; only actual errors do.
const waitMaxAttempts = 5

func (rt *Runtime) waitStep(kind conversions.Kind, name string) queue.Step {
	return queue.Step{
		Name:        name,
		MaxAttempts: waitMaxAttempts,
		Handler:     rt.wait(kind),
	}
}

// wait performs exactly one poll of the agent task per invocation and asks
// the queue to reschedule it while the task is still in flight. Every poll
// result is written to the conversion record, so the polling API always
// reflects the last observed agent status.
func (rt *Runtime) wait(kind conversions.Kind) queue.HandlerFunc {
	sys := rt.system(kind)

	return func(ctx context.Context, job *queue.Job, input json.RawMessage) (json.RawMessage, error) {
		var in WaitInput
		if err := json.Unmarshal(input, &in); err != nil {
			return nil, queue.Permanent(fmt.Errorf("%w: %v", ErrInvalidInput, err))
		}
		if in.ConversionID == uuid.Nil {
			return nil, queue.Permanent(fmt.Errorf("%w: conversionId is required", ErrInvalidInput))
		}

		record, err := sys.Find(ctx, in.ConversionID)
		if err != nil {
			if errors.Is(err, conversions.ErrNotFound) {
				return nil, queue.Permanent(err)
			}
			return nil, fmt.Errorf("find conversion record: %w", err)
		}
		if record.AgentTaskID == "" {
			return nil, queue.Permanent(
				fmt.Errorf("%w: conversion %s has no agent task", conversions.ErrNotFound, record.ID),
			)
		}

		polled, err := rt.Agent.TaskStatus(ctx, kind, record.AgentTaskID)
		if err != nil {
			return nil, fmt.Errorf("poll agent task: %w", err)
		}

		status, err := conversions.ParseStatus(polled.TaskStatus)
		if err != nil {
			return nil, queue.Permanent(err)
		}

		var detail *string
		if status == conversions.StatusFailed && polled.Error != "" {
			detail = &polled.Error
		}

		if _, err := sys.UpdateStatus(ctx, record.ID, status, detail); err != nil {
			return nil, fmt.Errorf("record conversion status: %w", err)
		}

		switch {
		case status == conversions.StatusCompleted:
			rt.logger().Info(
				"conversion completed",
				"kind", string(kind),
				"conversion_id", record.ID,
			)
			return json.Marshal(WaitOutput{Status: status})
		case status == conversions.StatusFailed:
			message := polled.Error
			if message == "" {
				message = "agent reported failure without detail"
			}
			return nil, queue.Permanent(fmt.Errorf("%w: %s", ErrConversionFailed, message))
		case rt.now().After(record.CreatedAt.Add(rt.pollTimeout())):
			return nil, queue.Permanent(fmt.Errorf("%w after %s", ErrPollTimeout, rt.pollTimeout()))
		default:
			return nil, queue.RetryAfter(rt.pollInterval())
		}
	}
}
