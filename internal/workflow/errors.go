package workflow

import (
	"errors"
	"net/http"
)

// Workflow errors.
var (
	// ErrInvalidInput indicates a malformed or incomplete step input.
	ErrInvalidInput = errors.New("invalid workflow input")

	// ErrSelector indicates an enqueue request that did not pick exactly
	// one of task or workflow execution.
	ErrSelector = errors.New("exactly one of task or workflow must be set")

	// ErrConversionFailed indicates the agent reported the task failed.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrPollTimeout indicates the agent task did not settle before the
	// configured polling deadline.
	ErrPollTimeout = errors.New("timed out waiting for conversion")
)

// MapHTTPStatus translates workflow errors into HTTP status codes for the
// enqueue endpoints.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrSelector):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
