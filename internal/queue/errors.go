package queue

import (
	"errors"
	"fmt"
	"time"
)

// Queue errors.
var (
	ErrJobNotFound = errors.New("job not found")
	ErrUnknownKind = errors.New("unknown job kind")
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent wraps err so the runner fails the job without retrying.
// Used for logical errors that retrying cannot fix: conflicts, missing
// records, timeouts, terminal agent failures.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err (or anything it wraps) is permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

type retryAfterError struct {
	delay time.Duration
}

func (e *retryAfterError) Error() string {
	return fmt.Sprintf("retry after %v", e.delay)
}

// RetryAfter signals that the step is not done yet and should run again
// after the given delay. The reschedule does not consume a retry attempt.
func RetryAfter(delay time.Duration) error {
	return &retryAfterError{delay: delay}
}

// RetryDelay extracts the delay from a RetryAfter error.
func RetryDelay(err error) (time.Duration, bool) {
	var re *retryAfterError
	if errors.As(err, &re) {
		return re.delay, true
	}
	return 0, false
}
