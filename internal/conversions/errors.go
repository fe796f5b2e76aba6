package conversions

import (
	"errors"
	"net/http"
)

// Domain errors for conversion record operations.
var (
	ErrNotFound      = errors.New("conversion not found")
	ErrActive        = errors.New("cannot start a new conversion when an existing conversion is active")
	ErrInvalidStatus = errors.New("invalid conversion status")
	ErrInvalidID     = errors.New("invalid conversion id")
)

// MapHTTPStatus maps conversion domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrActive) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidStatus) || errors.Is(err, ErrInvalidID) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
