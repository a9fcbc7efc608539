// Package apperr defines the error taxonomy shared by finboard services.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned by the interceptor on HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrServerError is returned by the interceptor on HTTP 500.
	ErrServerError = errors.New("internal server error")
	// ErrNetwork is returned by the interceptor on transport failures.
	ErrNetwork = errors.New("network error")
	// ErrValidation marks input rejected before any request is made.
	ErrValidation = errors.New("validation failed")
	// ErrLocalData marks a cached item that is missing or unparsable.
	ErrLocalData = errors.New("local data not found or malformed")
	// ErrMalformedResponse marks an upstream payload of the wrong shape.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// DomainError is any other non-success upstream status. Detail is taken from
// the response body's "detail" field when present.
type DomainError struct {
	Status int
	Detail string
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is reports ErrValidation so callers can match on the sentinel.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation returns a ValidationError with msg.
func Validation(msg string) error {
	return &ValidationError{Message: msg}
}

// Redirected reports whether err is handled globally by a navigation to an
// error route, so views should not surface it themselves.
func Redirected(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrServerError) || errors.Is(err, ErrNetwork)
}
