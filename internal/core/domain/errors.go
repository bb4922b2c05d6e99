package domain

import (
	"errors"
	"fmt"
)

// Gateway error taxonomy. Handlers and middleware return these sentinels;
// the HTTP error handler maps them to status codes and the response envelope.
var (
	ErrMissingHeader           = errors.New("missing authorization header")
	ErrMalformedHeader         = errors.New("invalid authorization header")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrUpstreamUnavailable     = errors.New("authentication service unavailable")
	ErrNotAuthenticated        = errors.New("authentication required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrNotFound                = errors.New("resource not found")
	ErrInvalidInput            = errors.New("invalid input")
	ErrCorsRejected            = errors.New("origin not allowed")
	ErrInternal                = errors.New("internal error")
)

// UpstreamError wraps a failed exchange with the auth service, carrying the
// best-known HTTP status for the client. errors.Is(err, ErrUpstreamUnavailable)
// holds for every UpstreamError.
type UpstreamError struct {
	Status int
	Err    error
}

// NewUpstreamError builds an UpstreamError. A non-positive status falls back
// to 401, the safest default for a failed credential check.
func NewUpstreamError(status int, err error) *UpstreamError {
	if status <= 0 {
		status = 401
	}
	return &UpstreamError{Status: status, Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream auth failure (status %d): %v", e.Status, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamUnavailable }
