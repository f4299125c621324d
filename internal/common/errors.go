// Package common defines shared constants and sentinel errors used across
// the store, service and HTTP layers. Callers should use errors.Is to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors, one per HTTP class of the API.
	ErrorBadRequest   = errors.New("bad request")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorInternal     = errors.New("internal error")

	// Not-found variants; both match ErrorNotFound.
	ErrorUserNotFound = fmt.Errorf("user %w", ErrorNotFound)
	ErrorPostNotFound = fmt.Errorf("post %w", ErrorNotFound)

	// Account lifecycle errors.
	ErrorNotVerified              = errors.New("email not verified")
	ErrorInvalidCredentials       = errors.New("invalid credentials")
	ErrorInvalidVerificationToken = errors.New("invalid or expired token")

	// Social graph errors.
	ErrorSelfFollow = errors.New("cannot follow yourself")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingToken = errors.New("missing token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)

// RequestError is a client-correctable input problem whose message is safe
// to return to the caller. It matches ErrorBadRequest.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Is(target error) bool { return target == ErrorBadRequest }

// NewRequestError builds a RequestError with the given client message.
func NewRequestError(msg string) error {
	return &RequestError{Message: msg}
}
