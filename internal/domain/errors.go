package domain

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	ErrUnauthenticated = errors.New("no credential stored")
	ErrSessionExpired  = errors.New("session expired")
	ErrMissingRefresh  = errors.New("refresh token missing")
)

// Backend errors.
var (
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendRejected    = errors.New("backend rejected request")
	ErrMalformedResponse  = errors.New("malformed backend response")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("backend refused credentials")
)

// Input errors.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrMissingDepartment = errors.New("department id unknown")
)

// Store errors.
var (
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// BackendError carries the status code and message the backend answered with.
type BackendError struct {
	StatusCode int
	Detail     string
	kind       error
}

// NewBackendError classifies a non-2xx backend response.
func NewBackendError(status int, detail string) *BackendError {
	kind := ErrBackendRejected
	switch {
	case status == 401 || status == 403:
		kind = ErrUnauthorized
	case status == 404:
		kind = ErrNotFound
	case status >= 500:
		kind = ErrBackendUnavailable
	}
	return &BackendError{StatusCode: status, Detail: detail, kind: kind}
}

func (e *BackendError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: status %d", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.kind, e.StatusCode, e.Detail)
}

func (e *BackendError) Unwrap() error {
	return e.kind
}
