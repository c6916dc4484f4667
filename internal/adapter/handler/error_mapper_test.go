package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"studentpay/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"session expired", domain.ErrSessionExpired, http.StatusUnauthorized},
		{"credentials refused", domain.NewBackendError(401, ""), http.StatusUnauthorized},
		{"not found", domain.NewBackendError(404, ""), http.StatusNotFound},
		{"rejected", domain.NewBackendError(400, ""), http.StatusBadRequest},
		{"backend down", domain.NewBackendError(503, ""), http.StatusBadGateway},
		{"malformed response", domain.ErrMalformedResponse, http.StatusBadGateway},
		{"missing department", domain.ErrMissingDepartment, http.StatusBadGateway},
		{"store unavailable", domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := mapDomainError(tt.err)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapDomainError_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("portal: %w", domain.ErrSessionExpired)
	assert.Equal(t, http.StatusUnauthorized, mapDomainError(wrapped).Code)

	doubleWrapped := fmt.Errorf("outer: %w", wrapped)
	assert.Equal(t, http.StatusUnauthorized, mapDomainError(doubleWrapped).Code)
}

func TestMapDomainError_SurfacesBackendDetail(t *testing.T) {
	err := fmt.Errorf("login: %w", domain.NewBackendError(401, "No active account found with the given credentials"))

	httpErr := mapDomainError(err)

	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Equal(t, "No active account found with the given credentials", httpErr.Message)
}

func TestMapDomainError_HidesInternalDetail(t *testing.T) {
	httpErr := mapDomainError(domain.NewBackendError(500, "Traceback (most recent call last)"))

	assert.Equal(t, http.StatusBadGateway, httpErr.Code)
	assert.Equal(t, "studentpay backend unavailable", httpErr.Message)
}
