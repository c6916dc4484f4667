package handler

import (
	"errors"
	"net/http"

	"studentpay/internal/domain"

	"github.com/labstack/echo/v4"
)

// mapDomainError converts a domain error into an appropriate echo.HTTPError.
// Messages the backend gave for a rejection are passed on.
func mapDomainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrSessionExpired):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")

	case errors.Is(err, domain.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, backendDetail(err, "credentials rejected"))

	case errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, backendDetail(err, "not found"))

	case errors.Is(err, domain.ErrBackendRejected):
		return echo.NewHTTPError(http.StatusBadRequest, backendDetail(err, "request rejected"))

	case errors.Is(err, domain.ErrBackendUnavailable),
		errors.Is(err, domain.ErrMalformedResponse),
		errors.Is(err, domain.ErrMissingDepartment):
		return echo.NewHTTPError(http.StatusBadGateway, "studentpay backend unavailable")

	case errors.Is(err, domain.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func backendDetail(err error, fallback string) string {
	var be *domain.BackendError
	if errors.As(err, &be) && be.Detail != "" {
		return be.Detail
	}
	return fallback
}
