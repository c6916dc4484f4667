package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"studentpay/internal/domain"
	"studentpay/internal/usecase"
	"studentpay/utils/logger"

	"github.com/labstack/echo/v4"
)

// Page paths guard outcomes redirect to.
const (
	PathLogin               = "/department/login"
	PathVerificationPending = "/department/verification-pending"
	PathDashboard           = "/department/dashboard"
)

// HeaderVerificationStatus marks a page served while the verification status
// was unknown.
const HeaderVerificationStatus = "X-Verification-Status"

// LoginPath is the login page URL carrying reason.
func LoginPath(reason domain.LoginReason) string {
	if reason == "" {
		return PathLogin
	}
	return PathLogin + "?reason=" + url.QueryEscape(string(reason))
}

type guardFunc func(*usecase.Guards, context.Context) domain.Outcome

// Navigator runs a guard before a page and follows its outcome.
type Navigator struct {
	logger *slog.Logger
}

func NewNavigator(l *slog.Logger) *Navigator {
	if l == nil {
		l = slog.Default()
	}
	return &Navigator{logger: l}
}

// Protected guards pages of verified departments.
func (n *Navigator) Protected() echo.MiddlewareFunc {
	return n.guard(usecase.GuardProtected, (*usecase.Guards).ProtectedPage)
}

// RedirectIfAuthenticated guards the login page.
func (n *Navigator) RedirectIfAuthenticated() echo.MiddlewareFunc {
	return n.guard(usecase.GuardRedirectIfAuthed, (*usecase.Guards).RedirectIfAuthenticated)
}

// VerificationPending guards the verification pending page.
func (n *Navigator) VerificationPending() echo.MiddlewareFunc {
	return n.guard(usecase.GuardVerificationPending, (*usecase.Guards).VerificationPendingPage)
}

func (n *Navigator) guard(name string, evaluate guardFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, err := sessionFrom(c)
			if err != nil {
				return err
			}

			ctx := logger.WithGuard(c.Request().Context(), name)
			c.SetRequest(c.Request().WithContext(ctx))

			return n.follow(c, evaluate(s.Guards, ctx), next)
		}
	}
}

func (n *Navigator) follow(c echo.Context, outcome domain.Outcome, next echo.HandlerFunc) error {
	switch outcome.Kind {
	case domain.OutcomeAuthorized, domain.OutcomeStay:
		return next(c)
	case domain.OutcomeDegradedStay:
		c.Response().Header().Set(HeaderVerificationStatus, domain.VerificationUnknown.String())
		return next(c)
	case domain.OutcomeRedirectToLogin:
		return c.Redirect(http.StatusFound, LoginPath(outcome.Reason))
	case domain.OutcomeRedirectToVerificationPending:
		return c.Redirect(http.StatusFound, PathVerificationPending)
	case domain.OutcomeRedirectToDashboard:
		return c.Redirect(http.StatusFound, PathDashboard)
	default:
		n.logger.ErrorContext(c.Request().Context(), "unhandled guard outcome", "outcome", outcome.Kind.String())
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
