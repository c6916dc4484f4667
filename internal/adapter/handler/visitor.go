package handler

import (
	"net/http"
	"time"

	"studentpay/internal/usecase"
	"studentpay/utils/logger"

	"github.com/labstack/echo/v4"
)

const sessionContextKey = "studentpay.session"

// VisitorSessions hands out the session of a visitor id, assigning a new id
// when the given one is unusable.
type VisitorSessions interface {
	Open(id string) (string, *usecase.Session)
}

// CookieConfig describes the visitor cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Visitors attaches the visitor's session to the request, issuing a visitor
// cookie to new visitors.
func Visitors(sessions VisitorSessions, cookie CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var presented string
			if ck, err := c.Cookie(cookie.Name); err == nil {
				presented = ck.Value
			}

			id, s := sessions.Open(presented)
			if id != presented {
				c.SetCookie(&http.Cookie{
					Name:     cookie.Name,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cookie.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cookie.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(sessionContextKey, s)
			c.SetRequest(c.Request().WithContext(logger.WithVisitorID(c.Request().Context(), id)))
			return next(c)
		}
	}
}

func sessionFrom(c echo.Context) (*usecase.Session, error) {
	s, ok := c.Get(sessionContextKey).(*usecase.Session)
	if !ok || s == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "visitor session missing")
	}
	return s, nil
}
