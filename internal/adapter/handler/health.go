package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	visitors func() int
}

// NewHealthHandler creates a new health handler. visitors reports the number
// of visitor sessions held and may be nil.
func NewHealthHandler(visitors func() int) *HealthHandler {
	return &HealthHandler{visitors: visitors}
}

// Handle processes the /health endpoint.
func (h *HealthHandler) Handle(c echo.Context) error {
	body := map[string]any{"status": "healthy"}
	if h.visitors != nil {
		body["visitors"] = h.visitors()
	}
	return c.JSON(http.StatusOK, body)
}
