package handler

import (
	"errors"
	"net/http"

	"studentpay/internal/domain"
	"studentpay/internal/usecase"

	"github.com/labstack/echo/v4"
)

// DepartmentHandler serves the pages of a logged-in department. Every route
// sits behind the protected guard.
type DepartmentHandler struct {
	directory *usecase.Directory
}

func NewDepartmentHandler(directory *usecase.Directory) *DepartmentHandler {
	return &DepartmentHandler{directory: directory}
}

// portalError turns a lost session into the login redirect the guard would
// have produced and maps everything else.
func portalError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrUnauthenticated) {
		return c.Redirect(http.StatusFound, LoginPath(domain.ReasonSessionExpired))
	}
	return mapDomainError(err)
}

// Dashboard handles GET /department/dashboard.
func (h *DepartmentHandler) Dashboard(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	stats, err := s.Portal.Dashboard(c.Request().Context())
	if err != nil {
		return portalError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Profile handles GET /department/profile.
func (h *DepartmentHandler) Profile(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	id, ok := s.Store.DepartmentID(ctx)
	if !ok {
		return portalError(c, domain.ErrUnauthenticated)
	}
	dept, err := h.directory.Department(ctx, id)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, dept)
}

// UpdateProfile handles POST /department/profile.
func (h *DepartmentHandler) UpdateProfile(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	var profile domain.ProfileUpdate
	if err := c.Bind(&profile); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	dept, err := s.Portal.UpdateProfile(c.Request().Context(), profile)
	if err != nil {
		return portalError(c, err)
	}
	return c.JSON(http.StatusOK, dept)
}

// ChangePassword handles POST /department/change-password.
func (h *DepartmentHandler) ChangePassword(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	var req domain.PasswordChange
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.Portal.ChangePassword(c.Request().Context(), req); err != nil {
		return portalError(c, err)
	}

	next := PathDashboard
	if req.LogoutAll {
		next = PathLogin
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "password changed", "next": next})
}

// Payments handles GET /department/payments.
func (h *DepartmentHandler) Payments(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	items, err := s.Portal.FeeItems(c.Request().Context())
	if err != nil {
		return portalError(c, err)
	}
	if items == nil {
		items = []domain.FeeItem{}
	}
	return c.JSON(http.StatusOK, items)
}

// CreatePayment handles POST /department/payments.
func (h *DepartmentHandler) CreatePayment(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	var in domain.FeeItemInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	item, err := s.Portal.CreateFeeItem(c.Request().Context(), in)
	if err != nil {
		return portalError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// UpdatePayment handles PUT /department/payments/:id.
func (h *DepartmentHandler) UpdatePayment(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	var in domain.FeeItemInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	item, err := s.Portal.UpdateFeeItem(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return portalError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// DeletePayment handles DELETE /department/payments/:id.
func (h *DepartmentHandler) DeletePayment(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	if err := s.Portal.DeleteFeeItem(c.Request().Context(), c.Param("id")); err != nil {
		return portalError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
