package handler

import (
	"net/http"

	"studentpay/internal/domain"

	"github.com/labstack/echo/v4"
)

// AuthHandler serves the login, signup, logout and verification pending
// pages.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginPageResponse struct {
	Reason string `json:"reason,omitempty"`
	Banner string `json:"banner,omitempty"`
}

type authResponse struct {
	DepartmentID string `json:"department_id,omitempty"`
	Next         string `json:"next"`
}

// LoginPage handles GET /department/login.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	reason := domain.LoginReason(c.QueryParam("reason"))
	banner := reason.Banner()
	if banner == "" {
		reason = ""
	}
	return c.JSON(http.StatusOK, loginPageResponse{Reason: string(reason), Banner: banner})
}

// Login handles POST /department/login.
func (h *AuthHandler) Login(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cred, err := s.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, authResponse{DepartmentID: cred.DepartmentID, Next: PathDashboard})
}

// Signup handles POST /department/signup.
func (h *AuthHandler) Signup(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}

	var form domain.SignupForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cred, err := s.Auth.Signup(c.Request().Context(), form)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, authResponse{DepartmentID: cred.DepartmentID, Next: PathVerificationPending})
}

// Logout handles POST /department/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	if err := s.Auth.Logout(c.Request().Context()); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, authResponse{Next: PathLogin})
}

// VerificationPending handles GET /department/verification-pending. The
// guard has already sent verified departments on.
func (h *AuthHandler) VerificationPending(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "pending",
		"message": "Your department account is awaiting verification by an administrator.",
	})
}
