package handler

import (
	"net/http"

	"studentpay/internal/domain"
	"studentpay/internal/usecase"

	"github.com/labstack/echo/v4"
)

// PaymentHandler serves the public pages students pay through.
type PaymentHandler struct {
	directory *usecase.Directory
}

func NewPaymentHandler(directory *usecase.Directory) *PaymentHandler {
	return &PaymentHandler{directory: directory}
}

// Departments handles GET /departments.
func (h *PaymentHandler) Departments(c echo.Context) error {
	depts, err := h.directory.Departments(c.Request().Context())
	if err != nil {
		return mapDomainError(err)
	}
	if depts == nil {
		depts = []domain.Department{}
	}
	return c.JSON(http.StatusOK, depts)
}

// Department handles GET /departments/:id.
func (h *PaymentHandler) Department(c echo.Context) error {
	dept, err := h.directory.Department(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, dept)
}

// FeeItem handles GET /departments/:id/payments/:pid.
func (h *PaymentHandler) FeeItem(c echo.Context) error {
	item, err := h.directory.FeeItem(c.Request().Context(), c.Param("id"), c.Param("pid"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// Pay handles POST /pay.
func (h *PaymentHandler) Pay(c echo.Context) error {
	var req domain.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	started, err := h.directory.Pay(c.Request().Context(), req)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, started)
}

// VerifyTransaction handles GET /pay/verify?trxref=.
func (h *PaymentHandler) VerifyTransaction(c echo.Context) error {
	result, err := h.directory.VerifyTransaction(c.Request().Context(), c.QueryParam("trxref"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type receiptResponse struct {
	*domain.ReceiptVerification
	Valid bool `json:"valid"`
}

// VerifyReceipt handles GET /receipts/verify?hash=.
func (h *PaymentHandler) VerifyReceipt(c echo.Context) error {
	result, err := h.directory.VerifyReceipt(c.Request().Context(), c.QueryParam("hash"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, receiptResponse{ReceiptVerification: result, Valid: result.Valid()})
}
