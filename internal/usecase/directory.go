package usecase

import (
	"context"
	"fmt"
	"strings"

	"studentpay/internal/domain"
)

// Directory serves the public pages students use to pay.
type Directory struct {
	api domain.PaymentDirectory
}

// NewDirectory creates a new Directory usecase.
func NewDirectory(api domain.PaymentDirectory) *Directory {
	return &Directory{api: api}
}

// Departments lists every department.
func (uc *Directory) Departments(ctx context.Context) ([]domain.Department, error) {
	return uc.api.ListDepartments(ctx)
}

// Department fetches one department.
func (uc *Directory) Department(ctx context.Context, id string) (*domain.Department, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: department id is required", domain.ErrInvalidInput)
	}
	return uc.api.GetDepartment(ctx, id)
}

// FeeItem fetches one fee item a student is about to pay.
func (uc *Directory) FeeItem(ctx context.Context, departmentID, itemID string) (*domain.FeeItem, error) {
	if strings.TrimSpace(departmentID) == "" || strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("%w: department and fee item are required", domain.ErrInvalidInput)
	}
	return uc.api.GetFeeItem(ctx, departmentID, itemID)
}

// Pay starts a payment and returns where the student completes it.
func (uc *Directory) Pay(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentInitiation, error) {
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	switch {
	case !strings.Contains(req.CustomerEmail, "@"):
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	case req.FirstName == "" || req.LastName == "":
		return nil, fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	case req.Payment == "" || req.Department == "":
		return nil, fmt.Errorf("%w: department and fee item are required", domain.ErrInvalidInput)
	}
	return uc.api.InitiatePayment(ctx, req)
}

// VerifyTransaction confirms a payment after the gateway redirected back.
func (uc *Directory) VerifyTransaction(ctx context.Context, reference string) (*domain.TransactionVerification, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("%w: transaction reference is required", domain.ErrInvalidInput)
	}
	return uc.api.VerifyTransaction(ctx, reference)
}

// VerifyReceipt checks a receipt hash.
func (uc *Directory) VerifyReceipt(ctx context.Context, hash string) (*domain.ReceiptVerification, error) {
	if strings.TrimSpace(hash) == "" {
		return nil, fmt.Errorf("%w: no receipt hash provided", domain.ErrInvalidInput)
	}
	return uc.api.VerifyReceipt(ctx, hash)
}
