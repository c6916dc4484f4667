package usecase

import (
	"context"
	"testing"

	"studentpay/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	calls    int
	lastPay  domain.PaymentRequest
	receipts map[string]domain.ReceiptVerification
}

func (f *fakeDirectory) ListDepartments(context.Context) ([]domain.Department, error) {
	f.calls++
	return []domain.Department{{ID: "5", Name: "Physics"}}, nil
}

func (f *fakeDirectory) GetDepartment(_ context.Context, id string) (*domain.Department, error) {
	f.calls++
	if id != "5" {
		return nil, domain.NewBackendError(404, "Not found.")
	}
	return &domain.Department{ID: "5", Name: "Physics"}, nil
}

func (f *fakeDirectory) GetFeeItem(_ context.Context, _, itemID string) (*domain.FeeItem, error) {
	f.calls++
	return &domain.FeeItem{ID: "1", PaymentFor: "Dues", AmountDue: 2500}, nil
}

func (f *fakeDirectory) InitiatePayment(_ context.Context, req domain.PaymentRequest) (*domain.PaymentInitiation, error) {
	f.calls++
	f.lastPay = req
	return &domain.PaymentInitiation{AuthorizationURL: "https://checkout.example/abc", Reference: "ref-1"}, nil
}

func (f *fakeDirectory) VerifyTransaction(_ context.Context, reference string) (*domain.TransactionVerification, error) {
	f.calls++
	return &domain.TransactionVerification{Status: "success", Reference: reference}, nil
}

func (f *fakeDirectory) VerifyReceipt(_ context.Context, hash string) (*domain.ReceiptVerification, error) {
	f.calls++
	r, ok := f.receipts[hash]
	if !ok {
		return &domain.ReceiptVerification{Status: "invalid", Detail: "Receipt not found"}, nil
	}
	return &r, nil
}

func TestDirectory_Pay(t *testing.T) {
	api := &fakeDirectory{}
	uc := NewDirectory(api)
	ctx := context.Background()

	_, err := uc.Pay(ctx, domain.PaymentRequest{CustomerEmail: "student", FirstName: "Ada", LastName: "O", Payment: "1", Department: "5"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Pay(ctx, domain.PaymentRequest{CustomerEmail: "s@uni.edu", FirstName: "Ada", Payment: "1", Department: "5"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, api.calls)

	started, err := uc.Pay(ctx, domain.PaymentRequest{CustomerEmail: " s@uni.edu ", FirstName: "Ada", LastName: "Obi", Payment: "1", Department: "5"})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/abc", started.AuthorizationURL)
	assert.Equal(t, "s@uni.edu", api.lastPay.CustomerEmail)
}

func TestDirectory_Lookups(t *testing.T) {
	api := &fakeDirectory{receipts: map[string]domain.ReceiptVerification{"h1": {Status: "valid", Reference: "ref-1"}}}
	uc := NewDirectory(api)
	ctx := context.Background()

	_, err := uc.Department(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Department(ctx, "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.FeeItem(ctx, "5", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.VerifyTransaction(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.VerifyReceipt(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	receipt, err := uc.VerifyReceipt(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, receipt.Valid())

	receipt, err = uc.VerifyReceipt(ctx, "h2")
	require.NoError(t, err)
	assert.False(t, receipt.Valid())
}
