package usecase

import (
	"context"
	"testing"

	"studentpay/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortal_RequiresCredential(t *testing.T) {
	h := newHarness(&fakeBackend{})

	_, err := h.session.Portal.FeeItems(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestPortal_RetriesOnceAfterRefresh(t *testing.T) {
	backend := &fakeBackend{
		refreshAccess: "a2",
		feeItems:      []domain.FeeItem{{ID: "1", PaymentFor: "Dues", AmountDue: 2500}},
		feeItemsErrs:  []error{domain.NewBackendError(401, "token expired")},
	}
	h := newHarness(backend)
	h.login()

	items, err := h.session.Portal.FeeItems(context.Background())

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, []string{"a1", "a2"}, backend.usedTokens)
	assert.Equal(t, int32(1), backend.refreshCalls.Load())
}

func TestPortal_ExpiredSession(t *testing.T) {
	backend := &fakeBackend{
		refreshErr:   domain.NewBackendError(401, "token not valid"),
		feeItemsErrs: []error{domain.NewBackendError(401, "token expired")},
	}
	h := newHarness(backend)
	h.login()
	ctx := context.Background()

	_, err := h.session.Portal.FeeItems(ctx)

	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.False(t, h.store.IsAuthenticated(ctx))
}

func TestPortal_OtherErrorsAreNotRetried(t *testing.T) {
	backend := &fakeBackend{feeItemsErrs: []error{domain.NewBackendError(500, "boom")}}
	h := newHarness(backend)
	h.login()

	_, err := h.session.Portal.FeeItems(context.Background())

	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Equal(t, int32(0), backend.refreshCalls.Load())
}

func TestPortal_FeeItemValidation(t *testing.T) {
	h := newHarness(&fakeBackend{})
	h.login()
	ctx := context.Background()

	_, err := h.session.Portal.CreateFeeItem(ctx, domain.FeeItemInput{PaymentFor: " ", AmountDue: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.session.Portal.CreateFeeItem(ctx, domain.FeeItemInput{PaymentFor: "Dues", AmountDue: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.session.Portal.UpdateFeeItem(ctx, "", domain.FeeItemInput{PaymentFor: "Dues", AmountDue: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, h.session.Portal.DeleteFeeItem(ctx, " "), domain.ErrInvalidInput)

	item, err := h.session.Portal.CreateFeeItem(ctx, domain.FeeItemInput{PaymentFor: " Lab fee ", AmountDue: 1500})
	require.NoError(t, err)
	assert.Equal(t, "Lab fee", item.PaymentFor)
}

func TestPortal_ProfileAndDashboard(t *testing.T) {
	h := newHarness(&fakeBackend{})
	h.login()
	ctx := context.Background()

	_, err := h.session.Portal.UpdateProfile(ctx, domain.ProfileUpdate{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	dept, err := h.session.Portal.UpdateProfile(ctx, domain.ProfileUpdate{Name: "Physics"})
	require.NoError(t, err)
	assert.Equal(t, "Physics", dept.Name)

	stats, err := h.session.Portal.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalPayments)
}

func TestPortal_ChangePassword(t *testing.T) {
	tests := []struct {
		name        string
		req         domain.PasswordChange
		wantErr     error
		stillLogged bool
	}{
		{"missing fields", domain.PasswordChange{OldPassword: "old"}, domain.ErrInvalidInput, true},
		{"same password", domain.PasswordChange{OldPassword: "pw", NewPassword: "pw"}, domain.ErrInvalidInput, true},
		{"keeps session", domain.PasswordChange{OldPassword: "old", NewPassword: "new"}, nil, true},
		{"logs out everywhere", domain.PasswordChange{OldPassword: "old", NewPassword: "new", LogoutAll: true}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(&fakeBackend{})
			h.login()
			ctx := context.Background()

			err := h.session.Portal.ChangePassword(ctx, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.stillLogged, h.store.IsAuthenticated(ctx))
		})
	}
}
