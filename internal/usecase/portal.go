package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"studentpay/internal/domain"
)

// Portal is what a logged-in department can do with its own account.
// Calls rejected for an expired access token are retried once after a
// refresh.
type Portal struct {
	api     domain.DepartmentPortal
	store   domain.CredentialStore
	refresh Refresher
	logger  *slog.Logger
}

// NewPortal creates a new Portal usecase.
func NewPortal(api domain.DepartmentPortal, s domain.CredentialStore, r Refresher, l *slog.Logger) *Portal {
	if l == nil {
		l = slog.Default()
	}
	return &Portal{api: api, store: s, refresh: r, logger: l}
}

// withCredential runs call with the current credential.
func (uc *Portal) withCredential(ctx context.Context, call func(cred domain.Credential) error) error {
	cred, ok := uc.store.Credential(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}

	err := call(cred)
	if !errors.Is(err, domain.ErrUnauthorized) {
		return err
	}

	uc.logger.InfoContext(ctx, "access token rejected, refreshing")
	if !uc.refresh.Execute(ctx) {
		return fmt.Errorf("%w: %w", domain.ErrSessionExpired, err)
	}
	cred, ok = uc.store.Credential(ctx)
	if !ok {
		return domain.ErrSessionExpired
	}
	return call(cred)
}

// FeeItems lists the department's fee items.
func (uc *Portal) FeeItems(ctx context.Context) ([]domain.FeeItem, error) {
	var items []domain.FeeItem
	err := uc.withCredential(ctx, func(cred domain.Credential) error {
		var err error
		items, err = uc.api.ListFeeItems(ctx, cred.AccessToken, cred.DepartmentID)
		return err
	})
	return items, err
}

// CreateFeeItem adds a fee item.
func (uc *Portal) CreateFeeItem(ctx context.Context, in domain.FeeItemInput) (*domain.FeeItem, error) {
	if err := validateFeeItem(&in); err != nil {
		return nil, err
	}

	var item *domain.FeeItem
	err := uc.withCredential(ctx, func(cred domain.Credential) error {
		var err error
		item, err = uc.api.CreateFeeItem(ctx, cred.AccessToken, cred.DepartmentID, in)
		return err
	})
	if err == nil {
		uc.logger.InfoContext(ctx, "fee item created", "payment_for", in.PaymentFor)
	}
	return item, err
}

// UpdateFeeItem replaces a fee item.
func (uc *Portal) UpdateFeeItem(ctx context.Context, itemID string, in domain.FeeItemInput) (*domain.FeeItem, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("%w: fee item id is required", domain.ErrInvalidInput)
	}
	if err := validateFeeItem(&in); err != nil {
		return nil, err
	}

	var item *domain.FeeItem
	err := uc.withCredential(ctx, func(cred domain.Credential) error {
		var err error
		item, err = uc.api.UpdateFeeItem(ctx, cred.AccessToken, cred.DepartmentID, itemID, in)
		return err
	})
	return item, err
}

// DeleteFeeItem removes a fee item.
func (uc *Portal) DeleteFeeItem(ctx context.Context, itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("%w: fee item id is required", domain.ErrInvalidInput)
	}
	return uc.withCredential(ctx, func(cred domain.Credential) error {
		return uc.api.DeleteFeeItem(ctx, cred.AccessToken, cred.DepartmentID, itemID)
	})
}

// Dashboard fetches the payment aggregates.
func (uc *Portal) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	var stats *domain.DashboardStats
	err := uc.withCredential(ctx, func(cred domain.Credential) error {
		var err error
		stats, err = uc.api.DashboardStats(ctx, cred.AccessToken)
		return err
	})
	return stats, err
}

// UpdateProfile changes the department details.
func (uc *Portal) UpdateProfile(ctx context.Context, profile domain.ProfileUpdate) (*domain.Department, error) {
	if profile == (domain.ProfileUpdate{}) {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}

	var dept *domain.Department
	err := uc.withCredential(ctx, func(cred domain.Credential) error {
		var err error
		dept, err = uc.api.UpdateProfile(ctx, cred.AccessToken, profile)
		return err
	})
	return dept, err
}

// ChangePassword replaces the department password. When every session is
// logged out the local credential is dropped too.
func (uc *Portal) ChangePassword(ctx context.Context, req domain.PasswordChange) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return fmt.Errorf("%w: old and new password are required", domain.ErrInvalidInput)
	}
	if req.OldPassword == req.NewPassword {
		return fmt.Errorf("%w: new password must differ from the old one", domain.ErrInvalidInput)
	}

	err := uc.withCredential(ctx, func(cred domain.Credential) error {
		return uc.api.ChangePassword(ctx, cred.AccessToken, req)
	})
	if err != nil {
		return err
	}
	if req.LogoutAll {
		return uc.store.ClearAll(ctx)
	}
	return nil
}

func validateFeeItem(in *domain.FeeItemInput) error {
	in.PaymentFor = strings.TrimSpace(in.PaymentFor)
	if in.PaymentFor == "" {
		return fmt.Errorf("%w: payment title is required", domain.ErrInvalidInput)
	}
	if in.AmountDue <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	return nil
}
