package usecase

import (
	"log/slog"

	"studentpay/internal/domain"
)

// Backend is every authenticated backend call a visitor session makes.
type Backend interface {
	domain.TokenRefresher
	domain.VerificationFetcher
	domain.Authenticator
	domain.DepartmentPortal
}

// Session wires the usecases of one visitor around that visitor's
// credential store and verification cache.
type Session struct {
	Store        domain.CredentialStore
	Refresh      *RefreshToken
	Verification *CheckVerification
	Flow         *AuthFlow
	Guards       *Guards
	Auth         *Authentication
	Portal       *Portal
}

// NewSession builds the usecases of one visitor.
func NewSession(api Backend, store domain.CredentialStore, cache domain.VerificationCache, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	refresh := NewRefreshToken(api, store, cache, logger)
	verification := NewCheckVerification(api, store, cache, logger)
	flow := NewAuthFlow(store, refresh, verification, logger)

	return &Session{
		Store:        store,
		Refresh:      refresh,
		Verification: verification,
		Flow:         flow,
		Guards:       NewGuards(flow, verification, logger),
		Auth:         NewAuthentication(api, store, verification, logger),
		Portal:       NewPortal(api, store, refresh, logger),
	}
}
