package usecase

import (
	"context"
	"log/slog"

	"studentpay/internal/domain"
)

// Refresher renews the visitor's access token.
type Refresher interface {
	Execute(ctx context.Context) bool
}

// Verifier answers whether the visitor's department is verified.
type Verifier interface {
	Execute(ctx context.Context) domain.VerificationState
	ExecuteFresh(ctx context.Context) domain.VerificationState
	Invalidate()
}

// Policy configures one evaluation of the auth flow.
type Policy struct {
	// RequireVerification makes an unverified department a redirect.
	RequireVerification bool
}

// AuthFlow decides whether a visitor may see a page. The steps run in a
// fixed order: authentication, then refresh, then verification.
type AuthFlow struct {
	store   domain.CredentialStore
	refresh Refresher
	verify  Verifier
	logger  *slog.Logger
}

// NewAuthFlow creates a new AuthFlow.
func NewAuthFlow(s domain.CredentialStore, r Refresher, v Verifier, l *slog.Logger) *AuthFlow {
	if l == nil {
		l = slog.Default()
	}
	return &AuthFlow{store: s, refresh: r, verify: v, logger: l}
}

// Authenticate runs the authentication and refresh steps. It returns the
// login redirect to follow when the visitor has no usable session.
func (f *AuthFlow) Authenticate(ctx context.Context) (domain.Outcome, bool) {
	if !f.store.IsAuthenticated(ctx) {
		return domain.RedirectToLogin(domain.ReasonUnauthorized), false
	}
	if !f.refresh.Execute(ctx) {
		return domain.RedirectToLogin(domain.ReasonSessionExpired), false
	}
	return domain.Authorized, true
}

// Evaluate runs the whole flow under policy.
func (f *AuthFlow) Evaluate(ctx context.Context, policy Policy) domain.Outcome {
	if outcome, ok := f.Authenticate(ctx); !ok {
		return outcome
	}
	if !policy.RequireVerification {
		return domain.Authorized
	}

	switch f.verify.Execute(ctx) {
	case domain.VerificationVerified:
		return domain.Authorized
	case domain.VerificationUnverified:
		return domain.RedirectToVerificationPending
	default:
		// Keep an authenticated visitor where they are while the backend
		// cannot answer; the next navigation retries from scratch.
		f.verify.Invalidate()
		f.logger.WarnContext(ctx, "verification status unknown, staying on page")
		return domain.DegradedStay
	}
}
