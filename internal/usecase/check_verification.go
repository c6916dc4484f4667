package usecase

import (
	"context"
	"log/slog"
	"time"

	"studentpay/internal/domain"
	"studentpay/internal/metrics"
)

// CheckVerification answers whether the visitor's department is verified,
// serving from the verification cache while the cached answer is fresh.
type CheckVerification struct {
	api    domain.VerificationFetcher
	store  domain.CredentialStore
	cache  domain.VerificationCache
	logger *slog.Logger
}

// NewCheckVerification creates a new CheckVerification usecase.
func NewCheckVerification(api domain.VerificationFetcher, s domain.CredentialStore, c domain.VerificationCache, l *slog.Logger) *CheckVerification {
	if l == nil {
		l = slog.Default()
	}
	return &CheckVerification{api: api, store: s, cache: c, logger: l}
}

// Execute returns the cached answer when fresh, otherwise asks the backend.
// Failures yield VerificationUnknown and leave the cache untouched.
func (uc *CheckVerification) Execute(ctx context.Context) domain.VerificationState {
	if status, found := uc.cache.Get(); found {
		state := domain.VerificationStateOf(status.IsVerified)
		metrics.RecordVerificationCheck("cache", state.String())
		return state
	}
	return uc.fetch(ctx)
}

// ExecuteFresh drops the cached answer and asks the backend.
func (uc *CheckVerification) ExecuteFresh(ctx context.Context) domain.VerificationState {
	uc.cache.Invalidate()
	return uc.fetch(ctx)
}

// Invalidate drops the cached answer.
func (uc *CheckVerification) Invalidate() {
	uc.cache.Invalidate()
}

func (uc *CheckVerification) fetch(ctx context.Context) domain.VerificationState {
	access, ok := uc.store.AccessToken(ctx)
	if !ok {
		metrics.RecordVerificationCheck("backend", domain.VerificationUnknown.String())
		return domain.VerificationUnknown
	}

	generation := uc.store.Generation()
	epoch := uc.cache.Epoch()

	start := time.Now()
	verified, err := uc.api.FetchVerificationStatus(ctx, access)
	metrics.ObserveBackendCall("verification_status", time.Since(start).Seconds())
	if err != nil {
		uc.logger.WarnContext(ctx, "verification status unavailable", "error", err)
		metrics.RecordVerificationCheck("backend", domain.VerificationUnknown.String())
		return domain.VerificationUnknown
	}

	if uc.store.Generation() != generation || !uc.store.IsAuthenticated(ctx) {
		uc.logger.DebugContext(ctx, "discarding verification status for replaced credential")
		metrics.RecordVerificationCheck("backend", domain.VerificationUnknown.String())
		return domain.VerificationUnknown
	}

	if !uc.cache.SetIf(epoch, verified) {
		uc.logger.DebugContext(ctx, "verification cache invalidated during check, result not cached")
	}

	state := domain.VerificationStateOf(verified)
	metrics.RecordVerificationCheck("backend", state.String())
	return state
}
