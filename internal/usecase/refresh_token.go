package usecase

import (
	"context"
	"log/slog"
	"time"

	"studentpay/internal/domain"
	"studentpay/internal/metrics"

	"golang.org/x/sync/singleflight"
)

// RefreshToken exchanges the stored refresh token for a new access token.
// Concurrent calls for the same visitor share one backend request.
type RefreshToken struct {
	api    domain.TokenRefresher
	store  domain.CredentialStore
	cache  domain.VerificationCache
	logger *slog.Logger

	group singleflight.Group
}

// NewRefreshToken creates a new RefreshToken usecase.
func NewRefreshToken(api domain.TokenRefresher, s domain.CredentialStore, c domain.VerificationCache, l *slog.Logger) *RefreshToken {
	if l == nil {
		l = slog.Default()
	}
	return &RefreshToken{api: api, store: s, cache: c, logger: l}
}

// Execute refreshes the access token and reports whether the visitor still
// holds a valid session. A visitor without an access token is refused
// without a backend call. Any refresh failure logs the visitor out.
func (uc *RefreshToken) Execute(ctx context.Context) bool {
	if !uc.store.IsAuthenticated(ctx) {
		return false
	}

	// The shared call outlives any single caller so one visitor tab going
	// away does not fail the refresh for the others.
	v, _, shared := uc.group.Do("refresh", func() (any, error) {
		return uc.refresh(context.WithoutCancel(ctx)), nil
	})
	if shared {
		metrics.RecordRefresh("coalesced")
	}
	return v.(bool)
}

func (uc *RefreshToken) refresh(ctx context.Context) bool {
	generation := uc.store.Generation()

	refreshToken, ok := uc.store.RefreshToken(ctx)
	if !ok {
		uc.logger.WarnContext(ctx, "refresh token missing, ending session")
		metrics.RecordRefresh("missing_refresh_token")
		return uc.logout(ctx, generation)
	}

	start := time.Now()
	access, err := uc.api.RefreshAccessToken(ctx, refreshToken)
	metrics.ObserveBackendCall("token_refresh", time.Since(start).Seconds())
	if err != nil {
		uc.logger.WarnContext(ctx, "token refresh failed, ending session", "error", err)
		metrics.RecordRefresh("failure")
		return uc.logout(ctx, generation)
	}

	wrote, err := uc.store.SetAccessTokenIf(ctx, generation, access)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to store refreshed access token", "error", err)
		metrics.RecordRefresh("store_error")
		return false
	}
	if !wrote {
		// The credential was replaced or cleared while the request was in
		// flight; the response belongs to a session that no longer exists.
		uc.logger.DebugContext(ctx, "discarding refresh response for replaced credential")
		metrics.RecordRefresh("stale")
		return uc.store.IsAuthenticated(ctx)
	}

	metrics.RecordRefresh("success")
	return true
}

// logout clears the credential identified by generation and reports whether
// the visitor still holds a session afterwards. A credential saved by a
// newer login while the refresh was in flight survives.
func (uc *RefreshToken) logout(ctx context.Context, generation uint64) bool {
	cleared, err := uc.store.ClearIf(ctx, generation)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to clear credential", "error", err)
		uc.cache.Invalidate()
		return false
	}
	if cleared {
		uc.cache.Invalidate()
		return false
	}
	return uc.store.IsAuthenticated(ctx)
}
