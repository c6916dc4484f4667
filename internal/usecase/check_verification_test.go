package usecase

import (
	"context"
	"testing"
	"time"

	"studentpay/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckVerification_CacheHitWithinTTL(t *testing.T) {
	h := newHarness(&fakeBackend{verified: true})
	h.login()
	ctx := context.Background()

	first := h.session.Verification.Execute(ctx)
	h.clock.Advance(5*time.Minute - time.Millisecond)
	second := h.session.Verification.Execute(ctx)

	assert.Equal(t, domain.VerificationVerified, first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), h.backend.verifyCalls.Load())
}

func TestCheckVerification_RefetchesAtTTLBoundary(t *testing.T) {
	h := newHarness(&fakeBackend{verified: false})
	h.login()
	ctx := context.Background()

	require.Equal(t, domain.VerificationUnverified, h.session.Verification.Execute(ctx))
	h.clock.Advance(5 * time.Minute)
	require.Equal(t, domain.VerificationUnverified, h.session.Verification.Execute(ctx))

	assert.Equal(t, int32(2), h.backend.verifyCalls.Load())
}

func TestCheckVerification_MalformedResponseLeavesCacheUnchanged(t *testing.T) {
	backend := &fakeBackend{verified: true}
	h := newHarness(backend)
	h.login()
	ctx := context.Background()

	require.Equal(t, domain.VerificationVerified, h.session.Verification.Execute(ctx))
	h.clock.Advance(6 * time.Minute)
	backend.verifyErr = domain.ErrMalformedResponse

	state := h.session.Verification.Execute(ctx)

	assert.Equal(t, domain.VerificationUnknown, state)
	_, found := h.cache.Get()
	assert.False(t, found, "expired entry is not refreshed by a failed check")
}

func TestCheckVerification_NoAccessToken(t *testing.T) {
	h := newHarness(&fakeBackend{verified: true})

	state := h.session.Verification.Execute(context.Background())

	assert.Equal(t, domain.VerificationUnknown, state)
	assert.Equal(t, int32(0), h.backend.verifyCalls.Load())
}

func TestCheckVerification_LogoutDuringCheckIsNotCached(t *testing.T) {
	backend := &fakeBackend{verified: true}
	h := newHarness(backend)
	h.login()
	ctx := context.Background()
	backend.verifyHook = func() {
		_ = h.session.Auth.Logout(ctx)
	}

	state := h.session.Verification.Execute(ctx)

	assert.Equal(t, domain.VerificationUnknown, state)
	_, found := h.cache.Get()
	assert.False(t, found)
}

func TestCheckVerification_InvalidateDuringCheckIsNotCached(t *testing.T) {
	backend := &fakeBackend{verified: true}
	h := newHarness(backend)
	h.login()
	backend.verifyHook = h.cache.Invalidate

	state := h.session.Verification.Execute(context.Background())

	assert.Equal(t, domain.VerificationVerified, state)
	_, found := h.cache.Get()
	assert.False(t, found)
}
