package cache

import (
	"sync"
	"time"

	"studentpay/internal/domain"
)

// DefaultVerificationTTL is how long a verification answer stays usable.
const DefaultVerificationTTL = 5 * time.Minute

// VerificationCache memoizes one department's verification status for ttl.
// Implements domain.VerificationCache.
type VerificationCache struct {
	mu    sync.RWMutex
	entry *domain.VerificationStatus
	epoch uint64
	ttl   time.Duration
	now   func() time.Time
}

// NewVerificationCache creates an empty cache. A nil clock uses time.Now.
func NewVerificationCache(ttl time.Duration, now func() time.Time) *VerificationCache {
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}
	if now == nil {
		now = time.Now
	}
	return &VerificationCache{ttl: ttl, now: now}
}

// TTL returns the configured time-to-live.
func (c *VerificationCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached status while it is younger than the TTL.
func (c *VerificationCache) Get() (domain.VerificationStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil || c.now().Sub(c.entry.CheckedAt) >= c.ttl {
		return domain.VerificationStatus{}, false
	}
	return *c.entry, true
}

// Epoch changes every time the cache is invalidated.
func (c *VerificationCache) Epoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// Set stores a fresh answer checked now.
func (c *VerificationCache) Set(isVerified bool) domain.VerificationStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.setLocked(isVerified)
}

// SetIf stores the answer only if no invalidation happened since epoch was read.
func (c *VerificationCache) SetIf(epoch uint64, isVerified bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return false
	}
	c.setLocked(isVerified)
	return true
}

func (c *VerificationCache) setLocked(isVerified bool) domain.VerificationStatus {
	status := domain.VerificationStatus{IsVerified: isVerified, CheckedAt: c.now()}
	c.entry = &status
	return status
}

// Invalidate drops the cached answer unconditionally.
func (c *VerificationCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = nil
	c.epoch++
}
