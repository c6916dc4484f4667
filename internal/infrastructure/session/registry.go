package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"studentpay/internal/domain"
	"studentpay/internal/infrastructure/cache"
	"studentpay/internal/infrastructure/store"
	"studentpay/internal/metrics"
	"studentpay/internal/usecase"

	"github.com/google/uuid"
)

// visitor is one browser session held by the gateway.
type visitor struct {
	session  *usecase.Session
	lastSeen time.Time
}

// Registry maps visitor ids to their sessions. Each visitor gets its own
// token store namespace and verification cache; all of them share one KV.
type Registry struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	api             usecase.Backend
	kv              domain.KV
	verificationTTL time.Duration
	idleTimeout     time.Duration
	logger          *slog.Logger
	now             func() time.Time
	sharedKV        bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithSharedKV keeps the credentials of evicted visitors. Use it when the KV
// is shared with other gateway instances and expires keys on its own.
func WithSharedKV() Option {
	return func(r *Registry) { r.sharedKV = true }
}

// NewRegistry creates a visitor registry.
func NewRegistry(api usecase.Backend, kv domain.KV, verificationTTL, idleTimeout time.Duration, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		visitors:        make(map[string]*visitor),
		api:             api,
		kv:              kv,
		verificationTTL: verificationTTL,
		idleTimeout:     idleTimeout,
		logger:          logger,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open returns the session of the visitor id. An empty or malformed id gets a
// fresh visitor; the returned id is the one the caller must hand back next
// time. A well-formed id unknown to this process is adopted so credentials
// kept in a shared KV survive a restart.
func (r *Registry) Open(id string) (string, *usecase.Session) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if v, ok := r.visitors[id]; ok {
		v.lastSeen = now
		return id, v.session
	}

	v := &visitor{session: r.newSession(id), lastSeen: now}
	r.visitors[id] = v
	metrics.ActiveVisitors.Set(float64(len(r.visitors)))
	return id, v.session
}

func (r *Registry) newSession(id string) *usecase.Session {
	tokens := store.NewTokenStore(r.kv, "visitor:"+id, r.logger)
	verification := cache.NewVerificationCache(r.verificationTTL, r.now)
	return usecase.NewSession(r.api, tokens, verification, r.logger)
}

// Len returns the number of visitors held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Evict drops visitors idle for longer than the idle timeout and, unless the
// KV is shared, clears their credentials. It returns how many were dropped.
func (r *Registry) Evict(ctx context.Context) int {
	r.mu.Lock()
	cutoff := r.now().Add(-r.idleTimeout)
	var idle []*usecase.Session
	for id, v := range r.visitors {
		if v.lastSeen.Before(cutoff) {
			idle = append(idle, v.session)
			delete(r.visitors, id)
		}
	}
	metrics.ActiveVisitors.Set(float64(len(r.visitors)))
	r.mu.Unlock()

	if !r.sharedKV {
		for _, s := range idle {
			if err := s.Store.ClearAll(ctx); err != nil {
				r.logger.WarnContext(ctx, "failed to clear idle visitor credential", "error", err)
			}
		}
	}
	if len(idle) > 0 {
		r.logger.InfoContext(ctx, "evicted idle visitors", "count", len(idle))
	}
	return len(idle)
}

// Run evicts idle visitors every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Evict(ctx)
		}
	}
}
