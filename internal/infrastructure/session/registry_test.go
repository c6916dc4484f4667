package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"studentpay/internal/domain"
	"studentpay/internal/infrastructure/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopBackend struct{}

func (nopBackend) RefreshAccessToken(context.Context, string) (string, error) { return "a2", nil }
func (nopBackend) FetchVerificationStatus(context.Context, string) (bool, error) {
	return true, nil
}
func (nopBackend) ObtainToken(context.Context, string, string) (*domain.TokenPair, error) {
	return &domain.TokenPair{Access: "a1", Refresh: "r1", DepartmentID: "5"}, nil
}
func (nopBackend) RegisterDepartment(context.Context, domain.SignupForm) (*domain.Department, error) {
	return &domain.Department{}, nil
}
func (nopBackend) ListFeeItems(context.Context, string, string) ([]domain.FeeItem, error) {
	return nil, nil
}
func (nopBackend) CreateFeeItem(context.Context, string, string, domain.FeeItemInput) (*domain.FeeItem, error) {
	return nil, nil
}
func (nopBackend) UpdateFeeItem(context.Context, string, string, string, domain.FeeItemInput) (*domain.FeeItem, error) {
	return nil, nil
}
func (nopBackend) DeleteFeeItem(context.Context, string, string, string) error { return nil }
func (nopBackend) DashboardStats(context.Context, string) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{}, nil
}
func (nopBackend) UpdateProfile(context.Context, string, domain.ProfileUpdate) (*domain.Department, error) {
	return &domain.Department{}, nil
}
func (nopBackend) ChangePassword(context.Context, string, domain.PasswordChange) error { return nil }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(kv domain.KV) (*Registry, *testClock) {
	clock := &testClock{now: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)}
	r := NewRegistry(nopBackend{}, kv, 5*time.Minute, time.Hour, nil)
	r.now = clock.Now
	return r, clock
}

func TestRegistry_OpenAssignsNewVisitor(t *testing.T) {
	r, _ := newTestRegistry(store.NewMemoryKV())

	id, s := r.Open("")
	require.NotNil(t, s)
	assert.Len(t, id, 36)

	again, same := r.Open(id)
	assert.Equal(t, id, again)
	assert.Same(t, s, same)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_MalformedIDIsReplaced(t *testing.T) {
	r, _ := newTestRegistry(store.NewMemoryKV())

	id, _ := r.Open("../../etc/passwd")

	assert.NotEqual(t, "../../etc/passwd", id)
	assert.Len(t, id, 36)
}

func TestRegistry_VisitorsAreIsolated(t *testing.T) {
	r, _ := newTestRegistry(store.NewMemoryKV())
	ctx := context.Background()

	_, alice := r.Open("")
	_, bob := r.Open("")
	_, err := alice.Auth.Login(ctx, "alice@uni.edu", "pw")
	require.NoError(t, err)

	assert.True(t, alice.Store.IsAuthenticated(ctx))
	assert.False(t, bob.Store.IsAuthenticated(ctx))
	assert.Equal(t, domain.RedirectToLogin(domain.ReasonUnauthorized), bob.Guards.ProtectedPage(ctx))
}

func TestRegistry_AdoptsKnownIDAfterRestart(t *testing.T) {
	kv := store.NewMemoryKV()
	ctx := context.Background()

	first, _ := newTestRegistry(kv)
	id, s := first.Open("")
	_, err := s.Auth.Login(ctx, "dept@uni.edu", "pw")
	require.NoError(t, err)

	second, _ := newTestRegistry(kv)
	sameID, restored := second.Open(id)

	assert.Equal(t, id, sameID)
	assert.True(t, restored.Store.IsAuthenticated(ctx))
}

func TestRegistry_EvictsIdleVisitors(t *testing.T) {
	kv := store.NewMemoryKV()
	r, clock := newTestRegistry(kv)
	ctx := context.Background()

	idleID, idle := r.Open("")
	_, err := idle.Auth.Login(ctx, "dept@uni.edu", "pw")
	require.NoError(t, err)

	clock.Advance(50 * time.Minute)
	activeID, _ := r.Open("")
	clock.Advance(20 * time.Minute)

	assert.Equal(t, 1, r.Evict(ctx))
	assert.Equal(t, 1, r.Len())
	assert.False(t, idle.Store.IsAuthenticated(ctx), "credential of an evicted visitor is cleared")
	assert.Zero(t, kv.Len())

	reopened, fresh := r.Open(idleID)
	assert.Equal(t, idleID, reopened)
	assert.NotSame(t, idle, fresh)
	assert.NotEqual(t, idleID, activeID)
}

func TestRegistry_RunStopsWithContext(t *testing.T) {
	r, _ := newTestRegistry(store.NewMemoryKV())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRegistry_SharedKVKeepsCredentialsOnEvict(t *testing.T) {
	kv := store.NewMemoryKV()
	r := NewRegistry(nopBackend{}, kv, 5*time.Minute, time.Hour, nil, WithSharedKV())
	clock := &testClock{now: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)}
	r.now = clock.Now
	ctx := context.Background()

	id, s := r.Open("")
	_, err := s.Auth.Login(ctx, "dept@uni.edu", "pw")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	require.Equal(t, 1, r.Evict(ctx))

	_, restored := r.Open(id)
	assert.True(t, restored.Store.IsAuthenticated(ctx))
}
