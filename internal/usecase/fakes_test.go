package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"studentpay/internal/domain"
	"studentpay/internal/infrastructure/cache"
	"studentpay/internal/infrastructure/store"
)

// fakeBackend implements Backend for testing.
type fakeBackend struct {
	mu sync.Mutex

	refreshAccess string
	refreshErr    error
	refreshGate   chan struct{}
	refreshCalls  atomic.Int32
	lastRefresh   string

	verified     bool
	verifyErr    error
	verifyCalls  atomic.Int32
	verifyHook   func()
	tokenPair    *domain.TokenPair
	tokenErr     error
	registerErr  error
	feeItems     []domain.FeeItem
	feeItemsErrs []error
	usedTokens   []string
	passwordErr  error
}

func (f *fakeBackend) RefreshAccessToken(_ context.Context, refreshToken string) (string, error) {
	f.refreshCalls.Add(1)
	if f.refreshGate != nil {
		<-f.refreshGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRefresh = refreshToken
	return f.refreshAccess, f.refreshErr
}

func (f *fakeBackend) FetchVerificationStatus(_ context.Context, _ string) (bool, error) {
	f.verifyCalls.Add(1)
	if f.verifyHook != nil {
		f.verifyHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verified, f.verifyErr
}

func (f *fakeBackend) ObtainToken(_ context.Context, _, _ string) (*domain.TokenPair, error) {
	return f.tokenPair, f.tokenErr
}

func (f *fakeBackend) RegisterDepartment(_ context.Context, form domain.SignupForm) (*domain.Department, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &domain.Department{ID: "5", Name: form.Name, Email: form.Email}, nil
}

func (f *fakeBackend) ListFeeItems(_ context.Context, accessToken, _ string) ([]domain.FeeItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usedTokens = append(f.usedTokens, accessToken)
	if len(f.feeItemsErrs) > 0 {
		err := f.feeItemsErrs[0]
		f.feeItemsErrs = f.feeItemsErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.feeItems, nil
}

func (f *fakeBackend) CreateFeeItem(_ context.Context, _, _ string, item domain.FeeItemInput) (*domain.FeeItem, error) {
	return &domain.FeeItem{ID: "2", PaymentFor: item.PaymentFor, AmountDue: item.AmountDue}, nil
}

func (f *fakeBackend) UpdateFeeItem(_ context.Context, _, _, itemID string, item domain.FeeItemInput) (*domain.FeeItem, error) {
	return &domain.FeeItem{ID: "2", PaymentFor: item.PaymentFor, AmountDue: item.AmountDue}, nil
}

func (f *fakeBackend) DeleteFeeItem(_ context.Context, _, _, _ string) error {
	return nil
}

func (f *fakeBackend) DashboardStats(_ context.Context, _ string) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{TotalPayments: 3, TotalAmount: 7500}, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, _ string, p domain.ProfileUpdate) (*domain.Department, error) {
	return &domain.Department{ID: "5", Name: p.Name}, nil
}

func (f *fakeBackend) ChangePassword(_ context.Context, _ string, _ domain.PasswordChange) error {
	return f.passwordErr
}

func (f *fakeBackend) networkCalls() int {
	return int(f.refreshCalls.Load() + f.verifyCalls.Load())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	backend *fakeBackend
	store   *store.TokenStore
	cache   *cache.VerificationCache
	clock   *fakeClock
	session *Session
}

func newHarness(backend *fakeBackend) *harness {
	clock := newFakeClock()
	s := store.NewTokenStore(store.NewMemoryKV(), "", nil)
	c := cache.NewVerificationCache(5*time.Minute, clock.Now)
	return &harness{
		backend: backend,
		store:   s,
		cache:   c,
		clock:   clock,
		session: NewSession(backend, s, c, nil),
	}
}

func (h *harness) login() {
	_ = h.store.Save(context.Background(), domain.Credential{AccessToken: "a1", RefreshToken: "r1", DepartmentID: "5"})
}
