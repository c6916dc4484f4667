package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"studentpay/internal/domain"
)

// Storage keys of the credential fields.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyDepartmentID = "department_id"
)

// TokenStore is the single source of truth for the credential of one visitor.
// Writes are serialized so a ClearAll is never interleaved with a partial
// Save or SetAccessToken.
type TokenStore struct {
	kv        domain.KV
	namespace string
	logger    *slog.Logger

	mu         sync.RWMutex
	generation atomic.Uint64
}

// NewTokenStore creates a token store over kv. A non-empty namespace prefixes
// every key so several visitors can share one backend.
func NewTokenStore(kv domain.KV, namespace string, logger *slog.Logger) *TokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStore{kv: kv, namespace: namespace, logger: logger}
}

func (s *TokenStore) key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + ":" + name
}

func (s *TokenStore) read(ctx context.Context, name string) string {
	v, ok, err := s.kv.Get(ctx, s.key(name))
	if err != nil {
		s.logger.WarnContext(ctx, "credential store read failed", "key", name, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

// IsAuthenticated reports whether a non-empty access token is stored.
func (s *TokenStore) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.AccessToken(ctx)
	return ok
}

// AccessToken returns the stored access token.
func (s *TokenStore) AccessToken(ctx context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token := s.read(ctx, KeyAccessToken)
	return token, token != ""
}

// RefreshToken returns the stored refresh token.
func (s *TokenStore) RefreshToken(ctx context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token := s.read(ctx, KeyRefreshToken)
	return token, token != ""
}

// DepartmentID returns the stored department identifier.
func (s *TokenStore) DepartmentID(ctx context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id := s.read(ctx, KeyDepartmentID)
	return id, id != ""
}

// Credential returns the full credential, or false when any field is missing.
func (s *TokenStore) Credential(ctx context.Context) (domain.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred := domain.Credential{
		AccessToken:  s.read(ctx, KeyAccessToken),
		RefreshToken: s.read(ctx, KeyRefreshToken),
		DepartmentID: s.read(ctx, KeyDepartmentID),
	}
	if !cred.Complete() {
		return domain.Credential{}, false
	}
	return cred, true
}

// Generation identifies the credential currently stored. It changes on every
// Save and ClearAll but not on SetAccessToken.
func (s *TokenStore) Generation() uint64 {
	return s.generation.Load()
}

// Save replaces the whole credential.
func (s *TokenStore) Save(ctx context.Context, cred domain.Credential) error {
	if !cred.Complete() {
		return fmt.Errorf("%w: incomplete credential", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.kv.SetMany(ctx, map[string]string{
		s.key(KeyAccessToken):  cred.AccessToken,
		s.key(KeyRefreshToken): cred.RefreshToken,
		s.key(KeyDepartmentID): cred.DepartmentID,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	s.generation.Add(1)
	return nil
}

// SetAccessToken overwrites only the access token.
func (s *TokenStore) SetAccessToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setAccessTokenLocked(ctx, token)
}

// SetAccessTokenIf overwrites the access token only while the credential is
// still the one identified by generation. It reports whether it wrote.
// Generations are per process, so a credential cleared through a shared KV
// by another instance is caught by the refresh token having gone.
func (s *TokenStore) SetAccessTokenIf(ctx context.Context, generation uint64, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation.Load() != generation {
		return false, nil
	}
	if s.read(ctx, KeyRefreshToken) == "" {
		return false, nil
	}
	if err := s.setAccessTokenLocked(ctx, token); err != nil {
		return false, err
	}
	return true, nil
}

// setAccessTokenLocked renews the expiry of the other two fields with the
// write so the three fields expire together.
func (s *TokenStore) setAccessTokenLocked(ctx context.Context, token string) error {
	err := s.kv.SetAndTouch(ctx, s.key(KeyAccessToken), token,
		s.key(KeyRefreshToken),
		s.key(KeyDepartmentID),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// ClearAll removes every credential field.
func (s *TokenStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clearLocked(ctx)
}

// ClearIf removes the credential only while it is still the one identified
// by generation. It reports whether it cleared.
func (s *TokenStore) ClearIf(ctx context.Context, generation uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation.Load() != generation {
		return false, nil
	}
	if err := s.clearLocked(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *TokenStore) clearLocked(ctx context.Context) error {
	err := s.kv.Delete(ctx,
		s.key(KeyAccessToken),
		s.key(KeyRefreshToken),
		s.key(KeyDepartmentID),
	)
	s.generation.Add(1)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
