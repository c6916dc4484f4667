package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"studentpay/internal/domain"
	"studentpay/internal/infrastructure/cache"
	"studentpay/internal/infrastructure/store"
	"studentpay/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectedGuard_NullVerificationFlagIsUnknown(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/token/refresh/":
			json.NewEncoder(w).Encode(map[string]string{"access": "a2"})
		case "/accounts/department/":
			w.Write([]byte(`{"id": 5, "is_verified": null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	tokens := store.NewTokenStore(store.NewMemoryKV(), "", nil)
	require.NoError(t, tokens.Save(ctx, domain.Credential{AccessToken: "a1", RefreshToken: "r1", DepartmentID: "5"}))
	verification := cache.NewVerificationCache(5*time.Minute, nil)
	session := usecase.NewSession(api, tokens, verification, nil)

	outcome := session.Guards.ProtectedPage(ctx)

	assert.Equal(t, domain.DegradedStay, outcome)
	_, cached := verification.Get()
	assert.False(t, cached)
}
