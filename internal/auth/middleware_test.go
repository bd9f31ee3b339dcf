package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware(t *testing.T) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	service := NewService(users, sessions, Config{BcryptCost: bcrypt.MinCost})
	require.NoError(t, service.Register(context.Background(), "alice", "Passw0rd!", RoleUser))

	token, err := sessions.Create(context.Background(), "alice", time.Hour)
	require.NoError(t, err)

	var hit bool
	var identity *Identity
	wrapped := SessionMiddleware(service, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		identity, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no token", func(t *testing.T) {
		hit = false
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, hit)
	})

	t.Run("bad scheme", func(t *testing.T) {
		hit = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic "+token)
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, hit)
	})

	t.Run("invalid token", func(t *testing.T) {
		hit = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, hit)
	})

	t.Run("valid token", func(t *testing.T) {
		hit = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, hit)
		require.NotNil(t, identity)
		assert.Equal(t, "alice", identity.Username)
		assert.Equal(t, RoleUser, identity.Role)
	})
}

func withIdentity(r *http.Request, identity *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, identity))
}

func TestRequirePermission(t *testing.T) {
	var hit bool
	guarded := RequirePermission(DomainDatasets, ActionEdit, okHandler(&hit))

	t.Run("no identity", func(t *testing.T) {
		hit = false
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, hit)
	})

	t.Run("denied role", func(t *testing.T) {
		hit = false
		req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), &Identity{Username: "bob", Role: RoleUser})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, hit)
	})

	t.Run("domain admin allowed", func(t *testing.T) {
		hit = false
		req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), &Identity{Username: "dana", Role: RoleDatasetsAdmin})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, hit)
	})
}

func TestRequireAdmin(t *testing.T) {
	var hit bool
	guarded := RequireAdmin(okHandler(&hit))

	t.Run("domain admin is not enough", func(t *testing.T) {
		hit = false
		req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), &Identity{Username: "dana", Role: RoleDatasetsAdmin})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, hit)
	})

	t.Run("admin passes", func(t *testing.T) {
		hit = false
		req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), &Identity{Username: "root", Role: RoleAdmin})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, hit)
	})
}
