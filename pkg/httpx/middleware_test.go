package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/jwtx"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

const testIssuer = "warden-test"

// memRevocations is a map-backed RevocationChecker for middleware tests.
type memRevocations struct {
	mu   sync.Mutex
	jtis map[string]struct{}
}

func newMemRevocations() *memRevocations {
	return &memRevocations{jtis: make(map[string]struct{})}
}

func (m *memRevocations) revoke(jti string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jtis[jti] = struct{}{}
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jtis[jti]
	return ok, nil
}

func signToken(t *testing.T, kind string, ttl time.Duration) (string, jwtx.Claims) {
	t.Helper()
	h, err := jwtx.NewHS256(testSecret, testIssuer, 0)
	require.NoError(t, err)

	claims := jwtx.NewClaims("alice", "user", kind, "sid-1", testIssuer, ttl, time.Now().UTC())
	token, err := h.Sign(claims)
	require.NoError(t, err)
	return token, claims
}

func authnHandler(t *testing.T, revoked httpx.RevocationChecker) http.Handler {
	t.Helper()
	h, err := jwtx.NewHS256(testSecret, testIssuer, 0)
	require.NoError(t, err)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"username": httpx.UsernameFromContext(r.Context()),
		})
	})
	return httpx.AuthnMiddleware(h, revoked)(inner)
}

func TestAuthnMiddleware(t *testing.T) {
	revoked := newMemRevocations()
	handler := authnHandler(t, revoked)

	t.Run("rejects missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects non-bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("accepts valid access token", func(t *testing.T) {
		token, _ := signToken(t, jwtx.KindAccess, time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "alice")
	})

	t.Run("rejects expired token", func(t *testing.T) {
		token, _ := signToken(t, jwtx.KindAccess, -time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects refresh token on protected route", func(t *testing.T) {
		token, _ := signToken(t, jwtx.KindRefresh, time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects revoked token", func(t *testing.T) {
		token, claims := signToken(t, jwtx.KindAccess, time.Minute)
		revoked.revoke(claims.ID)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	h, err := jwtx.NewHS256(testSecret, testIssuer, 0)
	require.NoError(t, err)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := httpx.Chain(inner,
		httpx.AuthnMiddleware(h, newMemRevocations()),
		httpx.RequireRole("admin"),
	)

	t.Run("forbids non-admin", func(t *testing.T) {
		token, _ := signToken(t, jwtx.KindAccess, time.Minute) // role "user"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admits admin", func(t *testing.T) {
		claims := jwtx.NewClaims("root", "admin", jwtx.KindAccess, "", testIssuer, time.Minute, time.Now().UTC())
		token, err := h.Sign(claims)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := httpx.Chain(okHandler(), mk("outer"), mk("inner"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
}
