package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/olegmz/verigate/internal/domain"
)

func TestAuthMiddleware(t *testing.T) {
	codec := NewTokenCodec([]byte(testSecret), time.Hour)
	token, _, err := codec.IssueToken("agent@bank.rs", 7, domain.RoleAgent)
	require.NoError(t, err)

	var gotActor int64
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor, _ = ActorIDFromContext(r.Context())
		gotRole, _ = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := NewMiddleware(codec, zap.NewNop())(next)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(7), gotActor)
		assert.Equal(t, domain.RoleAgent, gotRole)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMobileGate(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gated := MobileGate(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", MobileUserAgent)
	rec := httptest.NewRecorder()
	gated.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, ua := range []string{"", "MobileApp/2.0", "Mozilla/5.0"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", ua)
		rec := httptest.NewRecorder()
		gated.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "user-agent %q", ua)
	}
}

func TestRequireRole(t *testing.T) {
	codec := NewTokenCodec([]byte(testSecret), time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	chain := NewMiddleware(codec, zap.NewNop())(RequireRole(domain.RoleSupervisor, domain.RoleAdmin)(next))

	cases := []struct {
		role string
		want int
	}{
		{domain.RoleSupervisor, http.StatusOK},
		{domain.RoleAdmin, http.StatusOK},
		{domain.RoleAgent, http.StatusForbidden},
		{domain.RoleClient, http.StatusForbidden},
	}
	for _, tc := range cases {
		token, _, err := codec.IssueToken("u@bank.rs", 1, tc.role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)

		assert.Equal(t, tc.want, rec.Code, "role %s", tc.role)
	}
}
