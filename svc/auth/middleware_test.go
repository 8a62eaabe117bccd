package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/flowgrid-go/svc/auth"
)

func newGateRouter(t *testing.T, cfg auth.GateConfig) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	auth.NewRouteGate(cfg, nil).Mount(r)
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("page"))
	})
	return r
}

func gateGet(t *testing.T, r chi.Router, path, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "flowgrid_auth_token", Value: cookie})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouteGate_PublicRoutes(t *testing.T) {
	t.Parallel()
	r := newGateRouter(t, auth.DefaultGateConfig())

	for _, path := range []string{
		"/", "/marketplace", "/marketplace/item-1", "/about",
		"/favicon.ico", "/assets/app.css", "/api/v1/health", "/_next/static/chunk.js",
	} {
		rec := gateGet(t, r, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Empty(t, rec.Header().Get("X-Frame-Options"),
			"public routes pass through unmodified: %s", path)
	}
}

func TestRouteGate_ProtectedRoutes(t *testing.T) {
	t.Parallel()
	r := newGateRouter(t, auth.DefaultGateConfig())

	t.Run("unauthenticated visitor is sent to login with a return path", func(t *testing.T) {
		t.Parallel()
		rec := gateGet(t, r, "/workflows/wf-1", "")
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "/login?redirect=%2Fworkflows%2Fwf-1", rec.Header().Get("Location"))
	})

	t.Run("expired token cookie does not count as authenticated", func(t *testing.T) {
		t.Parallel()
		expired := makeToken(t, time.Now().Add(-time.Hour))
		rec := gateGet(t, r, "/workflows", expired)
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	})

	t.Run("valid token cookie passes through with security headers", func(t *testing.T) {
		t.Parallel()
		token := makeToken(t, time.Now().Add(time.Hour))
		rec := gateGet(t, r, "/workflows", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
		assert.NotEmpty(t, rec.Header().Get("Permissions-Policy"))
	})

	t.Run("malformed token cookie does not count as authenticated", func(t *testing.T) {
		t.Parallel()
		rec := gateGet(t, r, "/settings", "garbage")
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	})
}

func TestRouteGate_AuthRoutes(t *testing.T) {
	t.Parallel()
	r := newGateRouter(t, auth.DefaultGateConfig())

	t.Run("unauthenticated visitor reaches the login page", func(t *testing.T) {
		t.Parallel()
		rec := gateGet(t, r, "/login", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("authenticated visitor is redirected home", func(t *testing.T) {
		t.Parallel()
		token := makeToken(t, time.Now().Add(time.Hour))
		rec := gateGet(t, r, "/login", token)
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("authenticated visitor honors the redirect parameter", func(t *testing.T) {
		t.Parallel()
		token := makeToken(t, time.Now().Add(time.Hour))
		rec := gateGet(t, r, "/login?redirect=%2Fworkflows", token)
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "/workflows", rec.Header().Get("Location"))
	})

	t.Run("external redirect targets are ignored", func(t *testing.T) {
		t.Parallel()
		token := makeToken(t, time.Now().Add(time.Hour))
		rec := gateGet(t, r, "/login?redirect=https%3A%2F%2Fevil.example", token)
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})
}

func TestRouteGate_SecurityHeaders(t *testing.T) {
	t.Parallel()

	t.Run("development gets a permissive CSP", func(t *testing.T) {
		t.Parallel()
		r := newGateRouter(t, auth.DefaultGateConfig())
		rec := gateGet(t, r, "/unknown-page", "")
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "unsafe-eval")
	})

	t.Run("production gets no CSP from the gate", func(t *testing.T) {
		t.Parallel()
		cfg := auth.DefaultGateConfig()
		cfg.Environment = "production"
		r := newGateRouter(t, cfg)
		rec := gateGet(t, r, "/unknown-page", "")
		assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	})
}
