package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/flowgrid/flowgrid-go/pkg/jwt"
)

// GateConfig controls the route gate: which paths are public, which are
// auth pages and which require a session.
type GateConfig struct {
	// CookieName is the cookie carrying the access token. The gate
	// reads the token's exp claim without verifying the signature;
	// real authorization happens at the API.
	CookieName  string `env:"FLOWGRID_AUTH_COOKIE" envDefault:"flowgrid_auth_token" yaml:"cookie_name"`
	LoginPath   string `env:"FLOWGRID_AUTH_LOGIN_PAGE" envDefault:"/login" yaml:"login_path"`
	Environment string `env:"FLOWGRID_APP_ENV" envDefault:"development" yaml:"environment"`

	// PublicRoutes pass through untouched. "/" matches exactly; other
	// entries match the path itself and everything under it.
	PublicRoutes []string `env:"FLOWGRID_PUBLIC_ROUTES" envSeparator:"," yaml:"public_routes"`
	// AuthRoutes are login/registration pages; an authenticated visitor
	// is redirected away from them.
	AuthRoutes []string `env:"FLOWGRID_AUTH_ROUTES" envSeparator:"," yaml:"auth_routes"`
	// ProtectedRoutes require a non-expired token cookie.
	ProtectedRoutes []string `env:"FLOWGRID_PROTECTED_ROUTES" envSeparator:"," yaml:"protected_routes"`
}

// DefaultGateConfig returns the standard application route layout.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		CookieName:  "flowgrid_auth_token",
		LoginPath:   "/login",
		Environment: "development",
		PublicRoutes: []string{
			"/", "/marketplace", "/about", "/pricing", "/docs", "/support",
		},
		AuthRoutes: []string{
			"/login", "/register", "/forgot-password", "/reset-password",
		},
		ProtectedRoutes: []string{
			"/user-variables", "/workflows", "/chat", "/workspaces",
			"/analytics", "/monitoring", "/profile", "/settings",
		},
	}
}

type routeClass int

const (
	classOther routeClass = iota
	classPublic
	classAuth
	classProtected
)

// RouteGate is HTTP middleware that redirects unauthenticated visitors
// away from protected pages and authenticated visitors away from auth
// pages, and stamps security headers on everything it serves.
type RouteGate struct {
	cfg GateConfig
	log *slog.Logger
}

// NewRouteGate creates a RouteGate. A nil logger falls back to
// slog.Default.
func NewRouteGate(cfg GateConfig, log *slog.Logger) *RouteGate {
	if log == nil {
		log = slog.Default()
	}
	return &RouteGate{cfg: cfg, log: log.With(slog.String("component", "route_gate"))}
}

// Mount attaches the gate to a chi router.
func (g *RouteGate) Mount(r chi.Router) {
	r.Use(g.Handler)
}

// Handler wraps next with the route gate.
func (g *RouteGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch g.classify(path) {
		case classPublic:
			next.ServeHTTP(w, r)
			return
		case classAuth:
			if g.isAuthenticated(r) {
				target := r.URL.Query().Get("redirect")
				if target == "" || !strings.HasPrefix(target, "/") {
					target = "/"
				}
				g.log.DebugContext(r.Context(), "authenticated visitor on auth page",
					slog.String("path", path),
					slog.String("redirect", target))
				g.securityHeaders(w)
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}
		case classProtected:
			if !g.isAuthenticated(r) {
				g.log.DebugContext(r.Context(), "unauthenticated visitor on protected page",
					slog.String("path", path))
				g.securityHeaders(w)
				loginURL := g.cfg.LoginPath + "?redirect=" + url.QueryEscape(path)
				http.Redirect(w, r, loginURL, http.StatusTemporaryRedirect)
				return
			}
		}

		g.securityHeaders(w)
		next.ServeHTTP(w, r)
	})
}

// classify orders checks so static assets and API calls short-circuit
// before any route list is consulted.
func (g *RouteGate) classify(path string) routeClass {
	if strings.Contains(path, ".") ||
		strings.HasPrefix(path, "/api/") ||
		strings.HasPrefix(path, "/_next/") {
		return classPublic
	}
	for _, p := range g.cfg.PublicRoutes {
		if p == "/" {
			if path == "/" {
				return classPublic
			}
			continue
		}
		if matchRoute(path, p) {
			return classPublic
		}
	}
	for _, p := range g.cfg.AuthRoutes {
		if matchRoute(path, p) {
			return classAuth
		}
	}
	for _, p := range g.cfg.ProtectedRoutes {
		if matchRoute(path, p) {
			return classProtected
		}
	}
	return classOther
}

func matchRoute(path, route string) bool {
	return path == route || strings.HasPrefix(path, route+"/")
}

// isAuthenticated reports whether the request carries a token cookie
// whose exp claim has not passed. The signature is not checked here; a
// forged cookie only reaches pages whose data loads still require a
// valid token at the API.
func (g *RouteGate) isAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie(g.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return !jwt.Expired(cookie.Value)
}

func (g *RouteGate) securityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
	if g.cfg.Environment == "development" {
		h.Set("Content-Security-Policy",
			"default-src * 'unsafe-inline' 'unsafe-eval'; img-src * data: blob:")
	}
}
