// Package auth gates access to the API. Unauthorized access to protected
// routes fails closed: the response is a generic 404 rather than a 401/403,
// so the existence of the protected resource is never confirmed to an
// unauthorized caller.
package auth

import (
	"context"
	"net"
	"net/http"
	"strings"

	"threadloom/pkg/logger"
)

// Role is the caller class derived from the presented API key.
type Role int

const (
	RoleUnauth Role = iota
	RoleFrontend
	RoleBackend
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleFrontend:
		return "frontend"
	case RoleBackend:
		return "backend"
	case RoleAdmin:
		return "admin"
	}
	return "unauth"
}

// SecConfig configures the middleware.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	BackendKeys    map[string]struct{}
	FrontendKeys   map[string]struct{}
	AdminKeys      map[string]struct{}
	AllowUnauth    bool // dev mode: skip key checks entirely
}

type ctxRoleKey struct{}

// RoleFromContext returns the caller role attached by the middleware.
func RoleFromContext(ctx context.Context) Role {
	if v := ctx.Value(ctxRoleKey{}); v != nil {
		if r, ok := v.(Role); ok {
			return r
		}
	}
	return RoleUnauth
}

// openPaths are reachable without a key so deployment probes work.
var openPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
}

// Middleware authenticates requests, applies CORS headers and rate limits
// per key/IP.
func Middleware(cfg SecConfig) func(http.Handler) http.Handler {
	limiters := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogRequest(r)

			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,X-API-Key,Last-Event-ID")
				w.Header().Set("Access-Control-Max-Age", "600")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			role, key := authenticate(r, cfg)

			limiterKey := key
			if limiterKey == "" {
				limiterKey = clientIP(r)
			}
			if !limiters.Allow(limiterKey) {
				logger.Warn("request_rate_limited", "path", r.URL.Path, "remote", r.RemoteAddr)
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			if _, open := openPaths[r.URL.Path]; !open && role == RoleUnauth && !cfg.AllowUnauth {
				// Fail closed: do not reveal whether the route exists.
				logger.Warn("request_unauthorized", "path", r.URL.Path, "remote", r.RemoteAddr)
				http.NotFound(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxRoleKey{}, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin wraps admin-only handlers. Non-admin callers get the same
// generic 404 as unauthenticated ones.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) != RoleAdmin {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the caller role from X-API-Key or a bearer token.
func authenticate(r *http.Request, cfg SecConfig) (Role, string) {
	key := strings.TrimSpace(r.Header.Get("X-API-Key"))
	if key == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			key = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}
	if key == "" {
		return RoleUnauth, ""
	}
	if _, ok := cfg.AdminKeys[key]; ok {
		return RoleAdmin, key
	}
	if _, ok := cfg.BackendKeys[key]; ok {
		return RoleBackend, key
	}
	if _, ok := cfg.FrontendKeys[key]; ok {
		return RoleFrontend, key
	}
	return RoleUnauth, ""
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
