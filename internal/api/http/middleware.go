package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"library-circulation/internal/config"
	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/security"
	"library-circulation/internal/service"
)

// AuthMiddleware authenticates and authorizes requests by route name.
type AuthMiddleware struct {
	tokenManager security.TokenManager
	catalog      service.CatalogService
	rules        map[string]config.RouteRule
}

func NewAuthMiddleware(tm security.TokenManager, catalog service.CatalogService) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm, catalog: catalog, rules: config.RouteSecurityConfig}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		rule, ok := m.rules[name]
		if !ok {
			writeError(w, r, errForbidden)
			return
		}
		if rule.Level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r)
		if token == "" {
			writeError(w, r, errUnauthenticated)
			return
		}
		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			logger.Debug("Rejected token", "route", name, "error", err)
			writeError(w, r, errUnauthenticated)
			return
		}

		caller, err := m.catalog.GetUser(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, r, errUnauthenticated)
			return
		}
		if rule.Permission != "" && !domain.PolicyForUser(caller).HasPermission(rule.Permission) {
			writeError(w, r, errForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
	})
}

func extractToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	return strings.TrimSpace(token)
}

// loggingMiddleware logs one line per request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.InfoContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
