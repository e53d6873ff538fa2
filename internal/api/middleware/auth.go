// Package middleware provides the HTTP middleware stack for the REST
// API layer: authentication, rate limiting, CORS and request logging.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"hass-mcp-server/internal/api/response"
	"hass-mcp-server/internal/config"
)

const apiKeyHeader = "X-API-Key"

// APIKeyAuth guards requests with the configured API key. When a
// bcrypt hash is configured it takes precedence over the plain key;
// plain comparison is constant time either way.
type APIKeyAuth struct {
	key  string
	hash string
}

// NewAPIKeyAuth creates the auth middleware from config.
func NewAPIKeyAuth(cfg config.APIConfig) *APIKeyAuth {
	return &APIKeyAuth{
		key:  cfg.APIKey,
		hash: cfg.APIKeyHash,
	}
}

// Handler returns the auth middleware handler
func (a *APIKeyAuth) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(apiKeyHeader)
			if presented == "" {
				response.WriteUnauthorized(w, "Missing "+apiKeyHeader+" header")
				return
			}
			if !a.valid(presented) {
				response.WriteUnauthorized(w, "Invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *APIKeyAuth) valid(presented string) bool {
	if a.hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.hash), []byte(presented)) == nil
	}
	if a.key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.key), []byte(presented)) == 1
}
