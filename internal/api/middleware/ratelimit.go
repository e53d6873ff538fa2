package middleware

import (
	"net"
	"net/http"

	"hass-mcp-server/internal/api/response"
	"hass-mcp-server/internal/logging"
	"hass-mcp-server/internal/ratelimit"
)

// RateLimit limits requests per client IP using the shared limiter.
type RateLimit struct {
	limiter ratelimit.Limiter
	logger  logging.Logger
}

// NewRateLimit creates the rate limit middleware. A nil limiter
// disables it.
func NewRateLimit(limiter ratelimit.Limiter, logger logging.Logger) *RateLimit {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &RateLimit{limiter: limiter, logger: logger}
}

// Handler returns the rate limit middleware handler
func (rl *RateLimit) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			decision, err := rl.limiter.Allow(r.Context(), key)
			if err != nil {
				// A broken limiter backend should not take the API down.
				rl.logger.ErrorContext(r.Context(), "Rate limiter failed", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}
			if !decision.Allowed {
				response.WriteRateLimited(w, int(decision.RetryAfter.Seconds())+1)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the RealIP middleware result and falls back to the
// connection address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
