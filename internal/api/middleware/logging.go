package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"hass-mcp-server/internal/logging"
)

// RequestLogger logs one structured entry per request, keyed by the
// chi request ID.
type RequestLogger struct {
	logger logging.Logger
}

// NewRequestLogger creates the request logging middleware.
func NewRequestLogger(logger logging.Logger) *RequestLogger {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &RequestLogger{logger: logger.WithComponent("api")}
}

// Handler returns the logging middleware handler
func (rl *RequestLogger) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Health checks are noise.
			if r.URL.Path == "/health" || r.URL.Path == "/ping" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			requestID := chimiddleware.GetReqID(r.Context())
			w.Header().Set("X-Request-ID", requestID)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []interface{}{
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", r.RemoteAddr,
			}
			if ww.Status() >= http.StatusInternalServerError {
				rl.logger.Error("Request failed", fields...)
			} else {
				rl.logger.Info("Request handled", fields...)
			}
		})
	}
}
