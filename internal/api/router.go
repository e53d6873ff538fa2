// Package api provides the HTTP API layer: a REST mirror of the MCP
// tool surface for clients that do not speak MCP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"hass-mcp-server/internal/api/handlers"
	"hass-mcp-server/internal/api/middleware"
	"hass-mcp-server/internal/config"
	"hass-mcp-server/internal/logging"
	"hass-mcp-server/internal/ratelimit"
	"hass-mcp-server/internal/resources"
)

// Router represents the main API router
type Router struct {
	config  *config.Config
	mux     *chi.Mux
	version string
	logger  logging.Logger
}

// NewRouter creates a new API router with middleware and routes.
func NewRouter(cfg *config.Config, service handlers.EntityService, resolver *resources.Resolver, limiter ratelimit.Limiter, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	r := &Router{
		config:  cfg,
		mux:     chi.NewRouter(),
		version: "1.0.0",
		logger:  logger,
	}

	r.setupMiddleware(limiter)
	r.setupRoutes(service, resolver)
	return r
}

// Handler returns the HTTP handler
func (r *Router) Handler() http.Handler {
	return r.mux
}

// setupMiddleware configures the middleware stack
func (r *Router) setupMiddleware(limiter ratelimit.Limiter) {
	r.mux.Use(chimiddleware.Recoverer)
	r.mux.Use(chimiddleware.RequestID)
	r.mux.Use(chimiddleware.RealIP)
	r.mux.Use(middleware.NewRequestLogger(r.logger).Handler())
	r.mux.Use(middleware.NewDefaultCORSMiddleware().Handler())
	r.mux.Use(middleware.NewRateLimit(limiter, r.logger).Handler())
	r.mux.Use(chimiddleware.Heartbeat("/ping"))
}

// setupRoutes configures the API routes
func (r *Router) setupRoutes(service handlers.EntityService, resolver *resources.Resolver) {
	health := handlers.NewHealthHandler(service, r.version)
	entities := handlers.NewEntityHandler(service)
	resource := handlers.NewResourceHandler(resolver)

	r.mux.Get("/health", health.Health)
	r.mux.Get("/openapi.json", r.serveOpenAPISpec)

	r.mux.Route("/api/v1", func(api chi.Router) {
		// Entity data is behind the API key when one is configured.
		if r.config.API.APIKey != "" || r.config.API.APIKeyHash != "" {
			api.Use(middleware.NewAPIKeyAuth(r.config.API).Handler())
		}
		api.Get("/entities", entities.List)
		api.Get("/entities/{entityID}", entities.Get)
		api.Get("/search", entities.Search)
		api.Get("/resource", resource.Resolve)
	})
}

func (r *Router) serveOpenAPISpec(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(BuildOpenAPISpec(r.version)); err != nil {
		r.logger.ErrorContext(req.Context(), "Failed to encode OpenAPI spec", "error", err.Error())
	}
}
