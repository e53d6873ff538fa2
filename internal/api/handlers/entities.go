// Package handlers implements the REST API endpoints, mirroring the
// MCP tool surface for non-MCP clients like dashboards and scripts.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hass-mcp-server/internal/api/response"
	"hass-mcp-server/internal/projection"
	"hass-mcp-server/internal/resources"
	"hass-mcp-server/pkg/types"
)

const defaultListLimit = 100

// EntityService is the upstream surface the handlers need.
type EntityService interface {
	resources.StateProvider
	GetVersion(ctx context.Context) (string, error)
}

// EntityHandler serves the entity query endpoints.
type EntityHandler struct {
	service EntityService
}

// NewEntityHandler creates the entity endpoints handler.
func NewEntityHandler(service EntityService) *EntityHandler {
	return &EntityHandler{service: service}
}

// List handles GET /api/v1/entities with optional domain and limit
// query parameters.
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.FetchAllEntities(r.Context())
	if err != nil {
		response.WriteStandardError(w, err)
		return
	}

	if domain := r.URL.Query().Get("domain"); domain != "" {
		var matches []*types.EntityRecord
		for _, e := range entities {
			if e.Domain() == domain {
				matches = append(matches, e)
			}
		}
		entities = matches
	}

	limit := queryInt(r, "limit", defaultListLimit)
	if len(entities) > limit {
		entities = entities[:limit]
	}

	results := make([]map[string]interface{}, 0, len(entities))
	for _, e := range entities {
		results = append(results, projection.Lean(e))
	}
	response.WriteJSON(w, map[string]interface{}{
		"count":    len(results),
		"entities": results,
	})
}

// Get handles GET /api/v1/entities/{entityID}. The detailed query
// parameter switches to the full record.
func (h *EntityHandler) Get(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")
	if entityID == "" {
		response.WriteBadRequest(w, "entity ID is required")
		return
	}

	e, err := h.service.FetchEntity(r.Context(), entityID)
	if err != nil {
		response.WriteStandardError(w, err)
		return
	}

	if r.URL.Query().Get("detailed") == "true" {
		response.WriteJSON(w, projection.Full(e))
		return
	}
	response.WriteJSON(w, projection.Lean(e))
}

// Search handles GET /api/v1/search?q=...&limit=...
func (h *EntityHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.WriteBadRequest(w, "query parameter 'q' is required")
		return
	}
	limit := queryInt(r, "limit", resources.DefaultSearchLimit)

	entities, err := h.service.FetchAllEntities(r.Context())
	if err != nil {
		response.WriteStandardError(w, err)
		return
	}

	matches := resources.SearchEntities(entities, query, limit)
	results := make([]map[string]interface{}, 0, len(matches))
	for _, e := range matches {
		results = append(results, projection.Lean(e))
	}
	response.WriteJSON(w, map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
