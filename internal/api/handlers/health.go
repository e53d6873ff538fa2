package handlers

import (
	"net/http"

	"hass-mcp-server/internal/api/response"
)

// HealthHandler serves liveness and upstream reachability checks.
type HealthHandler struct {
	service EntityService
	version string
}

// NewHealthHandler creates the health endpoint handler.
func NewHealthHandler(service EntityService, version string) *HealthHandler {
	return &HealthHandler{service: service, version: version}
}

// Health handles GET /health. The upstream version doubles as a
// reachability probe; its failure degrades the status without failing
// the endpoint.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	}
	if haVersion, err := h.service.GetVersion(r.Context()); err == nil {
		body["home_assistant"] = haVersion
	} else {
		body["status"] = "degraded"
		body["home_assistant_error"] = err.Error()
	}
	response.WriteJSON(w, body)
}
