package handlers

import (
	"bytes"
	"net/http"

	"github.com/yuin/goldmark"

	"hass-mcp-server/internal/api/response"
	"hass-mcp-server/internal/resources"
)

// ResourceHandler serves hass:// resource documents over HTTP, so the
// same views the MCP resources expose can be fetched with curl or
// embedded in a dashboard.
type ResourceHandler struct {
	resolver *resources.Resolver
	markdown goldmark.Markdown
}

// NewResourceHandler creates the resource endpoint handler.
func NewResourceHandler(resolver *resources.Resolver) *ResourceHandler {
	return &ResourceHandler{
		resolver: resolver,
		markdown: goldmark.New(),
	}
}

// Resolve handles GET /api/v1/resource?uri=hass://...&format=markdown|html
func (h *ResourceHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		response.WriteBadRequest(w, "query parameter 'uri' is required")
		return
	}

	doc, stdErr := h.resolver.Resolve(r.Context(), uri)

	status := http.StatusOK
	if stdErr != nil {
		status = stdErr.ToHTTPStatus()
	}

	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := h.markdown.Convert([]byte(doc), &buf); err != nil {
			response.WriteStandardError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = buf.WriteTo(w)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(doc))
}
