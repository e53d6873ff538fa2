package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hass-mcp-server/internal/config"
	"hass-mcp-server/internal/logging"
	"hass-mcp-server/internal/mcp"
)

// fakeStates serves just enough of the Home Assistant REST API for the
// server to construct and answer requests.
func fakeStates(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/states":
			_, _ = w.Write([]byte(`[{"entity_id":"light.living_room","state":"on","attributes":{"friendly_name":"Living Room"}}]`))
		case "/api/config":
			_, _ = w.Write([]byte(`{"version":"2024.5.1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newServerForTest(t *testing.T) *mcp.HassServer {
	t.Helper()
	upstream := fakeStates(t)
	t.Cleanup(upstream.Close)

	cfg := config.DefaultConfig()
	cfg.HomeAssistant.URL = upstream.URL
	cfg.HomeAssistant.Token = "test-token"
	cfg.Favorites.Backend = "memory"

	hs, err := mcp.NewHassServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hs.Close() })
	return hs
}

func TestMCPHandlerRejectsBadRequests(t *testing.T) {
	hs := newServerForTest(t)
	handler := mcpHandler(hs, logging.NewNoOpLogger())

	t.Run("non-POST is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("invalid JSON is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("preflight is allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodOptions, "/mcp", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMCPHandlerAnswersJSONRPC(t *testing.T) {
	hs := newServerForTest(t)
	handler := mcpHandler(hs, logging.NewNoOpLogger())

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2.0", resp["jsonrpc"])
}
