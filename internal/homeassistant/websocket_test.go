package homeassistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	haerrors "hass-mcp-server/internal/errors"
	"hass-mcp-server/internal/logging"
)

var upgrader = websocket.Upgrader{}

// fakeHAWebsocket speaks just enough of the HA websocket protocol for
// the handshake and one area registry request.
func fakeHAWebsocket(t *testing.T, acceptToken string, areas []Area) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/websocket" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "auth_required"}))

		var auth wsMessage
		require.NoError(t, conn.ReadJSON(&auth))
		if auth.AccessToken != acceptToken {
			_ = conn.WriteJSON(map[string]interface{}{"type": "auth_invalid"})
			return
		}
		require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "auth_ok"}))

		var cmd wsMessage
		require.NoError(t, conn.ReadJSON(&cmd))
		assert.Equal(t, "config/area_registry/list", cmd.Type)

		require.NoError(t, conn.WriteJSON(map[string]interface{}{
			"id":      cmd.ID,
			"type":    "result",
			"success": true,
			"result":  areas,
		}))
	})
}

func newWSTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, Token: testToken}, logging.NewNoOpLogger())
	require.NoError(t, err)
	return client
}

func TestListAreas(t *testing.T) {
	areas := []Area{
		{AreaID: "living_room", Name: "Living Room"},
		{AreaID: "kitchen", Name: "Kitchen"},
	}
	client := newWSTestClient(t, fakeHAWebsocket(t, testToken, areas))

	got, err := client.ListAreas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, areas, got)
}

func TestListAreasAuthRejected(t *testing.T) {
	client := newWSTestClient(t, fakeHAWebsocket(t, "other-token", nil))

	_, err := client.ListAreas(context.Background())
	require.Error(t, err)
	var stdErr *haerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, haerrors.ErrorCodeUnauthorized, stdErr.ErrorInfo.Code)
}

func TestWebsocketURL(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "https://ha.example.com", Token: "x"}, nil)
	require.NoError(t, err)

	wsURL, err := client.websocketURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://ha.example.com/api/websocket", wsURL)
}
