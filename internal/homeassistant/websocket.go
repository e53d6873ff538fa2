package homeassistant

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"hass-mcp-server/internal/errors"
)

// Area is one entry of the Home Assistant area registry. The registry
// is only exposed over the websocket API, not REST.
type Area struct {
	AreaID  string `json:"area_id"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

type wsMessage struct {
	ID          int             `json:"id,omitempty"`
	Type        string          `json:"type"`
	AccessToken string          `json:"access_token,omitempty"`
	Success     bool            `json:"success,omitempty"`
	Result      []Area          `json:"result,omitempty"`
	Error       *wsMessageError `json:"error,omitempty"`
}

type wsMessageError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// websocketURL derives the ws:// endpoint from the REST base URL.
func (c *Client) websocketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/websocket"
	return u.String(), nil
}

// ListAreas fetches the area registry over the websocket API. The
// handshake is: receive auth_required, send the access token, expect
// auth_ok, then issue a single config/area_registry/list command.
func (c *Client) ListAreas(ctx context.Context) ([]Area, error) {
	wsURL, err := c.websocketURL()
	if err != nil {
		return nil, errors.NewUpstreamError("websocket connect", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, errors.NewUpstreamError("websocket connect", err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	var hello wsMessage
	if err := conn.ReadJSON(&hello); err != nil {
		return nil, errors.NewUpstreamError("websocket handshake", err)
	}
	if hello.Type != "auth_required" {
		return nil, errors.NewUpstreamError("websocket handshake",
			fmt.Errorf("expected auth_required, got %q", hello.Type))
	}

	if err := conn.WriteJSON(wsMessage{Type: "auth", AccessToken: c.token}); err != nil {
		return nil, errors.NewUpstreamError("websocket auth", err)
	}

	var authResp wsMessage
	if err := conn.ReadJSON(&authResp); err != nil {
		return nil, errors.NewUpstreamError("websocket auth", err)
	}
	if authResp.Type != "auth_ok" {
		return nil, errors.NewUnauthorizedError("home_assistant_rejected_token")
	}

	if err := conn.WriteJSON(wsMessage{ID: 1, Type: "config/area_registry/list"}); err != nil {
		return nil, errors.NewUpstreamError("area registry request", err)
	}

	// The server may interleave events; wait for the reply to our ID.
	for {
		var resp wsMessage
		if err := conn.ReadJSON(&resp); err != nil {
			return nil, errors.NewUpstreamError("area registry response", err)
		}
		if resp.ID != 1 {
			continue
		}
		if !resp.Success {
			msg := "area registry request rejected"
			if resp.Error != nil {
				msg = resp.Error.Message
			}
			return nil, errors.NewUpstreamError("area registry response", fmt.Errorf("%s", msg))
		}
		return resp.Result, nil
	}
}
