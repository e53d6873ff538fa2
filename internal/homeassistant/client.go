// Package homeassistant is the REST and websocket client for a Home
// Assistant instance. It authenticates with a long-lived access token
// and normalizes upstream responses into the shared entity types.
// Records that fail validation and entities excluded by the configured
// filters are dropped at this boundary.
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"hass-mcp-server/internal/errors"
	"hass-mcp-server/internal/logging"
	"hass-mcp-server/pkg/types"
)

const defaultTimeout = 10 * time.Second

// Config holds the connection settings for one Home Assistant
// instance.
type Config struct {
	// BaseURL is the instance root, e.g. "http://homeassistant.local:8123".
	BaseURL string

	// Token is a long-lived access token created in the HA profile page.
	Token string

	// Timeout bounds each REST call. Zero means defaultTimeout.
	Timeout time.Duration

	// Whitelist and Blacklist are entity ID regexp patterns. When the
	// whitelist is non-empty only matching entities pass; blacklist
	// matches are then removed.
	Whitelist []string
	Blacklist []string
}

// Client talks to one Home Assistant instance.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	whitelist  []*regexp.Regexp
	blacklist  []*regexp.Regexp
	logger     logging.Logger
}

// NewClient builds a client from config, compiling the entity filters
// up front so a bad pattern fails at startup rather than per request.
func NewClient(cfg Config, logger logging.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("home assistant base URL is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("home assistant access token is required")
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	whitelist, err := compilePatterns(cfg.Whitelist)
	if err != nil {
		return nil, fmt.Errorf("invalid whitelist pattern: %w", err)
	}
	blacklist, err := compilePatterns(cfg.Blacklist)
	if err != nil {
		return nil, fmt.Errorf("invalid blacklist pattern: %w", err)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		whitelist: whitelist,
		blacklist: blacklist,
		logger:    logger.WithComponent("homeassistant"),
	}, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	var compiled []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// allowed applies the whitelist then the blacklist to an entity ID.
func (c *Client) allowed(entityID string) bool {
	if len(c.whitelist) > 0 {
		pass := false
		for _, re := range c.whitelist {
			if re.MatchString(entityID) {
				pass = true
				break
			}
		}
		if !pass {
			return false
		}
	}
	for _, re := range c.blacklist {
		if re.MatchString(entityID) {
			return false
		}
	}
	return true
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

// FetchAllEntities returns the current state of every entity that
// passes the configured filters. Malformed records are logged and
// skipped.
func (c *Client) FetchAllEntities(ctx context.Context) ([]*types.EntityRecord, error) {
	data, status, err := c.do(ctx, http.MethodGet, "/api/states", nil)
	if err != nil {
		return nil, errors.NewUpstreamError("GET /api/states", err)
	}
	if status != http.StatusOK {
		return nil, c.statusError("GET /api/states", status, data)
	}

	var raw []*types.EntityRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewUpstreamError("GET /api/states", fmt.Errorf("decoding response: %w", err))
	}

	entities := make([]*types.EntityRecord, 0, len(raw))
	for _, e := range raw {
		if err := e.Validate(); err != nil {
			c.logger.WarnContext(ctx, "Skipping malformed entity record", "error", err.Error())
			continue
		}
		if !c.allowed(e.EntityID) {
			continue
		}
		entities = append(entities, e)
	}
	c.logger.DebugContext(ctx, "Fetched entity states", "total", len(raw), "kept", len(entities))
	return entities, nil
}

// FetchEntity returns the current state of a single entity.
func (c *Client) FetchEntity(ctx context.Context, entityID string) (*types.EntityRecord, error) {
	path := "/api/states/" + entityID
	data, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, errors.NewUpstreamError("GET "+path, err)
	}
	if status == http.StatusNotFound {
		return nil, errors.NewNotFoundError(entityID)
	}
	if status != http.StatusOK {
		return nil, c.statusError("GET "+path, status, data)
	}

	var e types.EntityRecord
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.NewUpstreamError("GET "+path, fmt.Errorf("decoding response: %w", err))
	}
	if err := e.Validate(); err != nil {
		return nil, errors.NewUpstreamError("GET "+path, err)
	}
	return &e, nil
}

// CallService invokes a Home Assistant service, e.g. light.turn_on.
// The returned records are the states changed by the call.
func (c *Client) CallService(ctx context.Context, domain, service string, data map[string]interface{}) ([]*types.EntityRecord, error) {
	path := fmt.Sprintf("/api/services/%s/%s", domain, service)
	body, status, err := c.do(ctx, http.MethodPost, path, data)
	if err != nil {
		return nil, errors.NewUpstreamError("POST "+path, err)
	}
	if status != http.StatusOK {
		return nil, c.statusError("POST "+path, status, body)
	}

	var changed []*types.EntityRecord
	if err := json.Unmarshal(body, &changed); err != nil {
		return nil, errors.NewUpstreamError("POST "+path, fmt.Errorf("decoding response: %w", err))
	}
	return changed, nil
}

// GetHistory returns the state history of one entity over the last
// given number of hours. Home Assistant groups the records per entity;
// with a single entity filter there is at most one group.
func (c *Client) GetHistory(ctx context.Context, entityID string, hours int) ([]*types.EntityRecord, error) {
	if hours <= 0 {
		hours = 24
	}
	start := time.Now().UTC().Add(-time.Duration(hours) * time.Hour).Format(time.RFC3339)
	path := fmt.Sprintf("/api/history/period/%s?filter_entity_id=%s", start, entityID)

	data, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, errors.NewUpstreamError("GET /api/history/period", err)
	}
	if status != http.StatusOK {
		return nil, c.statusError("GET /api/history/period", status, data)
	}

	var groups [][]*types.EntityRecord
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, errors.NewUpstreamError("GET /api/history/period", fmt.Errorf("decoding response: %w", err))
	}
	if len(groups) == 0 {
		return nil, nil
	}
	return groups[0], nil
}

// GetErrorLog returns the raw Home Assistant error log as plain text.
func (c *Client) GetErrorLog(ctx context.Context) (string, error) {
	data, status, err := c.do(ctx, http.MethodGet, "/api/error_log", nil)
	if err != nil {
		return "", errors.NewUpstreamError("GET /api/error_log", err)
	}
	if status != http.StatusOK {
		return "", c.statusError("GET /api/error_log", status, data)
	}
	return string(data), nil
}

// GetConfig returns the instance configuration (version, location,
// loaded components, unit system).
func (c *Client) GetConfig(ctx context.Context) (map[string]interface{}, error) {
	data, status, err := c.do(ctx, http.MethodGet, "/api/config", nil)
	if err != nil {
		return nil, errors.NewUpstreamError("GET /api/config", err)
	}
	if status != http.StatusOK {
		return nil, c.statusError("GET /api/config", status, data)
	}

	var cfg map[string]interface{}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewUpstreamError("GET /api/config", fmt.Errorf("decoding response: %w", err))
	}
	return cfg, nil
}

// GetVersion returns the Home Assistant core version string.
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	cfg, err := c.GetConfig(ctx)
	if err != nil {
		return "", err
	}
	if v, ok := cfg["version"].(string); ok {
		return v, nil
	}
	return "unknown", nil
}

func (c *Client) statusError(operation string, status int, body []byte) *errors.StandardError {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return errors.NewUnauthorizedError("home_assistant_rejected_token")
	}
	msg := fmt.Errorf("unexpected status %d: %s", status, truncate(string(body), 200))
	return errors.NewUpstreamError(operation, msg)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
