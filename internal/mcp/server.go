// Package mcp provides the MCP server for Home Assistant: tools for
// querying and controlling entities, and hass:// resources for
// browsing them.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	mcp "github.com/fredcamaral/gomcp-sdk"
	"github.com/fredcamaral/gomcp-sdk/protocol"
	"github.com/fredcamaral/gomcp-sdk/server"
	"github.com/fredcamaral/gomcp-sdk/transport"

	"hass-mcp-server/internal/api"
	"hass-mcp-server/internal/config"
	"hass-mcp-server/internal/favorites"
	"hass-mcp-server/internal/homeassistant"
	"hass-mcp-server/internal/logging"
	"hass-mcp-server/internal/ratelimit"
	"hass-mcp-server/internal/resources"
	"hass-mcp-server/pkg/types"
)

// HomeAssistant is the upstream surface the tools need. The REST
// client implements it; tests substitute a fake.
type HomeAssistant interface {
	resources.StateProvider
	CallService(ctx context.Context, domain, service string, data map[string]interface{}) ([]*types.EntityRecord, error)
	GetHistory(ctx context.Context, entityID string, hours int) ([]*types.EntityRecord, error)
	GetErrorLog(ctx context.Context) (string, error)
	GetConfig(ctx context.Context) (map[string]interface{}, error)
	GetVersion(ctx context.Context) (string, error)
	ListAreas(ctx context.Context) ([]homeassistant.Area, error)
}

// HassServer implements the MCP server for Home Assistant
type HassServer struct {
	cfg       *config.Config
	mcpServer *server.Server
	logger    logging.Logger

	ha        HomeAssistant
	resolver  *resources.Resolver
	favorites favorites.Store
	limiter   ratelimit.Limiter
}

// NewHassServer creates the server and connects its dependencies from
// config.
func NewHassServer(cfg *config.Config) (*HassServer, error) {
	logger := logging.WithComponent("mcp")

	ha, err := homeassistant.NewClient(homeassistant.Config{
		BaseURL:   cfg.HomeAssistant.URL,
		Token:     cfg.HomeAssistant.Token,
		Timeout:   cfg.HomeAssistant.Timeout(),
		Whitelist: cfg.HomeAssistant.Whitelist,
		Blacklist: cfg.HomeAssistant.Blacklist,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating home assistant client: %w", err)
	}

	store, err := newFavoritesStore(cfg)
	if err != nil {
		return nil, err
	}

	limiter, err := newLimiter(cfg)
	if err != nil {
		return nil, err
	}

	return newHassServer(cfg, ha, store, limiter, logger)
}

// newHassServer wires an already-built dependency set. Split out so
// tests can inject fakes.
func newHassServer(cfg *config.Config, ha HomeAssistant, store favorites.Store, limiter ratelimit.Limiter, logger logging.Logger) (*HassServer, error) {
	serverName := getEnv("SERVICE_NAME", "hass-mcp")
	serverVersion := getEnv("SERVICE_VERSION", "1.0.0")

	mcpServer := mcp.NewServer(serverName, serverVersion)
	if mcpServer == nil {
		return nil, errors.New("failed to create MCP server instance")
	}

	hs := &HassServer{
		cfg:       cfg,
		mcpServer: mcpServer,
		logger:    logger,
		ha:        ha,
		resolver:  resources.NewResolver(ha, logger),
		favorites: store,
		limiter:   limiter,
	}

	hs.registerTools()
	hs.registerResources()

	return hs, nil
}

func newFavoritesStore(cfg *config.Config) (favorites.Store, error) {
	switch cfg.Favorites.Backend {
	case "memory":
		return favorites.NewMemoryStore(), nil
	default:
		store, err := favorites.NewSQLiteStore(cfg.Favorites.Path)
		if err != nil {
			return nil, fmt.Errorf("creating favorites store: %w", err)
		}
		return store, nil
	}
}

func newLimiter(cfg *config.Config) (ratelimit.Limiter, error) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}
	limitCfg := ratelimit.Config{
		Limit:  cfg.RateLimit.RequestsPerMin,
		Window: time.Minute,
	}
	if cfg.RateLimit.Backend == "redis" {
		limiter, err := ratelimit.NewRedisLimiter(ratelimit.RedisOptions{Addr: cfg.RateLimit.RedisAddr}, limitCfg)
		if err != nil {
			return nil, fmt.Errorf("creating redis rate limiter: %w", err)
		}
		return limiter, nil
	}
	return ratelimit.NewLocalLimiter(limitCfg), nil
}

// Start runs the server over stdio until the context is canceled.
func (hs *HassServer) Start(ctx context.Context) error {
	if delay := hs.cfg.Server.StartupDelayMS; delay > 0 {
		hs.logger.Info("Delaying startup", "delay_ms", delay)
		select {
		case <-time.After(time.Duration(delay) * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	hs.logger.Info("Starting Home Assistant MCP server over stdio")
	hs.mcpServer.SetTransport(transport.NewStdioTransport())
	return hs.mcpServer.Start(ctx)
}

// HandleRequest forwards a JSON-RPC request to the underlying server,
// used by the HTTP transport.
func (hs *HassServer) HandleRequest(ctx context.Context, req *protocol.JSONRPCRequest) *protocol.JSONRPCResponse {
	return hs.mcpServer.HandleRequest(ctx, req)
}

// GetMCPServer returns the underlying MCP server for testing
func (hs *HassServer) GetMCPServer() *server.Server {
	return hs.mcpServer
}

// Resolver returns the resource resolver, shared with the REPL and the
// REST API so every surface renders the same views.
func (hs *HassServer) Resolver() *resources.Resolver {
	return hs.resolver
}

// APIRouter builds the REST API router over the same upstream client
// and rate limiter the tools use.
func (hs *HassServer) APIRouter(cfg *config.Config) *api.Router {
	return api.NewRouter(cfg, hs.ha, hs.resolver, hs.limiter, hs.logger)
}

// Close releases the favorites store and rate limiter.
func (hs *HassServer) Close() error {
	var errs []error
	if hs.favorites != nil {
		if err := hs.favorites.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if hs.limiter != nil {
		if err := hs.limiter.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// registerResources registers the hass:// resources for browsing
// entity state. One handler serves them all; routing happens on the
// URI.
func (hs *HassServer) registerResources() {
	resourceDefs := []struct {
		uri         string
		name        string
		description string
	}{
		{
			uri:         "hass://entities",
			name:        "All Entities",
			description: "Overview of all Home Assistant entities grouped by domain",
		},
		{
			uri:         "hass://entities/{entity_id}",
			name:        "Entity State",
			description: "Compact state view of a single entity",
		},
		{
			uri:         "hass://entities/{entity_id}/detailed",
			name:        "Entity Detail",
			description: "Full state view of a single entity with all attributes",
		},
		{
			uri:         "hass://entities/domain/{domain}",
			name:        "Domain Entities",
			description: "All entities of one domain",
		},
		{
			uri:         "hass://entities/domain/{domain}/summary",
			name:        "Domain Summary",
			description: "State distribution and attribute statistics for one domain",
		},
		{
			uri:         "hass://search/{query}/{limit}",
			name:        "Entity Search",
			description: "Entities matching a query, with an optional result limit",
		},
	}

	for _, res := range resourceDefs {
		resource := mcp.NewResource(res.uri, res.name, res.description, "text/markdown")
		hs.mcpServer.AddResource(resource, mcp.ResourceHandlerFunc(hs.handleResourceRead))
	}

	hs.logger.Info("MCP resources registered", "count", len(resourceDefs))
}

// handleResourceRead resolves a hass:// URI. Resolution failures are
// part of the document, so the client always receives readable text.
func (hs *HassServer) handleResourceRead(ctx context.Context, uri string) ([]protocol.Content, error) {
	ctx = logging.WithTraceID(ctx, "")
	doc, _ := hs.resolver.Resolve(ctx, uri)
	return []protocol.Content{protocol.NewContent(doc)}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
