package mcp

import (
	"context"
	"fmt"
	"strings"

	mcp "github.com/fredcamaral/gomcp-sdk"
	"github.com/fredcamaral/gomcp-sdk/protocol"
	"github.com/go-viper/mapstructure/v2"

	"hass-mcp-server/internal/aggregation"
	"hass-mcp-server/internal/errors"
	"hass-mcp-server/internal/projection"
	"hass-mcp-server/internal/resources"
	"hass-mcp-server/pkg/types"
)

const (
	defaultListLimit    = 100
	defaultSearchLimit  = 20
	defaultHistoryHours = 24
	defaultExampleLimit = 3
	summaryAttrLimit    = 10
)

// registerTools registers all Home Assistant MCP tools
func (hs *HassServer) registerTools() {
	// 1. get_version - Home Assistant version
	hs.mcpServer.AddTool(mcp.NewTool(
		"get_version",
		"Get the Home Assistant core version",
		mcp.ObjectSchema("No parameters", map[string]interface{}{}, []string{}),
	), hs.guard("get_version", hs.handleGetVersion))

	// 2. get_entity - single entity state with optional field filtering
	hs.mcpServer.AddTool(mcp.NewTool(
		"get_entity",
		"Get the state of a single entity. Returns a token-efficient view by default; pass 'fields' to select specific fields or 'detailed' for the complete record.",
		mcp.ObjectSchema("Entity query parameters", map[string]interface{}{
			"entity_id": map[string]interface{}{
				"type":        "string",
				"description": "Entity ID, e.g. 'light.living_room'",
			},
			"fields": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Fields to return: 'state', 'attributes', 'attr.<name>', 'last_updated', 'last_changed', 'context'. An empty list returns the entity ID only.",
			},
			"detailed": map[string]interface{}{
				"type":        "boolean",
				"description": "Return the complete record with all attributes",
			},
		}, []string{"entity_id"}),
	), hs.guard("get_entity", hs.handleGetEntity))

	// 3. entity_action - turn on/off/toggle
	hs.mcpServer.AddTool(mcp.NewTool(
		"entity_action",
		"Turn an entity on or off, or toggle it. Extra parameters are forwarded to the service call, e.g. brightness for lights.",
		mcp.ObjectSchema("Entity action parameters", map[string]interface{}{
			"entity_id": map[string]interface{}{
				"type":        "string",
				"description": "Entity ID to act on",
			},
			"action": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"on", "off", "toggle"},
				"description": "The action to perform",
			},
			"params": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": true,
				"description":          "Additional service data, e.g. {\"brightness\": 128}",
			},
		}, []string{"entity_id", "action"}),
	), hs.guard("entity_action", hs.handleEntityAction))

	// 4. list_entities - filtered entity listing
	hs.mcpServer.AddTool(mcp.NewTool(
		"list_entities",
		"List entities, optionally filtered by domain or a search query. Results use the token-efficient view unless 'fields' or 'detailed' is given.",
		mcp.ObjectSchema("Entity listing parameters", map[string]interface{}{
			"domain": map[string]interface{}{
				"type":        "string",
				"description": "Restrict to one domain, e.g. 'light'",
			},
			"search_query": map[string]interface{}{
				"type":        "string",
				"description": "Case-insensitive substring match on entity ID or friendly name",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of results (default 100)",
			},
			"fields": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Fields to return per entity",
			},
			"detailed": map[string]interface{}{
				"type":        "boolean",
				"description": "Return complete records",
			},
		}, []string{}),
	), hs.guard("list_entities", hs.handleListEntities))

	// 5. search_entities_tool - search with domain breakdown
	hs.mcpServer.AddTool(mcp.NewTool(
		"search_entities_tool",
		"Search entities by ID or friendly name and get matches with a per-domain count breakdown",
		mcp.ObjectSchema("Search parameters", map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search text",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of results (default 20)",
			},
		}, []string{"query"}),
	), hs.guard("search_entities_tool", hs.handleSearchEntities))

	// 6. domain_summary_tool - aggregated domain statistics
	hs.mcpServer.AddTool(mcp.NewTool(
		"domain_summary_tool",
		"Summarize one domain: state distribution with example entities and the attributes with the most distinct values",
		mcp.ObjectSchema("Domain summary parameters", map[string]interface{}{
			"domain": map[string]interface{}{
				"type":        "string",
				"description": "Domain to summarize, e.g. 'sensor'",
			},
			"example_limit": map[string]interface{}{
				"type":        "integer",
				"description": "Example entities shown per state (default 3)",
			},
		}, []string{"domain"}),
	), hs.guard("domain_summary_tool", hs.handleDomainSummary))

	// 7. system_overview - whole-system snapshot
	hs.mcpServer.AddTool(mcp.NewTool(
		"system_overview",
		"Get an overview of the whole system: entity counts and state distribution per domain",
		mcp.ObjectSchema("No parameters", map[string]interface{}{}, []string{}),
	), hs.guard("system_overview", hs.handleSystemOverview))

	// 8. call_service_tool - arbitrary service call
	hs.mcpServer.AddTool(mcp.NewTool(
		"call_service_tool",
		"Call any Home Assistant service, e.g. domain 'climate', service 'set_temperature'",
		mcp.ObjectSchema("Service call parameters", map[string]interface{}{
			"domain": map[string]interface{}{
				"type":        "string",
				"description": "Service domain, e.g. 'light'",
			},
			"service": map[string]interface{}{
				"type":        "string",
				"description": "Service name, e.g. 'turn_on'",
			},
			"data": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": true,
				"description":          "Service data, usually including 'entity_id'",
			},
		}, []string{"domain", "service"}),
	), hs.guard("call_service_tool", hs.handleCallService))

	// 9. get_history - entity state history
	hs.mcpServer.AddTool(mcp.NewTool(
		"get_history",
		"Get the state history of one entity over the last hours",
		mcp.ObjectSchema("History parameters", map[string]interface{}{
			"entity_id": map[string]interface{}{
				"type":        "string",
				"description": "Entity ID to fetch history for",
			},
			"hours": map[string]interface{}{
				"type":        "integer",
				"description": "How far back to look (default 24)",
			},
		}, []string{"entity_id"}),
	), hs.guard("get_history", hs.handleGetHistory))

	// 10. get_error_log - upstream error log
	hs.mcpServer.AddTool(mcp.NewTool(
		"get_error_log",
		"Get the Home Assistant error log as plain text",
		mcp.ObjectSchema("No parameters", map[string]interface{}{}, []string{}),
	), hs.guard("get_error_log", hs.handleGetErrorLog))

	// 11. list_automations - automation entities
	hs.mcpServer.AddTool(mcp.NewTool(
		"list_automations",
		"List all automations with their state and last-triggered time",
		mcp.ObjectSchema("No parameters", map[string]interface{}{}, []string{}),
	), hs.guard("list_automations", hs.handleListAutomations))

	// 12. restart_ha - restart the instance
	hs.mcpServer.AddTool(mcp.NewTool(
		"restart_ha",
		"Restart Home Assistant. The instance is unavailable while it restarts.",
		mcp.ObjectSchema("Restart parameters", map[string]interface{}{
			"confirm": map[string]interface{}{
				"type":        "boolean",
				"description": "Must be true to actually restart",
			},
		}, []string{"confirm"}),
	), hs.guard("restart_ha", hs.handleRestart))

	// 13. list_areas - registry areas over websocket
	hs.mcpServer.AddTool(mcp.NewTool(
		"list_areas",
		"List the areas defined in the Home Assistant area registry",
		mcp.ObjectSchema("No parameters", map[string]interface{}{}, []string{}),
	), hs.guard("list_areas", hs.handleListAreas))

	// 14. add_favorite - pin an entity
	hs.mcpServer.AddTool(mcp.NewTool(
		"add_favorite",
		"Pin an entity as a favorite with an optional note. Re-adding updates the note.",
		mcp.ObjectSchema("Favorite parameters", map[string]interface{}{
			"entity_id": map[string]interface{}{
				"type":        "string",
				"description": "Entity ID to pin",
			},
			"note": map[string]interface{}{
				"type":        "string",
				"description": "Optional note, e.g. 'reading lamp'",
			},
		}, []string{"entity_id"}),
	), hs.guard("add_favorite", hs.handleAddFavorite))

	// 15. remove_favorite - unpin an entity
	hs.mcpServer.AddTool(mcp.NewTool(
		"remove_favorite",
		"Unpin a favorite entity",
		mcp.ObjectSchema("Favorite parameters", map[string]interface{}{
			"entity_id": map[string]interface{}{
				"type":        "string",
				"description": "Entity ID to unpin",
			},
		}, []string{"entity_id"}),
	), hs.guard("remove_favorite", hs.handleRemoveFavorite))

	// 16. list_favorites - pinned entities with live state
	hs.mcpServer.AddTool(mcp.NewTool(
		"list_favorites",
		"List pinned favorites together with their current state",
		mcp.ObjectSchema("No parameters", map[string]interface{}{}, []string{}),
	), hs.guard("list_favorites", hs.handleListFavorites))

	hs.logger.Info("MCP tools registered", "count", 16)
}

// guard wraps a tool handler with the rate limiter when one is
// configured. The tool name is the limiter key, so a chatty tool
// cannot starve the others.
func (hs *HassServer) guard(name string, handler func(context.Context, map[string]interface{}) (interface{}, error)) protocol.ToolHandler {
	return mcp.ToolHandlerFunc(func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		if hs.limiter != nil {
			decision, err := hs.limiter.Allow(ctx, name)
			if err != nil {
				hs.logger.ErrorContext(ctx, "Rate limiter failed", "tool", name, "error", err.Error())
			} else if !decision.Allowed {
				return nil, errors.NewRateLimitError(decision.Limit, "1m", decision.RetryAfter, decision.Remaining)
			}
		}
		return handler(ctx, params)
	})
}

// Tool handlers

func (hs *HassServer) handleGetVersion(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	version, err := hs.ha.GetVersion(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"version": version}, nil
}

type getEntityRequest struct {
	EntityID string   `json:"entity_id" mapstructure:"entity_id"`
	Fields   []string `json:"fields,omitempty" mapstructure:"fields"`
	Detailed bool     `json:"detailed,omitempty" mapstructure:"detailed"`
}

func (hs *HassServer) handleGetEntity(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var req getEntityRequest
	if err := mapstructure.Decode(params, &req); err != nil {
		return nil, errors.NewMalformedRequestError("Invalid parameters: "+err.Error(), nil)
	}
	if req.EntityID == "" {
		return nil, errors.ErrEntityIDRequired
	}

	e, err := hs.ha.FetchEntity(ctx, req.EntityID)
	if err != nil {
		return nil, err
	}

	if req.Detailed {
		return projection.Full(e), nil
	}
	// A fields argument, even an empty list, selects field filtering.
	// Only its absence selects the lean view.
	if _, ok := params["fields"]; ok {
		return projection.FilterFields(e, req.Fields), nil
	}
	return projection.Lean(e), nil
}

type entityActionRequest struct {
	EntityID string                 `json:"entity_id" mapstructure:"entity_id"`
	Action   string                 `json:"action" mapstructure:"action"`
	Params   map[string]interface{} `json:"params,omitempty" mapstructure:"params"`
}

func (hs *HassServer) handleEntityAction(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var req entityActionRequest
	if err := mapstructure.Decode(params, &req); err != nil {
		return nil, errors.NewMalformedRequestError("Invalid parameters: "+err.Error(), nil)
	}
	if req.EntityID == "" {
		return nil, errors.ErrEntityIDRequired
	}

	var service string
	switch req.Action {
	case "on":
		service = "turn_on"
	case "off":
		service = "turn_off"
	case "toggle":
		service = "toggle"
	default:
		return nil, errors.NewValidationError("action", "must be 'on', 'off' or 'toggle'", req.Action)
	}

	domain := types.DomainOf(req.EntityID)
	if domain == "" {
		return nil, errors.NewValidationError("entity_id", "has no domain separator", req.EntityID)
	}

	data := map[string]interface{}{"entity_id": req.EntityID}
	for k, v := range req.Params {
		data[k] = v
	}

	changed, err := hs.ha.CallService(ctx, domain, service, data)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"entity_id": req.EntityID,
		"action":    req.Action,
		"changed":   leanAll(changed),
	}, nil
}

type listEntitiesRequest struct {
	Domain      string   `json:"domain,omitempty" mapstructure:"domain"`
	SearchQuery string   `json:"search_query,omitempty" mapstructure:"search_query"`
	Limit       int      `json:"limit,omitempty" mapstructure:"limit"`
	Fields      []string `json:"fields,omitempty" mapstructure:"fields"`
	Detailed    bool     `json:"detailed,omitempty" mapstructure:"detailed"`
}

func (hs *HassServer) handleListEntities(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var req listEntitiesRequest
	if err := mapstructure.Decode(params, &req); err != nil {
		return nil, errors.NewMalformedRequestError("Invalid parameters: "+err.Error(), nil)
	}
	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}

	entities, err := hs.ha.FetchAllEntities(ctx)
	if err != nil {
		return nil, err
	}

	if req.Domain != "" {
		var matches []*types.EntityRecord
		for _, e := range entities {
			if e.Domain() == req.Domain {
				matches = append(matches, e)
			}
		}
		entities = matches
	}
	if q := strings.TrimSpace(req.SearchQuery); q != "" {
		entities = resources.SearchEntities(entities, q, req.Limit)
	}
	if len(entities) > req.Limit {
		entities = entities[:req.Limit]
	}

	results := make([]interface{}, 0, len(entities))
	_, fieldsGiven := params["fields"]
	for _, e := range entities {
		switch {
		case req.Detailed:
			results = append(results, projection.Full(e))
		case fieldsGiven:
			results = append(results, projection.FilterFields(e, req.Fields))
		default:
			results = append(results, projection.Lean(e))
		}
	}
	return map[string]interface{}{
		"count":    len(results),
		"entities": results,
	}, nil
}

type searchRequest struct {
	Query string `json:"query" mapstructure:"query"`
	Limit int    `json:"limit,omitempty" mapstructure:"limit"`
}

func (hs *HassServer) handleSearchEntities(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var req searchRequest
	if err := mapstructure.Decode(params, &req); err != nil {
		return nil, errors.NewMalformedRequestError("Invalid parameters: "+err.Error(), nil)
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.ErrQueryRequired
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	entities, err := hs.ha.FetchAllEntities(ctx)
	if err != nil {
		return nil, err
	}

	matches := resources.SearchEntities(entities, strings.TrimSpace(req.Query), req.Limit)
	groups := aggregation.GroupByDomain(matches)
	domainCounts := make(map[string]int, len(groups.Domains))
	for _, domain := range groups.Domains {
		domainCounts[domain] = len(groups.ByName[domain])
	}

	return map[string]interface{}{
		"query":   req.Query,
		"count":   len(matches),
		"limit":   req.Limit,
		"results": leanAll(matches),
		"domains": domainCounts,
	}, nil
}

type domainSummaryRequest struct {
	Domain       string `json:"domain" mapstructure:"domain"`
	ExampleLimit int    `json:"example_limit,omitempty" mapstructure:"example_limit"`
}

func (hs *HassServer) handleDomainSummary(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var req domainSummaryRequest
	if err := mapstructure.Decode(params, &req); err != nil {
		return nil, errors.NewMalformedRequestError("Invalid parameters: "+err.Error(), nil)
	}
	if req.Domain == "" {
		return nil, errors.ErrDomainRequired
	}
	if req.ExampleLimit <= 0 {
		req.ExampleLimit = defaultExampleLimit
	}

	entities, err := hs.ha.FetchAllEntities(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*types.EntityRecord
	for _, e := range entities {
		if e.Domain() == req.Domain {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return nil, errors.NewEmptyResultError(
			fmt.Sprintf("No entities found for domain '%s'", req.Domain),
			map[string]interface{}{"domain": req.Domain},
		)
	}

	report := aggregation.BuildReport(matches, req.ExampleLimit, summaryAttrLimit)
	return map[string]interface{}{
		"domain": req.Domain,
		"report": report,
	}, nil
}

func (hs *HassServer) handleSystemOverview(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	entities, err := hs.ha.FetchAllEntities(ctx)
	if err != nil {
		return nil, err
	}

	groups := aggregation.GroupByDomain(entities)
	domains := make([]map[string]interface{}, 0, len(groups.Domains))
	for _, domain := range groups.Domains {
		members := groups.ByName[domain]
		histogram := aggregation.BuildStateHistogram(members, 0)
		domains = append(domains, map[string]interface{}{
			"domain": domain,
			"count":  len(members),
			"states": histogram.Counts,
		})
	}
	return map[string]interface{}{
		"total_entities": len(entities),
		"domain_count":   len(groups.Domains),
		"domains":        domains,
	}, nil
}

type callServiceRequest struct {
	Domain  string                 `json:"domain" mapstructure:"domain"`
	Service string                 `json:"service" mapstructure:"service"`
	Data    map[string]interface{} `json:"data,omitempty" mapstructure:"data"`
}

func (hs *HassServer) handleCallService(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var req callServiceRequest
	if err := mapstructure.Decode(params, &req); err != nil {
		return nil, errors.NewMalformedRequestError("Invalid parameters: "+err.Error(), nil)
	}
	if req.Domain == "" {
		return nil, errors.ErrDomainRequired
	}
	if req.Service == "" {
		return nil, errors.ErrServiceRequired
	}

	changed, err := hs.ha.CallService(ctx, req.Domain, req.Service, req.Data)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"domain":  req.Domain,
		"service": req.Service,
		"changed": leanAll(changed),
	}, nil
}

type historyRequest struct {
	EntityID string `json:"entity_id" mapstructure:"entity_id"`
	Hours    int    `json:"hours,omitempty" mapstructure:"hours"`
}

func (hs *HassServer) handleGetHistory(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var req historyRequest
	if err := mapstructure.Decode(params, &req); err != nil {
		return nil, errors.NewMalformedRequestError("Invalid parameters: "+err.Error(), nil)
	}
	if req.EntityID == "" {
		return nil, errors.ErrEntityIDRequired
	}
	if req.Hours <= 0 {
		req.Hours = defaultHistoryHours
	}

	records, err := hs.ha.GetHistory(ctx, req.EntityID, req.Hours)
	if err != nil {
		return nil, err
	}

	states := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		states = append(states, map[string]interface{}{
			"state":        r.State,
			"last_changed": r.LastChanged,
		})
	}
	return map[string]interface{}{
		"entity_id": req.EntityID,
		"hours":     req.Hours,
		"count":     len(states),
		"history":   states,
	}, nil
}

func (hs *HassServer) handleGetErrorLog(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	log, err := hs.ha.GetErrorLog(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"error_log": log}, nil
}

func (hs *HassServer) handleListAutomations(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	entities, err := hs.ha.FetchAllEntities(ctx)
	if err != nil {
		return nil, err
	}

	automations := make([]map[string]interface{}, 0)
	for _, e := range entities {
		if e.Domain() != "automation" {
			continue
		}
		item := map[string]interface{}{
			"entity_id": e.EntityID,
			"name":      e.DisplayName(),
			"state":     e.State,
		}
		if e.Attributes != nil {
			if last, ok := e.Attributes["last_triggered"]; ok {
				item["last_triggered"] = last
			}
		}
		automations = append(automations, item)
	}
	return map[string]interface{}{
		"count":       len(automations),
		"automations": automations,
	}, nil
}

type restartRequest struct {
	Confirm bool `json:"confirm" mapstructure:"confirm"`
}

func (hs *HassServer) handleRestart(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var req restartRequest
	if err := mapstructure.Decode(params, &req); err != nil {
		return nil, errors.NewMalformedRequestError("Invalid parameters: "+err.Error(), nil)
	}
	if !req.Confirm {
		return nil, errors.NewValidationError("confirm", "must be true to restart Home Assistant", req.Confirm)
	}

	hs.logger.WarnContext(ctx, "Restarting Home Assistant")
	if _, err := hs.ha.CallService(ctx, "homeassistant", "restart", nil); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "restarting"}, nil
}

func (hs *HassServer) handleListAreas(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	areas, err := hs.ha.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"count": len(areas),
		"areas": areas,
	}, nil
}

type favoriteRequest struct {
	EntityID string `json:"entity_id" mapstructure:"entity_id"`
	Note     string `json:"note,omitempty" mapstructure:"note"`
}

func (hs *HassServer) handleAddFavorite(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var req favoriteRequest
	if err := mapstructure.Decode(params, &req); err != nil {
		return nil, errors.NewMalformedRequestError("Invalid parameters: "+err.Error(), nil)
	}
	if req.EntityID == "" {
		return nil, errors.ErrEntityIDRequired
	}

	// Verify the entity exists before pinning it.
	if _, err := hs.ha.FetchEntity(ctx, req.EntityID); err != nil {
		return nil, err
	}
	if err := hs.favorites.Add(ctx, req.EntityID, req.Note); err != nil {
		return nil, errors.NewInternalError("Failed to save favorite", err)
	}
	return map[string]interface{}{
		"entity_id": req.EntityID,
		"status":    "added",
	}, nil
}

func (hs *HassServer) handleRemoveFavorite(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var req favoriteRequest
	if err := mapstructure.Decode(params, &req); err != nil {
		return nil, errors.NewMalformedRequestError("Invalid parameters: "+err.Error(), nil)
	}
	if req.EntityID == "" {
		return nil, errors.ErrEntityIDRequired
	}

	if err := hs.favorites.Remove(ctx, req.EntityID); err != nil {
		return nil, errors.NewInternalError("Failed to remove favorite", err)
	}
	return map[string]interface{}{
		"entity_id": req.EntityID,
		"status":    "removed",
	}, nil
}

func (hs *HassServer) handleListFavorites(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	favs, err := hs.favorites.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list favorites", err)
	}

	items := make([]map[string]interface{}, 0, len(favs))
	for _, f := range favs {
		item := map[string]interface{}{
			"entity_id": f.EntityID,
			"added_at":  f.AddedAt,
		}
		if f.Note != "" {
			item["note"] = f.Note
		}
		// Favorites survive entity removals; state is best-effort.
		if e, err := hs.ha.FetchEntity(ctx, f.EntityID); err == nil {
			item["state"] = e.State
			item["name"] = e.DisplayName()
		} else {
			item["state"] = "unavailable"
		}
		items = append(items, item)
	}
	return map[string]interface{}{
		"count":     len(items),
		"favorites": items,
	}, nil
}

func leanAll(entities []*types.EntityRecord) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(entities))
	for _, e := range entities {
		out = append(out, projection.Lean(e))
	}
	return out
}
