package api

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// BuildOpenAPISpec describes the REST API surface. The spec is built
// in code so it cannot drift from the routes the router registers.
func BuildOpenAPISpec(version string) *openapi3.T {
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Home Assistant MCP Server API",
			Description: "REST mirror of the MCP tool surface: entity queries, search and hass:// resource documents.",
			Version:     version,
		},
		Paths: openapi3.NewPaths(),
	}

	spec.Paths.Set("/health", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "getHealth",
			Summary:     "Liveness and upstream reachability",
			Responses:   jsonResponses("Service status"),
		},
	})

	spec.Paths.Set("/api/v1/entities", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "listEntities",
			Summary:     "List entities in the token-efficient view",
			Parameters: openapi3.Parameters{
				queryParam("domain", "Restrict to one domain, e.g. 'light'"),
				queryParam("limit", "Maximum number of results (default 100)"),
			},
			Responses: jsonResponses("Entity list"),
		},
	})

	spec.Paths.Set("/api/v1/entities/{entityID}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "getEntity",
			Summary:     "Get one entity",
			Parameters: openapi3.Parameters{
				pathParam("entityID", "Entity ID, e.g. 'light.living_room'"),
				queryParam("detailed", "Pass 'true' for the complete record"),
			},
			Responses: jsonResponses("Entity state"),
		},
	})

	spec.Paths.Set("/api/v1/search", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "searchEntities",
			Summary:     "Search entities by ID or friendly name",
			Parameters: openapi3.Parameters{
				queryParam("q", "Search text"),
				queryParam("limit", "Maximum number of results (default 20)"),
			},
			Responses: jsonResponses("Search results"),
		},
	})

	spec.Paths.Set("/api/v1/resource", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "resolveResource",
			Summary:     "Resolve a hass:// resource URI to a document",
			Parameters: openapi3.Parameters{
				queryParam("uri", "Resource URI, e.g. 'hass://entities/domain/light/summary'"),
				queryParam("format", "Output format: 'markdown' (default) or 'html'"),
			},
			Responses: jsonResponses("Rendered document"),
		},
	})

	return spec
}

func queryParam(name, description string) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name:        name,
			In:          openapi3.ParameterInQuery,
			Description: description,
			Schema:      openapi3.NewSchemaRef("", openapi3.NewStringSchema()),
		},
	}
}

func pathParam(name, description string) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name:        name,
			In:          openapi3.ParameterInPath,
			Required:    true,
			Description: description,
			Schema:      openapi3.NewSchemaRef("", openapi3.NewStringSchema()),
		},
	}
}

func jsonResponses(description string) *openapi3.Responses {
	responses := openapi3.NewResponses()
	desc := description
	responses.Set("200", &openapi3.ResponseRef{
		Value: &openapi3.Response{Description: &desc},
	})
	return responses
}
