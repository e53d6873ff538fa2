package resources

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"hass-mcp-server/internal/aggregation"
	"hass-mcp-server/internal/errors"
	"hass-mcp-server/internal/logging"
	"hass-mcp-server/pkg/types"
)

// StateProvider supplies entity state. The resolver performs exactly
// one provider call per resolution and does all filtering itself; the
// provider is expected to return fresh data on every call.
type StateProvider interface {
	FetchAllEntities(ctx context.Context) ([]*types.EntityRecord, error)
	FetchEntity(ctx context.Context, entityID string) (*types.EntityRecord, error)
}

// Resolver turns hass:// URIs into markdown documents.
type Resolver struct {
	provider StateProvider
	logger   logging.Logger
}

// NewResolver creates a resolver over the given state provider.
func NewResolver(provider StateProvider, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Resolver{
		provider: provider,
		logger:   logger.WithComponent("resources"),
	}
}

// Resolve parses the URI, fetches state and renders the addressed
// view. The returned document is always displayable text; when the
// resolution failed it describes the failure, and the accompanying
// StandardError carries the taxonomy for callers that need a status
// code or structured logging.
func (r *Resolver) Resolve(ctx context.Context, uri string) (string, *errors.StandardError) {
	req, stdErr := ParseURI(uri)
	if stdErr != nil {
		r.logger.WarnContext(ctx, "Rejected resource URI", "uri", uri, "code", stdErr.ErrorInfo.Code)
		return renderError(stdErr), stdErr
	}

	var doc string
	switch req.Kind {
	case KindAllEntities:
		doc, stdErr = r.resolveAllEntities(ctx)
	case KindEntity:
		doc, stdErr = r.resolveEntity(ctx, req.EntityID, false)
	case KindEntityDetailed:
		doc, stdErr = r.resolveEntity(ctx, req.EntityID, true)
	case KindDomainListing:
		doc, stdErr = r.resolveDomainListing(ctx, req.Domain)
	case KindDomainSummary:
		doc, stdErr = r.resolveDomainSummary(ctx, req.Domain)
	case KindSearch:
		doc, stdErr = r.resolveSearch(ctx, req.Query, req.Limit)
	default:
		stdErr = errors.NewInternalError("Unhandled resource kind", nil)
	}

	if stdErr != nil {
		r.logger.WarnContext(ctx, "Resource resolution failed",
			"uri", uri, "code", stdErr.ErrorInfo.Code, "message", stdErr.ErrorInfo.Message)
		return renderError(stdErr), stdErr
	}
	return doc, nil
}

func (r *Resolver) resolveAllEntities(ctx context.Context) (string, *errors.StandardError) {
	entities, err := r.provider.FetchAllEntities(ctx)
	if err != nil {
		return "", upstreamError("GET /api/states", err)
	}
	return renderAllEntities(entities), nil
}

func (r *Resolver) resolveEntity(ctx context.Context, entityID string, detailed bool) (string, *errors.StandardError) {
	e, err := r.provider.FetchEntity(ctx, entityID)
	if err != nil {
		var stdErr *errors.StandardError
		if stderrors.As(err, &stdErr) && stdErr.ErrorInfo.Code == errors.ErrorCodeNotFound {
			return "", stdErr
		}
		return "", upstreamError(fmt.Sprintf("GET /api/states/%s", entityID), err)
	}
	if detailed {
		return renderEntityDetailed(e), nil
	}
	return renderEntityLean(e), nil
}

func (r *Resolver) resolveDomainListing(ctx context.Context, domain string) (string, *errors.StandardError) {
	matches, stdErr := r.fetchDomain(ctx, domain)
	if stdErr != nil {
		return "", stdErr
	}
	return renderDomainListing(domain, matches), nil
}

func (r *Resolver) resolveDomainSummary(ctx context.Context, domain string) (string, *errors.StandardError) {
	matches, stdErr := r.fetchDomain(ctx, domain)
	if stdErr != nil {
		return "", stdErr
	}
	report := aggregation.BuildReport(matches, summaryExamples, summaryTopAttrs)
	return renderDomainSummary(domain, report), nil
}

// fetchDomain fetches all entities and keeps those in the domain. A
// domain with no members is an error here: both domain views promise
// content about an existing domain, and an empty page would read like
// the domain itself is fine but empty.
func (r *Resolver) fetchDomain(ctx context.Context, domain string) ([]*types.EntityRecord, *errors.StandardError) {
	entities, err := r.provider.FetchAllEntities(ctx)
	if err != nil {
		return nil, upstreamError("GET /api/states", err)
	}
	var matches []*types.EntityRecord
	for _, e := range entities {
		if e.Domain() == domain {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return nil, errors.NewEmptyResultError(
			fmt.Sprintf("No entities found for domain '%s'", domain),
			map[string]interface{}{"domain": domain},
		)
	}
	return matches, nil
}

func (r *Resolver) resolveSearch(ctx context.Context, query string, limit int) (string, *errors.StandardError) {
	entities, err := r.provider.FetchAllEntities(ctx)
	if err != nil {
		return "", upstreamError("GET /api/states", err)
	}

	matches := SearchEntities(entities, query, limit)
	return renderSearch(query, limit, matches), nil
}

// SearchEntities returns entities whose ID, friendly name or state
// contains the query, case-insensitively, truncated to limit in input
// order.
func SearchEntities(entities []*types.EntityRecord, query string, limit int) []*types.EntityRecord {
	needle := strings.ToLower(query)
	var matches []*types.EntityRecord
	for _, e := range entities {
		if len(matches) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(e.EntityID), needle) {
			matches = append(matches, e)
			continue
		}
		if strings.Contains(strings.ToLower(e.State), needle) {
			matches = append(matches, e)
			continue
		}
		if name, ok := e.FriendlyName(); ok && strings.Contains(strings.ToLower(name), needle) {
			matches = append(matches, e)
		}
	}
	return matches
}

func upstreamError(operation string, err error) *errors.StandardError {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return errors.NewUpstreamError(operation, err)
}
