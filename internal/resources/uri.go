// Package resources resolves hass:// URIs into markdown documents. A
// resolution parses the URI, performs exactly one provider fetch,
// filters and aggregates locally, and renders text. Failures are
// rendered into the document rather than surfaced as protocol errors,
// so a reading client always gets something displayable.
package resources

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"hass-mcp-server/internal/errors"
)

// Scheme is the only URI scheme the router accepts.
const Scheme = "hass"

// DefaultSearchLimit caps search results when no limit segment is given
// or the given one is unusable.
const DefaultSearchLimit = 20

// RequestKind identifies which resource view a URI addresses.
type RequestKind int

const (
	KindAllEntities RequestKind = iota
	KindEntity
	KindEntityDetailed
	KindDomainListing
	KindDomainSummary
	KindSearch
)

// Request is a parsed, validated resource address.
type Request struct {
	Kind     RequestKind
	EntityID string
	Domain   string
	Query    string
	Limit    int
}

// ParseURI routes a hass:// URI to a request. Unroutable paths, wrong
// schemes and blank search queries produce a malformed-request error;
// a bad limit segment is not an error and falls back to the default.
func ParseURI(uri string) (*Request, *errors.StandardError) {
	parts := strings.SplitN(uri, "://", 2)
	if len(parts) != 2 {
		return nil, errors.NewMalformedRequestError(
			fmt.Sprintf("Invalid resource URI '%s': missing scheme", uri),
			map[string]interface{}{"uri": uri},
		)
	}
	if parts[0] != Scheme {
		return nil, errors.NewMalformedRequestError(
			fmt.Sprintf("Unsupported scheme '%s': only hass:// resources are served", parts[0]),
			map[string]interface{}{"uri": uri},
		)
	}

	path := strings.TrimSuffix(parts[1], "/")
	segments := strings.Split(path, "/")

	switch {
	case len(segments) == 1 && segments[0] == "entities":
		return &Request{Kind: KindAllEntities}, nil

	case len(segments) == 2 && segments[0] == "entities":
		return &Request{Kind: KindEntity, EntityID: segments[1]}, nil

	case len(segments) == 3 && segments[0] == "entities" && segments[1] == "domain":
		return &Request{Kind: KindDomainListing, Domain: segments[2]}, nil

	case len(segments) == 3 && segments[0] == "entities" && segments[2] == "detailed":
		return &Request{Kind: KindEntityDetailed, EntityID: segments[1]}, nil

	case len(segments) == 4 && segments[0] == "entities" && segments[1] == "domain" && segments[3] == "summary":
		return &Request{Kind: KindDomainSummary, Domain: segments[2]}, nil

	case (len(segments) == 2 || len(segments) == 3) && segments[0] == "search":
		return parseSearch(uri, segments)
	}

	return nil, errors.NewMalformedRequestError(
		fmt.Sprintf("Unrecognized resource path '%s'", uri),
		map[string]interface{}{"uri": uri},
	)
}

func parseSearch(uri string, segments []string) (*Request, *errors.StandardError) {
	query, err := url.PathUnescape(segments[1])
	if err != nil {
		query = segments[1]
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewMalformedRequestError(
			"Search query cannot be empty",
			map[string]interface{}{"uri": uri},
		)
	}

	limit := DefaultSearchLimit
	if len(segments) == 3 {
		if n, err := strconv.Atoi(segments[2]); err == nil && n > 0 {
			limit = n
		}
	}
	return &Request{Kind: KindSearch, Query: query, Limit: limit}, nil
}
