package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hass-mcp-server/internal/errors"
)

func TestParseURIRouting(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want Request
	}{
		{
			name: "all entities",
			uri:  "hass://entities",
			want: Request{Kind: KindAllEntities},
		},
		{
			name: "entity",
			uri:  "hass://entities/light.living_room",
			want: Request{Kind: KindEntity, EntityID: "light.living_room"},
		},
		{
			name: "entity detailed",
			uri:  "hass://entities/light.living_room/detailed",
			want: Request{Kind: KindEntityDetailed, EntityID: "light.living_room"},
		},
		{
			name: "domain listing",
			uri:  "hass://entities/domain/light",
			want: Request{Kind: KindDomainListing, Domain: "light"},
		},
		{
			name: "domain summary",
			uri:  "hass://entities/domain/light/summary",
			want: Request{Kind: KindDomainSummary, Domain: "light"},
		},
		{
			name: "search default limit",
			uri:  "hass://search/kitchen",
			want: Request{Kind: KindSearch, Query: "kitchen", Limit: 20},
		},
		{
			name: "search custom limit",
			uri:  "hass://search/kitchen/5",
			want: Request{Kind: KindSearch, Query: "kitchen", Limit: 5},
		},
		{
			name: "search escaped query",
			uri:  "hass://search/living%20room",
			want: Request{Kind: KindSearch, Query: "living room", Limit: 20},
		},
		{
			name: "trailing slash tolerated",
			uri:  "hass://entities/",
			want: Request{Kind: KindAllEntities},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stdErr := ParseURI(tt.uri)
			require.Nil(t, stdErr)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseURIBadLimitFallsBack(t *testing.T) {
	tests := []string{
		"hass://search/kitchen/abc",
		"hass://search/kitchen/0",
		"hass://search/kitchen/-3",
	}
	for _, uri := range tests {
		t.Run(uri, func(t *testing.T) {
			got, stdErr := ParseURI(uri)
			require.Nil(t, stdErr)
			assert.Equal(t, DefaultSearchLimit, got.Limit)
		})
	}
}

func TestParseURIMalformed(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"no scheme", "entities"},
		{"wrong scheme", "http://entities"},
		{"unknown root", "hass://bogus"},
		{"empty path", "hass://"},
		{"deep entity path", "hass://entities/light.x/detailed/extra"},
		{"entity with unknown suffix", "hass://entities/light.x/verbose"},
		{"bare search", "hass://search"},
		{"empty query", "hass://search/%20%20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stdErr := ParseURI(tt.uri)
			assert.Nil(t, got)
			require.NotNil(t, stdErr)
			assert.Equal(t, errors.ErrorCodeMalformedRequest, stdErr.ErrorInfo.Code)
		})
	}
}

func TestParseURIDomainSegmentWinsOverEntitySuffix(t *testing.T) {
	// entities/domain/<x> is always a domain listing, even when <x>
	// could pass for an entity suffix.
	got, stdErr := ParseURI("hass://entities/domain/detailed")
	require.Nil(t, stdErr)
	assert.Equal(t, KindDomainListing, got.Kind)
	assert.Equal(t, "detailed", got.Domain)
}
