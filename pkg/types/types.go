// Package types provides the shared data types for the Home Assistant
// MCP server: entity state records as returned by the Home Assistant
// REST API and the derived aggregation structures built from them.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// AttrFriendlyName is the attribute key Home Assistant uses for the
// human-readable display label of an entity.
const AttrFriendlyName = "friendly_name"

// EntityRecord represents one observed entity (device, sensor,
// automation, ...) at a point in time. Records are produced fresh on
// every state fetch and are never mutated by the core.
type EntityRecord struct {
	EntityID    string                 `json:"entity_id"`
	State       string                 `json:"state"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	LastChanged string                 `json:"last_changed,omitempty"`
	LastUpdated string                 `json:"last_updated,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// DomainOf returns the dot-prefix of an entity ID (e.g. "light" for
// "light.living_room"), or "" when the ID has no domain separator. The
// domain selects projection rules and must be extracted the same way
// everywhere, so this is the only place that does it.
func DomainOf(entityID string) string {
	idx := strings.Index(entityID, ".")
	if idx < 1 {
		return ""
	}
	return entityID[:idx]
}

// Domain returns the domain of the record's entity ID.
func (e *EntityRecord) Domain() string {
	return DomainOf(e.EntityID)
}

// FriendlyName returns the friendly_name attribute and whether it was
// present. Absence is preserved rather than coerced to an empty string.
func (e *EntityRecord) FriendlyName() (string, bool) {
	if e.Attributes == nil {
		return "", false
	}
	name, ok := e.Attributes[AttrFriendlyName].(string)
	return name, ok
}

// DisplayName returns the friendly name when present and distinct from
// the entity ID, otherwise the entity ID itself.
func (e *EntityRecord) DisplayName() string {
	if name, ok := e.FriendlyName(); ok && name != "" {
		return name
	}
	return e.EntityID
}

// Validate checks that a record fetched from the upstream API is
// well-formed enough for the core to operate on. Malformed records are
// quarantined at the provider boundary so the pure functions downstream
// never see them.
func (e *EntityRecord) Validate() error {
	if e.EntityID == "" {
		return errors.New("entity record has empty entity_id")
	}
	if e.Domain() == "" {
		return fmt.Errorf("entity_id %q has no domain separator", e.EntityID)
	}
	return nil
}

// EntityExample is a compact reference to an entity used in histogram
// example lists.
type EntityExample struct {
	EntityID     string `json:"entity_id"`
	FriendlyName string `json:"friendly_name,omitempty"`
}

// StateHistogram is the per-state count and example breakdown of an
// entity set. Built fresh per request, never persisted.
type StateHistogram struct {
	Total    int                        `json:"total"`
	Counts   map[string]int             `json:"state_counts"`
	Examples map[string][]EntityExample `json:"state_examples"`

	// states in first-seen order, for deterministic rendering
	Order []string `json:"-"`
}

// AttributeCount pairs an attribute name with the number of distinct
// values observed for it across an entity set.
type AttributeCount struct {
	Name   string   `json:"name"`
	Count  int      `json:"count"`
	Values []string `json:"values"`
}

// AggregationReport bundles the set-level statistics computed for a
// domain summary view.
type AggregationReport struct {
	Total         int              `json:"total"`
	Histogram     *StateHistogram  `json:"histogram"`
	TopAttributes []AttributeCount `json:"top_attributes"`
}
