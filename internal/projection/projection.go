// Package projection reduces a single entity record to one of three
// views: an explicit field selection, a token-efficient "lean" view
// driven by the per-domain attribute table, or the record unchanged.
// All functions are pure; they operate on already-fetched data and
// perform no I/O.
package projection

import (
	"strings"

	"hass-mcp-server/pkg/types"
)

// Field selector names accepted by FilterFields. Selectors outside this
// set (other than the attr.<name> form) are silently ignored.
const (
	FieldState       = "state"
	FieldAttributes  = "attributes"
	FieldLastUpdated = "last_updated"
	FieldLastChanged = "last_changed"
	FieldContext     = "context"

	attrPrefix = "attr."
)

// FilterFields returns a reduced record containing entity_id plus only
// the requested fields. Values are copied by reference, never
// transformed. An empty selector list yields {entity_id} only; callers
// distinguish "no fields argument" (lean mode) from "empty fields
// argument" themselves, since both reach here as distinct call sites.
func FilterFields(e *types.EntityRecord, fields []string) map[string]interface{} {
	out := map[string]interface{}{
		"entity_id": e.EntityID,
	}

	for _, field := range fields {
		switch {
		case field == FieldState:
			out["state"] = e.State
		case field == FieldAttributes:
			out["attributes"] = e.Attributes
		case field == FieldLastUpdated:
			out["last_updated"] = e.LastUpdated
		case field == FieldLastChanged:
			out["last_changed"] = e.LastChanged
		case field == FieldContext:
			out["context"] = e.Context
		case strings.HasPrefix(field, attrPrefix):
			name := field[len(attrPrefix):]
			if e.Attributes != nil {
				if v, ok := e.Attributes[name]; ok {
					out[name] = v
				}
			}
		}
	}

	return out
}

// Lean returns the default token-efficient view of an entity:
// entity_id, state, friendly_name when present, then every important
// attribute for the entity's domain that the entity actually carries,
// in table order.
func Lean(e *types.EntityRecord) map[string]interface{} {
	out := map[string]interface{}{
		"entity_id": e.EntityID,
		"state":     e.State,
	}
	if name, ok := e.FriendlyName(); ok {
		out[types.AttrFriendlyName] = name
	}

	if e.Attributes == nil {
		return out
	}
	for _, attr := range ImportantAttributes(e.Domain()) {
		if v, ok := e.Attributes[attr]; ok {
			out[attr] = v
		}
	}
	return out
}

// LeanAttributeOrder returns the ordered attribute names a lean view of
// the entity carries beyond entity_id/state/friendly_name. Renderers
// use this to emit attributes in table order, which maps do not keep.
func LeanAttributeOrder(e *types.EntityRecord) []string {
	if e.Attributes == nil {
		return nil
	}
	var order []string
	for _, attr := range ImportantAttributes(e.Domain()) {
		if _, ok := e.Attributes[attr]; ok {
			order = append(order, attr)
		}
	}
	return order
}

// Full returns the entity unchanged. Attribute ordering for display is
// a rendering concern, applied only when the record is formatted as
// text.
func Full(e *types.EntityRecord) *types.EntityRecord {
	return e
}
