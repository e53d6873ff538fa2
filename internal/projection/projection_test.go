package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hass-mcp-server/pkg/types"
)

func testEntity() *types.EntityRecord {
	return &types.EntityRecord{
		EntityID: "light.living_room",
		State:    "on",
		Attributes: map[string]interface{}{
			"friendly_name": "Living Room",
			"brightness":    float64(200),
			"rgb_color":     []interface{}{float64(255), float64(0), float64(0)},
			"icon":          "mdi:lightbulb",
		},
		LastChanged: "2024-05-01T10:00:00+00:00",
		LastUpdated: "2024-05-01T10:05:00+00:00",
		Context:     map[string]interface{}{"id": "ctx-1"},
	}
}

func TestFilterFields(t *testing.T) {
	e := testEntity()

	tests := []struct {
		name   string
		fields []string
		want   map[string]interface{}
	}{
		{
			name:   "state only",
			fields: []string{"state"},
			want:   map[string]interface{}{"entity_id": "light.living_room", "state": "on"},
		},
		{
			name:   "single attribute",
			fields: []string{"attr.brightness"},
			want:   map[string]interface{}{"entity_id": "light.living_room", "brightness": float64(200)},
		},
		{
			name:   "absent attribute omitted",
			fields: []string{"attr.nonexistent"},
			want:   map[string]interface{}{"entity_id": "light.living_room"},
		},
		{
			name:   "unknown selectors ignored",
			fields: []string{"bogus", "state"},
			want:   map[string]interface{}{"entity_id": "light.living_room", "state": "on"},
		},
		{
			name:   "empty list yields id only",
			fields: []string{},
			want:   map[string]interface{}{"entity_id": "light.living_room"},
		},
		{
			name:   "nil list yields id only",
			fields: nil,
			want:   map[string]interface{}{"entity_id": "light.living_room"},
		},
		{
			name:   "timestamps and context",
			fields: []string{"last_updated", "last_changed", "context"},
			want: map[string]interface{}{
				"entity_id":    "light.living_room",
				"last_updated": "2024-05-01T10:05:00+00:00",
				"last_changed": "2024-05-01T10:00:00+00:00",
				"context":      map[string]interface{}{"id": "ctx-1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterFields(e, tt.fields))
		})
	}
}

func TestFilterFieldsWholeAttributeMap(t *testing.T) {
	e := testEntity()
	got := FilterFields(e, []string{"attributes"})
	assert.Equal(t, e.Attributes, got["attributes"])
	assert.Len(t, got, 2)
}

func TestLean(t *testing.T) {
	e := testEntity()
	got := Lean(e)

	assert.Equal(t, "light.living_room", got["entity_id"])
	assert.Equal(t, "on", got["state"])
	assert.Equal(t, "Living Room", got["friendly_name"])
	assert.Equal(t, float64(200), got["brightness"])
	assert.Contains(t, got, "rgb_color")

	// Attributes outside the domain table are excluded from lean views.
	assert.NotContains(t, got, "icon")
}

func TestLeanDistinctFromEmptyFilter(t *testing.T) {
	// Lean mode is only triggered by the absence of a fields argument;
	// an explicitly empty list must produce a different result.
	e := testEntity()
	lean := Lean(e)
	filtered := FilterFields(e, []string{})
	assert.NotEqual(t, lean, filtered)
	assert.Contains(t, lean, "state")
	assert.NotContains(t, filtered, "state")
}

func TestLeanAlwaysCarriesIDAndState(t *testing.T) {
	tests := []struct {
		name string
		e    *types.EntityRecord
	}{
		{"nil attributes", &types.EntityRecord{EntityID: "sensor.x", State: "23"}},
		{"empty attributes", &types.EntityRecord{EntityID: "sensor.x", State: "23", Attributes: map[string]interface{}{}}},
		{"unrelated attributes", &types.EntityRecord{EntityID: "sensor.x", State: "23", Attributes: map[string]interface{}{"foo": "bar"}}},
		{"unknown domain", &types.EntityRecord{EntityID: "mystery.x", State: "odd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lean(tt.e)
			assert.Contains(t, got, "entity_id")
			assert.Contains(t, got, "state")
			assert.NotContains(t, got, "friendly_name")
		})
	}
}

func TestLeanAttributeOrder(t *testing.T) {
	e := &types.EntityRecord{
		EntityID: "climate.hall",
		State:    "heat",
		Attributes: map[string]interface{}{
			"temperature":         float64(21),
			"current_temperature": float64(19),
			"irrelevant":          true,
		},
	}
	// Table order, not map order: current_temperature precedes temperature.
	assert.Equal(t, []string{"current_temperature", "temperature"}, LeanAttributeOrder(e))
}

func TestFullReturnsRecordUnchanged(t *testing.T) {
	e := testEntity()
	assert.Same(t, e, Full(e))
}
