package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityRecordDomain(t *testing.T) {
	tests := []struct {
		name     string
		entityID string
		want     string
	}{
		{"simple", "light.living_room", "light"},
		{"nested object id", "sensor.kitchen.temp", "sensor"},
		{"no separator", "lightliving", ""},
		{"empty", "", ""},
		{"leading dot", ".odd", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &EntityRecord{EntityID: tt.entityID}
			assert.Equal(t, tt.want, e.Domain())
			// Domain() delegates to the shared helper; both must agree.
			assert.Equal(t, tt.want, DomainOf(tt.entityID))
		})
	}
}

func TestEntityRecordFriendlyName(t *testing.T) {
	e := &EntityRecord{
		EntityID:   "light.a",
		Attributes: map[string]interface{}{"friendly_name": "Lamp"},
	}
	name, ok := e.FriendlyName()
	assert.True(t, ok)
	assert.Equal(t, "Lamp", name)

	// Absent friendly_name must stay absent, not become "".
	e = &EntityRecord{EntityID: "light.a"}
	_, ok = e.FriendlyName()
	assert.False(t, ok)

	// Non-string friendly_name is treated as absent.
	e = &EntityRecord{
		EntityID:   "light.a",
		Attributes: map[string]interface{}{"friendly_name": 42},
	}
	_, ok = e.FriendlyName()
	assert.False(t, ok)
}

func TestEntityRecordDisplayName(t *testing.T) {
	e := &EntityRecord{
		EntityID:   "light.a",
		Attributes: map[string]interface{}{"friendly_name": "Lamp"},
	}
	assert.Equal(t, "Lamp", e.DisplayName())

	e = &EntityRecord{EntityID: "light.a"}
	assert.Equal(t, "light.a", e.DisplayName())
}

func TestEntityRecordValidate(t *testing.T) {
	valid := &EntityRecord{EntityID: "light.a", State: "on"}
	assert.NoError(t, valid.Validate())

	missing := &EntityRecord{State: "on"}
	assert.Error(t, missing.Validate())

	noDomain := &EntityRecord{EntityID: "nodomain"}
	assert.Error(t, noDomain.Validate())
}
