package projection

// DomainAttributes maps an entity domain to the ordered set of
// attributes considered important for that domain. The lean projection
// appends these, in table order, after the always-present fields.
// Domains not listed here have an empty important-attribute set.
//
// This is build-time configuration data, consulted only by the
// projection engine.
var DomainAttributes = map[string][]string{
	"light": {
		"brightness",
		"color_temp",
		"rgb_color",
		"color_mode",
		"supported_color_modes",
	},
	"switch": {
		"device_class",
	},
	"binary_sensor": {
		"device_class",
	},
	"sensor": {
		"device_class",
		"unit_of_measurement",
		"state_class",
	},
	"climate": {
		"current_temperature",
		"temperature",
		"hvac_action",
		"hvac_modes",
		"fan_mode",
		"humidity",
	},
	"media_player": {
		"media_title",
		"media_artist",
		"source",
		"volume_level",
		"media_content_type",
	},
	"cover": {
		"current_position",
		"current_tilt_position",
		"device_class",
	},
	"fan": {
		"percentage",
		"preset_mode",
		"oscillating",
	},
	"camera": {
		"entity_picture",
		"motion_detection",
	},
	"automation": {
		"last_triggered",
		"mode",
	},
	"script": {
		"last_triggered",
		"mode",
	},
	"vacuum": {
		"battery_level",
		"fan_speed",
		"status",
	},
	"lock": {
		"device_class",
	},
	"weather": {
		"temperature",
		"humidity",
		"pressure",
		"wind_speed",
	},
	"person": {
		"source",
		"latitude",
		"longitude",
	},
	"device_tracker": {
		"source_type",
		"battery_level",
	},
	"alarm_control_panel": {
		"code_format",
		"changed_by",
	},
	"timer": {
		"duration",
		"remaining",
	},
	"zone": {
		"latitude",
		"longitude",
		"radius",
	},
}

// ImportantAttributes returns the important-attribute list for a
// domain, or nil when the domain is not in the table.
func ImportantAttributes(domain string) []string {
	return DomainAttributes[domain]
}
