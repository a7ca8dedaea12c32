// Package common models the output shape of a MAVLink XML-to-catalog
// generator (an external collaborator per SPEC_FULL.md §2/§4.2 of
// spec.md) for a representative slice of the `common.xml` dialect: enough
// messages to exercise every wire-order, truncation, and array rule the
// engine implements. A real generator would emit the full dialect; this
// hand-authored slice stands in for its output.
package common

import (
	"github.com/kstaniek/mavlink-go/internal/dialect"
	"github.com/kstaniek/mavlink-go/internal/wire"
)

// Messages returns the MessageDef slice for this dialect slice, in the
// shape a generator would produce. Callers pass it (or a filtered subset)
// to dialect.New to build an immutable Catalog.
func Messages() []dialect.MessageDef {
	return []dialect.MessageDef{
		heartbeat,
		sysStatus,
		paramValue,
		protocolVersion,
		attitude,
		gpsRawInt,
	}
}

var heartbeat = dialect.MessageDef{
	ID:       0,
	Name:     "HEARTBEAT",
	CRCExtra: 50,
	Fields: []dialect.FieldDef{
		{Name: "type", Type: wire.Uint8},
		{Name: "autopilot", Type: wire.Uint8},
		{Name: "base_mode", Type: wire.Uint8},
		{Name: "custom_mode", Type: wire.Uint32},
		{Name: "system_status", Type: wire.Uint8},
		{Name: "mavlink_version", Type: wire.Uint8},
	},
}

var sysStatus = dialect.MessageDef{
	ID:       1,
	Name:     "SYS_STATUS",
	CRCExtra: 124,
	Fields: []dialect.FieldDef{
		{Name: "onboard_control_sensors_present", Type: wire.Uint32},
		{Name: "onboard_control_sensors_enabled", Type: wire.Uint32},
		{Name: "onboard_control_sensors_health", Type: wire.Uint32},
		{Name: "load", Type: wire.Uint16},
		{Name: "voltage_battery", Type: wire.Uint16},
		{Name: "current_battery", Type: wire.Int16},
		{Name: "battery_remaining", Type: wire.Int8},
		{Name: "drop_rate_comm", Type: wire.Uint16},
		{Name: "errors_comm", Type: wire.Uint16},
		{Name: "errors_count1", Type: wire.Uint16},
		{Name: "errors_count2", Type: wire.Uint16},
		{Name: "errors_count3", Type: wire.Uint16},
		{Name: "errors_count4", Type: wire.Uint16},
		{Name: "onboard_control_sensors_present_extended", Type: wire.Uint32, Extension: true},
		{Name: "onboard_control_sensors_enabled_extended", Type: wire.Uint32, Extension: true},
		{Name: "onboard_control_sensors_health_extended", Type: wire.Uint32, Extension: true},
	},
}

var paramValue = dialect.MessageDef{
	ID:       22,
	Name:     "PARAM_VALUE",
	CRCExtra: 220,
	Fields: []dialect.FieldDef{
		{Name: "param_id", Type: wire.Char, ArrayLen: 16},
		{Name: "param_value", Type: wire.Float},
		{Name: "param_type", Type: wire.Uint8},
		{Name: "param_count", Type: wire.Uint16},
		{Name: "param_index", Type: wire.Uint16},
	},
}

var protocolVersion = dialect.MessageDef{
	ID:       300,
	Name:     "PROTOCOL_VERSION",
	CRCExtra: 217,
	Fields: []dialect.FieldDef{
		{Name: "version", Type: wire.Uint16},
		{Name: "min_version", Type: wire.Uint16},
		{Name: "max_version", Type: wire.Uint16},
		{Name: "spec_version_hash", Type: wire.Uint8, ArrayLen: 8},
		{Name: "library_version_hash", Type: wire.Uint8, ArrayLen: 8},
	},
}

var attitude = dialect.MessageDef{
	ID:       30,
	Name:     "ATTITUDE",
	CRCExtra: 39,
	Fields: []dialect.FieldDef{
		{Name: "time_boot_ms", Type: wire.Uint32},
		{Name: "roll", Type: wire.Float},
		{Name: "pitch", Type: wire.Float},
		{Name: "yaw", Type: wire.Float},
		{Name: "rollspeed", Type: wire.Float},
		{Name: "pitchspeed", Type: wire.Float},
		{Name: "yawspeed", Type: wire.Float},
	},
}

var gpsRawInt = dialect.MessageDef{
	ID:       24,
	Name:     "GPS_RAW_INT",
	CRCExtra: 24,
	Fields: []dialect.FieldDef{
		{Name: "time_usec", Type: wire.Uint64},
		{Name: "fix_type", Type: wire.Uint8},
		{Name: "lat", Type: wire.Int32},
		{Name: "lon", Type: wire.Int32},
		{Name: "alt", Type: wire.Int32},
		{Name: "eph", Type: wire.Uint16},
		{Name: "epv", Type: wire.Uint16},
		{Name: "vel", Type: wire.Uint16},
		{Name: "cog", Type: wire.Uint16},
		{Name: "satellites_visible", Type: wire.Uint8},
		{Name: "alt_ellipsoid", Type: wire.Int32, Extension: true},
		{Name: "h_acc", Type: wire.Uint32, Extension: true},
		{Name: "v_acc", Type: wire.Uint32, Extension: true},
		{Name: "vel_acc", Type: wire.Uint32, Extension: true},
		{Name: "hdg_acc", Type: wire.Uint32, Extension: true},
		{Name: "yaw", Type: wire.Uint16, Extension: true},
	},
}
