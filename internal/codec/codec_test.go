package codec

import (
	"reflect"
	"testing"

	"github.com/kstaniek/mavlink-go/internal/dialect"
	"github.com/kstaniek/mavlink-go/internal/dialect/common"
	"github.com/kstaniek/mavlink-go/internal/wire"
)

func fieldsByName(t *testing.T, name string) []dialect.FieldDef {
	t.Helper()
	for _, m := range common.Messages() {
		if m.Name == name {
			return m.Fields
		}
	}
	t.Fatalf("no message named %q", name)
	return nil
}

func TestWireOrderStable(t *testing.T) {
	fields := fieldsByName(t, "SYS_STATUS")
	a := WireOrder(fields)
	b := WireOrder(a)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("sorting twice changed order")
	}
}

func TestWireOrderElementSizeNotTotalSize(t *testing.T) {
	// A uint8_t[20] array (element size 1) must follow a uint32_t scalar
	// (element size 4), even though the array is much larger in total bytes.
	fields := []dialect.FieldDef{
		{Name: "big_array", Type: wire.Uint8, ArrayLen: 20},
		{Name: "scalar32", Type: wire.Uint32},
	}
	ordered := WireOrder(fields)
	if ordered[0].Name != "scalar32" || ordered[1].Name != "big_array" {
		t.Fatalf("ordered = %+v, want scalar32 before big_array", ordered)
	}
}

func TestWireOrderProtocolVersion(t *testing.T) {
	ordered := WireOrder(fieldsByName(t, "PROTOCOL_VERSION"))
	want := []string{"version", "min_version", "max_version", "spec_version_hash", "library_version_hash"}
	for i, name := range want {
		if ordered[i].Name != name {
			t.Fatalf("ordered[%d] = %s, want %s", i, ordered[i].Name, name)
		}
	}
}

func TestWireOrderParamValue(t *testing.T) {
	// S3: param_value(float), param_count(u16), param_index(u16),
	// param_id(char[16]), param_type(u8).
	ordered := WireOrder(fieldsByName(t, "PARAM_VALUE"))
	want := []string{"param_value", "param_count", "param_index", "param_id", "param_type"}
	for i, name := range want {
		if ordered[i].Name != name {
			t.Fatalf("ordered[%d] = %s, want %s", i, ordered[i].Name, name)
		}
	}
}

func TestEncodeDecodeHeartbeatRoundTrip(t *testing.T) {
	fields := fieldsByName(t, "HEARTBEAT")
	values := map[string]any{
		"type":            uint8(6),
		"autopilot":       uint8(8),
		"base_mode":       uint8(81),
		"custom_mode":     uint32(12345),
		"system_status":   uint8(4),
		"mavlink_version": uint8(3),
	}
	full := EncodePayload(values, fields)
	want := []byte{0x39, 0x30, 0x00, 0x00, 0x06, 0x08, 0x51, 0x04, 0x03}
	if !reflect.DeepEqual(full, want) {
		t.Fatalf("encoded = % X, want % X", full, want)
	}
	decoded := DecodePayload(full, fields)
	if decoded["type"].(uint8) != 6 || decoded["custom_mode"].(uint32) != 12345 {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestEncodeParamValue(t *testing.T) {
	fields := fieldsByName(t, "PARAM_VALUE")
	values := map[string]any{
		"param_id":    "RATE_PIT_P",
		"param_value": float32(0.15),
		"param_type":  uint8(9),
		"param_count": uint16(300),
		"param_index": uint16(42),
	}
	full := EncodePayload(values, fields)
	if len(full) != 25 {
		t.Fatalf("payload len = %d, want 25", len(full))
	}
	if string(full[8:24]) != "RATE_PIT_P\x00\x00\x00\x00\x00\x00" {
		t.Fatalf("param_id region = %q", full[8:24])
	}
	if full[24] != 9 {
		t.Fatalf("param_type byte = %d, want 9", full[24])
	}
}

func TestTruncateAllZeroExtensionsDropsToCoreSize(t *testing.T) {
	fields := fieldsByName(t, "HEARTBEAT")
	full := EncodePayload(map[string]any{}, fields)
	_, core := PayloadSize(WireOrder(fields))
	trimmed := Truncate(full, core)
	if len(trimmed) != core {
		t.Fatalf("len(trimmed) = %d, want core size %d", len(trimmed), core)
	}
}

func TestTruncateHeartbeatAllZeroKeepsAtLeastOneByte(t *testing.T) {
	// S4: HEARTBEAT has no extension fields, so its core size equals its
	// full size (9 bytes); truncation must never go below that, and in
	// particular never drop the first byte.
	fields := fieldsByName(t, "HEARTBEAT")
	full := EncodePayload(map[string]any{}, fields)
	_, core := PayloadSize(WireOrder(fields))
	trimmed := Truncate(full, core)
	if len(trimmed) < 1 {
		t.Fatalf("truncation dropped all bytes")
	}
	if len(trimmed) != len(full) {
		t.Fatalf("HEARTBEAT has no extensions; truncation should be a no-op, got %d want %d", len(trimmed), len(full))
	}
}

func TestTruncateSysStatusFirstExtensionOnly(t *testing.T) {
	// S4: SYS_STATUS with only the first extension uint32 non-zero
	// truncates to 35 bytes (31 core + 4 first extension).
	fields := fieldsByName(t, "SYS_STATUS")
	values := map[string]any{
		"onboard_control_sensors_present_extended": uint32(0xDEADBEEF),
	}
	full := EncodePayload(values, fields)
	_, core := PayloadSize(WireOrder(fields))
	if core != 31 {
		t.Fatalf("core size = %d, want 31", core)
	}
	trimmed := Truncate(full, core)
	if len(trimmed) != 35 {
		t.Fatalf("trimmed len = %d, want 35", len(trimmed))
	}
}

func TestDecodeTruncatedTailFillsDefaults(t *testing.T) {
	fields := fieldsByName(t, "SYS_STATUS")
	ordered := WireOrder(fields)
	_, core := PayloadSize(ordered)
	full := EncodePayload(map[string]any{"load": uint16(7)}, fields)
	truncated := full[:core] // simulate a v1-style payload with no extension bytes at all
	decoded := DecodePayload(truncated, fields)
	if decoded["load"].(uint16) != 7 {
		t.Fatalf("load = %v, want 7", decoded["load"])
	}
	ext, ok := decoded["onboard_control_sensors_present_extended"]
	if !ok {
		t.Fatalf("missing extension field in decoded map")
	}
	if ext.(uint32) != 0 {
		t.Fatalf("extension default = %v, want 0", ext)
	}
}

func TestEncodeNonCharArrayAbsentLeavesDefaultBuffer(t *testing.T) {
	fields := fieldsByName(t, "PROTOCOL_VERSION")
	full := EncodePayload(map[string]any{"version": uint16(1)}, fields)
	decoded := DecodePayload(full, fields)
	hash, ok := decoded["spec_version_hash"].([]any)
	if !ok {
		t.Fatalf("spec_version_hash not decoded as array: %T", decoded["spec_version_hash"])
	}
	if len(hash) != 8 {
		t.Fatalf("len(hash) = %d, want 8", len(hash))
	}
	for i, v := range hash {
		if v.(uint8) != 0 {
			t.Fatalf("hash[%d] = %v, want 0", i, v)
		}
	}
}
