package crc

import "testing"

func TestCalculateHeartbeatV1(t *testing.T) {
	// S1 scenario: HEARTBEAT v1, seq=42, sys=1, comp=1.
	// Header (without magic) + payload, CRC_EXTRA for HEARTBEAT is 50.
	data := []byte{
		0x09,             // length
		0x2A,             // sequence
		0x01,             // system_id
		0x01,             // component_id
		0x00,             // message_id
		0x39, 0x30, 0x00, 0x00, // custom_mode
		0x06, // type
		0x08, // autopilot
		0x51, // base_mode
		0x04, // system_status
		0x03, // mavlink_version
	}
	got := Calculate(data, 50)
	want := uint16(0x0E71)
	if got != want {
		t.Fatalf("crc = %#04x, want %#04x", got, want)
	}
}

func TestValidateDetectsBitFlip(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	crc := Calculate(data, 10)
	if !Validate(data, 10, crc) {
		t.Fatalf("expected valid")
	}
	data[0] ^= 0x01
	if Validate(data, 10, crc) {
		t.Fatalf("expected bit flip to invalidate checksum")
	}
}

func TestValidateWithTableUnknownID(t *testing.T) {
	table := Table{1: 10}
	if ValidateWithTable([]byte{1, 2, 3}, 99, 0, table) {
		t.Fatalf("expected false for unknown id")
	}
}

func TestValidateWithTableKnownID(t *testing.T) {
	data := []byte{1, 2, 3}
	extra := byte(7)
	crc := Calculate(data, extra)
	table := Table{42: extra}
	if !ValidateWithTable(data, 42, crc, table) {
		t.Fatalf("expected true for matching crc")
	}
}
