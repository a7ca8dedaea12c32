package frame

import (
	"bytes"
	"testing"

	"github.com/kstaniek/mavlink-go/internal/crc"
)

const heartbeatCRCExtra = 50

func heartbeatTable() crc.Table {
	return crc.Table{0: heartbeatCRCExtra}
}

// s1Frame returns the literal HEARTBEAT v1 frame of the S1
// scenario: seq=42, sys=1, comp=1, all fields per the scenario.
func s1Frame() []byte {
	payload := []byte{0x39, 0x30, 0x00, 0x00, 0x06, 0x08, 0x51, 0x04, 0x03}
	return CreateFrame(0, payload, 1, 1, 42, heartbeatCRCExtra, 1)
}

func TestCreateFrameV1MatchesLiteralBytes(t *testing.T) {
	got := s1Frame()
	want := []byte{0xFE, 0x09, 0x2A, 0x01, 0x01, 0x00, 0x39, 0x30, 0x00, 0x00, 0x06, 0x08, 0x51, 0x04, 0x03, 0x71, 0x0E}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % X\nwant % X", got, want)
	}
}

func TestParseFrameV1RoundTrip(t *testing.T) {
	wire := s1Frame()
	fr, consumed := ParseFrame(wire, heartbeatTable())
	if fr == nil {
		t.Fatalf("expected a frame")
	}
	if consumed != len(wire) {
		t.Fatalf("consumed = %d, want %d", consumed, len(wire))
	}
	if !fr.CRCOK {
		t.Fatalf("expected CRCOK")
	}
	if fr.ProtocolVersion != 1 || fr.MessageID != 0 || fr.SystemID != 1 || fr.ComponentID != 1 || fr.Sequence != 42 {
		t.Fatalf("unexpected header: %+v", fr)
	}
	if !bytes.Equal(fr.Payload, wire[6:15]) {
		t.Fatalf("payload = % X", fr.Payload)
	}
}

func TestParseFrameCRCCorruption(t *testing.T) {
	// S5: flip a bit in the first payload byte; frame still parses with
	// CRCOK = false and the payload still decodes.
	wire := s1Frame()
	wire[6] ^= 0x01 // offset 6 = first payload byte
	fr, consumed := ParseFrame(wire, heartbeatTable())
	if fr == nil {
		t.Fatalf("expected a frame even with bad crc")
	}
	if fr.CRCOK {
		t.Fatalf("expected CRCOK = false after bit flip")
	}
	if consumed != len(wire) {
		t.Fatalf("consumed = %d, want %d", consumed, len(wire))
	}
}

func TestParseFrameResyncSkipsNoise(t *testing.T) {
	// S6: noise bytes containing no magic, followed by a valid frame.
	noise := []byte{0x00, 0x00, 0xFF, 0x42}
	wire := append(append([]byte{}, noise...), s1Frame()...)
	fr, consumed := ParseFrame(wire, heartbeatTable())
	if fr == nil {
		t.Fatalf("expected a frame after noise")
	}
	if !fr.CRCOK {
		t.Fatalf("expected CRCOK = true")
	}
	if consumed != len(wire) {
		t.Fatalf("consumed = %d, want %d (noise + frame)", consumed, len(wire))
	}
}

func TestParseFrameMultiplexing(t *testing.T) {
	one := s1Frame()
	two := s1Frame()
	two[2] = 43 // different sequence so frames are distinguishable
	concat := append(append([]byte{}, one...), two...)

	fr1, n1 := ParseFrame(concat, heartbeatTable())
	if fr1 == nil || n1 != len(one) {
		t.Fatalf("first frame: fr=%v n=%d", fr1, n1)
	}
	rest := concat[n1:]
	fr2, n2 := ParseFrame(rest, heartbeatTable())
	if fr2 == nil || n2 != len(two) {
		t.Fatalf("second frame: fr=%v n=%d", fr2, n2)
	}
	if fr1.Sequence != 42 || fr2.Sequence != 43 {
		t.Fatalf("sequences out of order: %d then %d", fr1.Sequence, fr2.Sequence)
	}
}

func TestParseFrameTooShortReturnsZero(t *testing.T) {
	fr, consumed := ParseFrame([]byte{0xFE, 1, 2}, heartbeatTable())
	if fr != nil || consumed != 0 {
		t.Fatalf("expected (nil, 0) for too-short input, got (%v, %d)", fr, consumed)
	}
}

func TestParseFrameAllNoiseDiscardsEverything(t *testing.T) {
	noise := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	fr, consumed := ParseFrame(noise, heartbeatTable())
	if fr != nil || consumed != len(noise) {
		t.Fatalf("expected (nil, %d), got (%v, %d)", len(noise), fr, consumed)
	}
}

func TestParseFrameIncompleteWaitsForMoreData(t *testing.T) {
	wire := s1Frame()
	partial := wire[:len(wire)-3] // magic present but frame not fully arrived
	fr, consumed := ParseFrame(partial, heartbeatTable())
	if fr != nil {
		t.Fatalf("expected nil frame for incomplete input")
	}
	if consumed != 0 {
		t.Fatalf("consumed = %d, want 0 (magic is at offset 0, caller must retain it)", consumed)
	}
}

func TestParseFrameV2WithExtendedMessageID(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	wire := CreateFrame(300, payload, 1, 1, 7, 217, 2)
	if wire[0] != MagicV2 {
		t.Fatalf("expected v2 magic for message id > 255")
	}
	table := crc.Table{300: 217}
	fr, consumed := ParseFrame(wire, table)
	if fr == nil {
		t.Fatalf("expected a frame")
	}
	if fr.ProtocolVersion != 2 || fr.MessageID != 300 {
		t.Fatalf("unexpected header: %+v", fr)
	}
	if !fr.CRCOK {
		t.Fatalf("expected CRCOK")
	}
	if consumed != len(wire) {
		t.Fatalf("consumed = %d, want %d", consumed, len(wire))
	}
}

// buildSignedV2Frame hand-assembles a v2 frame with incompat_flags bit 0
// set (signed), since CreateFrame (like the engine) never produces one:
// this engine preserves but never produces signatures (spec §1).
func buildSignedV2Frame(payload []byte, crcExtra byte, sig []byte) []byte {
	buf := []byte{MagicV2, byte(len(payload)), 0x01, 0, 0, 1, 1, 0, 0, 0}
	buf = append(buf, payload...)
	sum := crc.Calculate(buf[1:], crcExtra)
	buf = append(buf, byte(sum), byte(sum>>8))
	return append(buf, sig...)
}

func TestParseFrameV2SignaturePreserved(t *testing.T) {
	payload := []byte{9, 9}
	sig := bytes.Repeat([]byte{0xAB}, 13)
	wire := buildSignedV2Frame(payload, 5, sig)

	table := crc.Table{0: 5}
	fr, consumed := ParseFrame(wire, table)
	if fr == nil {
		t.Fatalf("expected a frame")
	}
	if !fr.CRCOK {
		t.Fatalf("expected CRCOK")
	}
	if !bytes.Equal(fr.Signature, sig) {
		t.Fatalf("signature = % X, want % X", fr.Signature, sig)
	}
	if consumed != len(wire) {
		t.Fatalf("consumed = %d, want %d", consumed, len(wire))
	}
}

func TestParseFrameV2SignatureIncompleteWaits(t *testing.T) {
	payload := []byte{9, 9}
	wire := buildSignedV2Frame(payload, 5, bytes.Repeat([]byte{0xAB}, 5)) // short signature

	table := crc.Table{0: 5}
	fr, consumed := ParseFrame(wire, table)
	if fr != nil {
		t.Fatalf("expected nil frame while signature is incomplete")
	}
	if consumed != 0 {
		t.Fatalf("consumed = %d, want 0", consumed)
	}
}
