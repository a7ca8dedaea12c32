package wire

import (
	"math/big"
	"testing"
)

func TestElementSizeRanking(t *testing.T) {
	cases := []struct {
		t    Type
		size int
	}{
		{Uint8, 1}, {Int8, 1}, {Char, 1},
		{Uint16, 2}, {Int16, 2},
		{Uint32, 4}, {Int32, 4}, {Float, 4},
		{Uint64, 8}, {Int64, 8}, {Double, 8},
	}
	for _, c := range cases {
		if got := ElementSize(c.t); got != c.size {
			t.Errorf("ElementSize(%v) = %d, want %d", c.t, got, c.size)
		}
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	for _, name := range []string{"uint8_t", "int8_t", "uint16_t", "int16_t", "uint32_t", "int32_t", "uint64_t", "int64_t", "float", "double", "char"} {
		ty, ok := ParseType(name)
		if !ok {
			t.Fatalf("ParseType(%q) failed", name)
		}
		if ty.String() != name {
			t.Fatalf("Type(%v).String() = %q, want %q", ty, ty.String(), name)
		}
	}
	if _, ok := ParseType("bogus"); ok {
		t.Fatalf("expected ParseType(bogus) to fail")
	}
}

func TestScalarRoundTripUint32(t *testing.T) {
	buf := make([]byte, 4)
	EncodeScalar(Uint32, buf, uint32(12345))
	got := DecodeScalar(Uint32, buf)
	if got.(uint32) != 12345 {
		t.Fatalf("got %v", got)
	}
}

func TestScalarRoundTripFloat(t *testing.T) {
	buf := make([]byte, 4)
	EncodeScalar(Float, buf, float32(0.15))
	got := DecodeScalar(Float, buf).(float32)
	if got != float32(0.15) {
		t.Fatalf("got %v want 0.15", got)
	}
}

func TestScalarRoundTripUint64BigInt(t *testing.T) {
	buf := make([]byte, 8)
	want := new(big.Int).SetUint64(18446744073709551615) // max uint64
	EncodeScalar(Uint64, buf, want)
	got := DecodeScalar(Uint64, buf).(*big.Int)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestCharArrayDecodeStopsAtNUL(t *testing.T) {
	buf := []byte("RATE_PIT_P\x00\x00\x00\x00\x00\x00")
	got := DecodeCharArray(buf, 16)
	if got != "RATE_PIT_P" {
		t.Fatalf("got %q", got)
	}
}

func TestCharArrayEncodeTruncatesAndPads(t *testing.T) {
	buf := make([]byte, 6)
	EncodeCharArray(buf, 6, "ABC")
	if string(buf) != "ABC\x00\x00\x00" {
		t.Fatalf("got %q", buf)
	}
	buf2 := make([]byte, 3)
	EncodeCharArray(buf2, 3, "ABCDEF")
	if string(buf2) != "ABC" {
		t.Fatalf("got %q, want truncated ABC", buf2)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	buf := make([]byte, 4*3)
	EncodeArray(Uint32, buf, 3, []any{uint32(1), uint32(2), uint32(3)})
	got := DecodeArray(Uint32, buf, 3)
	for i, v := range got {
		if v.(uint32) != uint32(i+1) {
			t.Fatalf("index %d: got %v", i, v)
		}
	}
}

func TestArrayEncodePartialLeavesZeroPad(t *testing.T) {
	buf := make([]byte, 4*3)
	EncodeArray(Uint32, buf, 3, []any{uint32(9)})
	got := DecodeArray(Uint32, buf, 3)
	if got[0].(uint32) != 9 || got[1].(uint32) != 0 || got[2].(uint32) != 0 {
		t.Fatalf("got %v", got)
	}
}
