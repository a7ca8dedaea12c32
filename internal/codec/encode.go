package codec

import (
	"github.com/kstaniek/mavlink-go/internal/dialect"
	"github.com/kstaniek/mavlink-go/internal/wire"
)

// EncodePayload sorts fields to wire order, allocates a zeroed buffer of
// the full payload size, and writes each present field into it (an absent
// field keeps the buffer's zero bytes, which is exactly the type's
// default). The returned buffer is always the untruncated, full-size
// payload; callers that need MAVLink v2's trailing-zero-extension
// truncation call Truncate on the result.
func EncodePayload(values map[string]any, fields []dialect.FieldDef) []byte {
	ordered := WireOrder(fields)
	full, _ := PayloadSize(ordered)
	buf := make([]byte, full)

	offset := 0
	for _, f := range ordered {
		size := f.Size()
		v, present := values[f.Name]
		if present {
			encodeField(buf[offset:offset+size], f, v)
		}
		offset += size
	}
	return buf
}

func encodeField(dst []byte, f dialect.FieldDef, v any) {
	n := f.ArrayLen
	if n < 1 {
		n = 1
	}
	switch {
	case f.Type == wire.Char && f.IsArray():
		if s, ok := v.(string); ok {
			wire.EncodeCharArray(dst, n, s)
		}
	case f.Type == wire.Char:
		wire.EncodeScalar(wire.Char, dst, v)
	case f.IsArray():
		if vals, ok := v.([]any); ok {
			wire.EncodeArray(f.Type, dst, n, vals)
		}
	default:
		wire.EncodeScalar(f.Type, dst, v)
	}
}

// Truncate applies MAVLink v2's trailing-zero-extension rule to a full
// payload buffer produced by EncodePayload: scanning backward from the
// end toward coreSize, it drops any trailing run of zero bytes within the
// extension region, but never truncates below coreSize (the first byte of
// the payload is therefore never discarded, since coreSize is always >=1
// for any message with at least one core field).
func Truncate(full []byte, coreSize int) []byte {
	trimmed := len(full)
	for trimmed > coreSize && full[trimmed-1] == 0 {
		trimmed--
	}
	return full[:trimmed]
}
