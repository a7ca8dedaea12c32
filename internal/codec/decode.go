package codec

import (
	"github.com/kstaniek/mavlink-go/internal/dialect"
	"github.com/kstaniek/mavlink-go/internal/wire"
)

// DecodePayload decodes data against fields (sorted to wire order first)
// and returns a map from field name to decoded value. Every declared field
// gets an entry: a v2 truncated tail is transparently filled with the
// type's default value, per spec.
func DecodePayload(data []byte, fields []dialect.FieldDef) map[string]any {
	ordered := WireOrder(fields)
	out := make(map[string]any, len(ordered))
	offset := 0
	for _, f := range ordered {
		var consumed int
		out[f.Name], consumed = decodeField(data, offset, f)
		offset += consumed
	}
	return out
}

// decodeField decodes f starting at offset and returns the value plus the
// number of input bytes it consumed (0 when the field is entirely beyond
// the end of data).
func decodeField(data []byte, offset int, f dialect.FieldDef) (any, int) {
	n := f.ArrayLen
	if n < 1 {
		n = 1
	}
	avail := len(data) - offset
	if avail <= 0 {
		return defaultValue(f), 0
	}

	size := f.Size()
	take := avail
	if take > size {
		take = size
	}
	scratch := make([]byte, size)
	copy(scratch, data[offset:offset+take])

	switch {
	case f.Type == wire.Char && f.IsArray():
		return wire.DecodeCharArray(scratch, n), take
	case f.Type == wire.Char:
		return wire.DecodeScalar(wire.Char, scratch), take
	case f.IsArray():
		return wire.DecodeArray(f.Type, scratch, n), take
	default:
		return wire.DecodeScalar(f.Type, scratch), take
	}
}

// defaultValue returns the "field entirely absent" default for f, per
// spec's Defaults table: 0/0n/'\0' for scalars, "" for char[N], and an
// empty (not zero-padded) sequence for non-char arrays.
func defaultValue(f dialect.FieldDef) any {
	switch {
	case f.Type == wire.Char && f.IsArray():
		return ""
	case f.Type == wire.Char:
		return byte(0)
	case f.IsArray():
		return []any{}
	default:
		return wire.Default(f.Type)
	}
}
