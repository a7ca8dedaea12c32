// Package wire implements MAVLink's little-endian primitive encoding: the
// scalar/array type system, element-size rules used by the wire-order sort,
// and the default values substituted for omitted or truncated fields.
package wire

import "fmt"

// Type enumerates the MAVLink primitive wire types.
type Type int

const (
	Uint8 Type = iota
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Uint64
	Int64
	Float
	Double
	Char
)

var typeNames = map[Type]string{
	Uint8:  "uint8_t",
	Int8:   "int8_t",
	Uint16: "uint16_t",
	Int16:  "int16_t",
	Uint32: "uint32_t",
	Int32:  "int32_t",
	Uint64: "uint64_t",
	Int64:  "int64_t",
	Float:  "float",
	Double: "double",
	Char:   "char",
}

var namesToType = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, n := range typeNames {
		m[n] = t
	}
	return m
}()

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("wire.Type(%d)", int(t))
}

// ParseType resolves a primitive type name (e.g. "uint16_t") to a Type.
// Callers strip any inline "[N]" array suffix before calling this.
func ParseType(name string) (Type, bool) {
	t, ok := namesToType[name]
	return t, ok
}

// ElementSize returns the wire size in bytes of a single element of t,
// ignoring any array length. This is the value the wire-order sort ranks
// fields by (SPEC_FULL.md §2, codec.WireOrder).
func ElementSize(t Type) int {
	switch t {
	case Uint8, Int8, Char:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float:
		return 4
	case Uint64, Int64, Double:
		return 8
	default:
		return 0
	}
}
