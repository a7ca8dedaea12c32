package wire

import (
	"encoding/binary"
	"math"
	"math/big"
)

// DecodeScalar reads one element of t from the front of buf, which must be
// exactly ElementSize(t) bytes (callers zero-pad truncated tails before
// calling this, per codec.DecodePayload).
func DecodeScalar(t Type, buf []byte) any {
	switch t {
	case Uint8:
		return buf[0]
	case Int8:
		return int8(buf[0])
	case Uint16:
		return binary.LittleEndian.Uint16(buf)
	case Int16:
		return int16(binary.LittleEndian.Uint16(buf))
	case Uint32:
		return binary.LittleEndian.Uint32(buf)
	case Int32:
		return int32(binary.LittleEndian.Uint32(buf))
	case Uint64:
		return new(big.Int).SetUint64(binary.LittleEndian.Uint64(buf))
	case Int64:
		return big.NewInt(int64(binary.LittleEndian.Uint64(buf)))
	case Float:
		return math.Float32frombits(binary.LittleEndian.Uint32(buf))
	case Double:
		return math.Float64frombits(binary.LittleEndian.Uint64(buf))
	case Char:
		return buf[0]
	default:
		return nil
	}
}

// EncodeScalar writes one element of t into the front of buf (which must be
// ElementSize(t) bytes), coercing v from any of the numeric Go types a
// caller might reasonably supply. It is a no-op (leaving buf's existing,
// zeroed bytes) when v cannot be coerced to t.
func EncodeScalar(t Type, buf []byte, v any) {
	switch t {
	case Uint8:
		if n, ok := toUint64(v); ok {
			buf[0] = byte(n)
		}
	case Int8:
		if n, ok := toInt64(v); ok {
			buf[0] = byte(int8(n))
		}
	case Uint16:
		if n, ok := toUint64(v); ok {
			binary.LittleEndian.PutUint16(buf, uint16(n))
		}
	case Int16:
		if n, ok := toInt64(v); ok {
			binary.LittleEndian.PutUint16(buf, uint16(int16(n)))
		}
	case Uint32:
		if n, ok := toUint64(v); ok {
			binary.LittleEndian.PutUint32(buf, uint32(n))
		}
	case Int32:
		if n, ok := toInt64(v); ok {
			binary.LittleEndian.PutUint32(buf, uint32(int32(n)))
		}
	case Uint64:
		if n, ok := toUint64(v); ok {
			binary.LittleEndian.PutUint64(buf, n)
		}
	case Int64:
		if n, ok := toInt64(v); ok {
			binary.LittleEndian.PutUint64(buf, uint64(n))
		}
	case Float:
		if f, ok := toFloat64(v); ok {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(f)))
		}
	case Double:
		if f, ok := toFloat64(v); ok {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
		}
	case Char:
		if n, ok := toUint64(v); ok {
			buf[0] = byte(n)
		}
	}
}

// Default returns the zero value for a bare scalar of type t (spec's
// "Defaults": 0 for numerics, a zero big.Int for 64-bit types, '\0' for
// char).
func Default(t Type) any {
	switch t {
	case Uint8:
		return uint8(0)
	case Int8:
		return int8(0)
	case Uint16:
		return uint16(0)
	case Int16:
		return int16(0)
	case Uint32:
		return uint32(0)
	case Int32:
		return int32(0)
	case Uint64:
		return new(big.Int)
	case Int64:
		return new(big.Int)
	case Float:
		return float32(0)
	case Double:
		return float64(0)
	case Char:
		return byte(0)
	default:
		return nil
	}
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case int:
		return uint64(n), true
	case int8:
		return uint64(n), true
	case int16:
		return uint64(n), true
	case int32:
		return uint64(n), true
	case int64:
		return uint64(n), true
	case *big.Int:
		if n == nil {
			return 0, true
		}
		return n.Uint64(), true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case *big.Int:
		if n == nil {
			return 0, true
		}
		return n.Int64(), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
