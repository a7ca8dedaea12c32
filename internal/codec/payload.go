// Package codec sorts a message's fields into wire order and encodes or
// decodes payload bytes against that order, including MAVLink v2's
// trailing-zero extension truncation (SPEC_FULL.md §2).
package codec

import (
	"github.com/kstaniek/mavlink-go/internal/dialect"
	"github.com/kstaniek/mavlink-go/internal/wire"
)

// WireOrder partitions fields into core (non-extension) and extension,
// stably sorts core by descending element size (array fields rank by
// their *element* size, not their total size), and appends extension
// fields in declaration order. The result is the order every MAVLink
// endpoint reads and writes the payload in.
func WireOrder(fields []dialect.FieldDef) []dialect.FieldDef {
	var core, ext []dialect.FieldDef
	for _, f := range fields {
		if f.Extension {
			ext = append(ext, f)
		} else {
			core = append(core, f)
		}
	}
	// Stable insertion sort: field lists are short (MAVLink caps a message
	// at 255 payload bytes), so O(n^2) is plenty and keeps the stability
	// guarantee obvious by inspection.
	for i := 1; i < len(core); i++ {
		j := i
		for j > 0 && wire.ElementSize(core[j-1].Type) < wire.ElementSize(core[j].Type) {
			core[j-1], core[j] = core[j], core[j-1]
			j--
		}
	}
	out := make([]dialect.FieldDef, 0, len(core)+len(ext))
	out = append(out, core...)
	out = append(out, ext...)
	return out
}

// PayloadSize returns the full payload size (every field) and the core
// payload size (non-extension fields only) for fields, in declaration
// order's field set (order does not affect the sum).
func PayloadSize(fields []dialect.FieldDef) (full, core int) {
	for _, f := range fields {
		sz := f.Size()
		full += sz
		if !f.Extension {
			core += sz
		}
	}
	return full, core
}
