// Package dialect holds the message catalog that parameterizes the codec:
// per-id field layouts and CRC_EXTRA seeds. A Catalog is an immutable value
// built once at program start from a slice of MessageDef values — there is
// no import-time registration, so callers can assemble subset catalogs for
// tree-shaking simply by filtering that slice (SPEC_FULL.md §2, §9).
package dialect

import (
	"fmt"

	"github.com/kstaniek/mavlink-go/internal/wire"
)

// FieldDef describes one message field: its wire type, optional array
// length, and whether it is a v2-only extension field.
type FieldDef struct {
	Name      string
	Type      wire.Type
	ArrayLen  int // 0 for a scalar field, >=2 for an array
	Extension bool
}

// IsArray reports whether the field is an array (ArrayLen >= 2).
func (f FieldDef) IsArray() bool { return f.ArrayLen >= 2 }

// Size returns the field's full wire size: ElementSize(Type) * max(ArrayLen, 1).
func (f FieldDef) Size() int {
	n := f.ArrayLen
	if n < 1 {
		n = 1
	}
	return wire.ElementSize(f.Type) * n
}

// MessageDef describes one dialect message: its id, unique name, ordered
// field list (declaration order, non-extension fields first), and the
// CRC_EXTRA byte a generator computed from its field structure.
type MessageDef struct {
	ID       uint32
	Name     string
	Fields   []FieldDef
	CRCExtra byte
}

// Catalog is an immutable id/name-keyed view over a set of MessageDefs,
// plus the CRC_EXTRA table the CRC engine needs.
type Catalog struct {
	byID     map[uint32]*MessageDef
	byName   map[string]*MessageDef
	crcExtra map[uint32]byte
	ids      []uint32 // sorted ascending
}

// New builds a Catalog from msgs, validating the invariants of
// SPEC_FULL.md §2 (unique ids/names, non-extension fields precede
// extension fields in declaration order).
func New(msgs []MessageDef) (*Catalog, error) {
	cat := &Catalog{
		byID:     make(map[uint32]*MessageDef, len(msgs)),
		byName:   make(map[string]*MessageDef, len(msgs)),
		crcExtra: make(map[uint32]byte, len(msgs)),
	}
	for i := range msgs {
		m := msgs[i]
		if _, dup := cat.byID[m.ID]; dup {
			return nil, fmt.Errorf("dialect: duplicate message id %d (%s)", m.ID, m.Name)
		}
		if _, dup := cat.byName[m.Name]; dup {
			return nil, fmt.Errorf("dialect: duplicate message name %q", m.Name)
		}
		seenExtension := false
		for _, f := range m.Fields {
			if f.Extension {
				seenExtension = true
				continue
			}
			if seenExtension {
				return nil, fmt.Errorf("dialect: message %q: non-extension field %q follows an extension field", m.Name, f.Name)
			}
		}
		mc := m
		cat.byID[m.ID] = &mc
		cat.byName[m.Name] = &mc
		cat.crcExtra[m.ID] = m.CRCExtra
		cat.ids = append(cat.ids, m.ID)
	}
	for i := 1; i < len(cat.ids); i++ {
		for j := i; j > 0 && cat.ids[j-1] > cat.ids[j]; j-- {
			cat.ids[j-1], cat.ids[j] = cat.ids[j], cat.ids[j-1]
		}
	}
	return cat, nil
}

// ByID looks up a message definition by id.
func (c *Catalog) ByID(id uint32) (*MessageDef, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// ByName looks up a message definition by name.
func (c *Catalog) ByName(name string) (*MessageDef, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// CRCExtra returns the CRC_EXTRA seed for id.
func (c *Catalog) CRCExtra(id uint32) (byte, bool) {
	b, ok := c.crcExtra[id]
	return b, ok
}

// CRCTable returns the full id->crc_extra map, suitable for crc.Table.
func (c *Catalog) CRCTable() map[uint32]byte {
	out := make(map[uint32]byte, len(c.crcExtra))
	for k, v := range c.crcExtra {
		out[k] = v
	}
	return out
}

// SupportedIDs returns every message id in the catalog, sorted ascending.
func (c *Catalog) SupportedIDs() []uint32 {
	out := make([]uint32, len(c.ids))
	copy(out, c.ids)
	return out
}

// SupportedNames returns every message name in the catalog.
func (c *Catalog) SupportedNames() []string {
	out := make([]string, 0, len(c.byName))
	for name := range c.byName {
		out = append(out, name)
	}
	return out
}

// SupportsID reports whether id is in the catalog.
func (c *Catalog) SupportsID(id uint32) bool { _, ok := c.byID[id]; return ok }

// SupportsName reports whether name is in the catalog.
func (c *Catalog) SupportsName(name string) bool { _, ok := c.byName[name]; return ok }
