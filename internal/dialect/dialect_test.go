package dialect

import (
	"testing"

	"github.com/kstaniek/mavlink-go/internal/wire"
)

func TestNewRejectsDuplicateID(t *testing.T) {
	_, err := New([]MessageDef{
		{ID: 1, Name: "A"},
		{ID: 1, Name: "B"},
	})
	if err == nil {
		t.Fatalf("expected error for duplicate id")
	}
}

func TestNewRejectsDuplicateName(t *testing.T) {
	_, err := New([]MessageDef{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "A"},
	})
	if err == nil {
		t.Fatalf("expected error for duplicate name")
	}
}

func TestNewRejectsExtensionBeforeCore(t *testing.T) {
	_, err := New([]MessageDef{
		{ID: 1, Name: "A", Fields: []FieldDef{
			{Name: "ext", Type: wire.Uint8, Extension: true},
			{Name: "core", Type: wire.Uint8},
		}},
	})
	if err == nil {
		t.Fatalf("expected error for core field following extension field")
	}
}

func TestCatalogLookupsAndSortedIDs(t *testing.T) {
	cat, err := New([]MessageDef{
		{ID: 5, Name: "FIVE", CRCExtra: 7},
		{ID: 1, Name: "ONE", CRCExtra: 9},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ids := cat.SupportedIDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 5 {
		t.Fatalf("SupportedIDs = %v, want [1 5]", ids)
	}
	if !cat.SupportsID(1) || !cat.SupportsName("FIVE") {
		t.Fatalf("expected lookups to succeed")
	}
	if cat.SupportsID(99) || cat.SupportsName("MISSING") {
		t.Fatalf("expected lookups for absent entries to fail")
	}
	extra, ok := cat.CRCExtra(5)
	if !ok || extra != 7 {
		t.Fatalf("CRCExtra(5) = %d,%v want 7,true", extra, ok)
	}
}

func TestFieldSize(t *testing.T) {
	scalar := FieldDef{Type: wire.Uint32}
	if scalar.Size() != 4 {
		t.Fatalf("scalar size = %d, want 4", scalar.Size())
	}
	arr := FieldDef{Type: wire.Uint8, ArrayLen: 20}
	if arr.Size() != 20 {
		t.Fatalf("array size = %d, want 20", arr.Size())
	}
	if !arr.IsArray() || scalar.IsArray() {
		t.Fatalf("IsArray mismatch")
	}
}
