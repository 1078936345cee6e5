package catalog

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/lazyscan/relation"
	"github.com/hugr-lab/lazyscan/scan"
)

func newSource(t *testing.T) *scan.Source {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.PrimitiveTypes.Int64}}, nil)
	mem, err := relation.NewMemory(schema, nil, memory.DefaultAllocator)
	if err != nil {
		t.Fatalf("NewMemory error: %v", err)
	}
	src, err := scan.NewSource(mem)
	if err != nil {
		t.Fatalf("NewSource error: %v", err)
	}
	return src
}

func TestNewAndLookup(t *testing.T) {
	src := newSource(t)
	cat, err := New(
		&Entry{Name: "users", Source: src},
		&Entry{Name: "events", Comment: "click stream", Source: src},
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if cat.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cat.Len())
	}
	names := cat.Names()
	if len(names) != 2 || names[0] != "events" || names[1] != "users" {
		t.Errorf("Names() = %v, want [events users]", names)
	}

	e, err := cat.Lookup("events")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if e.Comment != "click stream" {
		t.Errorf("Comment = %q", e.Comment)
	}

	if _, err := cat.Lookup("missing"); !errors.Is(err, ErrRelationNotFound) {
		t.Errorf("expected ErrRelationNotFound, got %v", err)
	}

	entries := cat.Entries()
	if entries[0].Name != "events" || entries[1].Name != "users" {
		t.Errorf("Entries() not sorted: %s, %s", entries[0].Name, entries[1].Name)
	}
}

func TestNewInvalid(t *testing.T) {
	src := newSource(t)
	tests := []struct {
		name    string
		entries []*Entry
		wantErr error
	}{
		{"nil entry", []*Entry{nil}, ErrInvalidEntry},
		{"empty name", []*Entry{{Source: src}}, ErrInvalidEntry},
		{"no source", []*Entry{{Name: "a"}}, ErrInvalidEntry},
		{"duplicate", []*Entry{{Name: "a", Source: src}, {Name: "a", Source: src}}, ErrDuplicateRelation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.entries...); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEmptyCatalog(t *testing.T) {
	cat, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if cat.Len() != 0 || len(cat.Entries()) != 0 {
		t.Errorf("expected empty catalog")
	}
}
