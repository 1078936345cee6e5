package lazyscan

import (
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/lazyscan/catalog"
	"github.com/hugr-lab/lazyscan/scan"
)

// RelationDef defines one relation of a catalog.
// Used with CatalogBuilder.Relation().
type RelationDef struct {
	// Name is the relation name used in tickets and descriptors.
	// REQUIRED: MUST be non-empty and unique within the catalog.
	Name string

	// Comment is optional relation documentation.
	// OPTIONAL: Empty string if no comment.
	Comment string

	// Relation serves the scans.
	// REQUIRED: MUST NOT be nil.
	Relation scan.Relation
}

// CatalogBuilder builds immutable catalogs using a fluent API.
// Not thread-safe - use only during initialization.
type CatalogBuilder struct {
	relations []RelationDef
	logger    *slog.Logger
	allocator memory.Allocator
	built     bool
}

// NewCatalogBuilder creates a new fluent catalog builder.
//
// Example:
//
//	cat, err := lazyscan.NewCatalogBuilder().
//	    Relation(lazyscan.RelationDef{Name: "events", Relation: events}).
//	    Relation(lazyscan.RelationDef{Name: "users", Relation: users}).
//	    Build()
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{}
}

// Relation adds a relation definition.
func (cb *CatalogBuilder) Relation(def RelationDef) *CatalogBuilder {
	cb.relations = append(cb.relations, def)
	return cb
}

// Logger sets the logger handed to every scan source.
func (cb *CatalogBuilder) Logger(logger *slog.Logger) *CatalogBuilder {
	cb.logger = logger
	return cb
}

// Allocator sets the allocator handed to every scan source.
func (cb *CatalogBuilder) Allocator(allocator memory.Allocator) *CatalogBuilder {
	cb.allocator = allocator
	return cb
}

// Build validates the definitions and returns the catalog.
// A builder can be built only once.
func (cb *CatalogBuilder) Build() (*catalog.Catalog, error) {
	if cb.built {
		return nil, fmt.Errorf("catalog already built")
	}

	seenNames := make(map[string]bool)
	entries := make([]*catalog.Entry, 0, len(cb.relations))
	for _, def := range cb.relations {
		if def.Name == "" {
			return nil, fmt.Errorf("relation name cannot be empty")
		}
		if seenNames[def.Name] {
			return nil, fmt.Errorf("duplicate relation name: %s", def.Name)
		}
		seenNames[def.Name] = true

		if def.Relation == nil {
			return nil, fmt.Errorf("relation %s has nil relation", def.Name)
		}

		src, err := scan.NewSource(def.Relation,
			scan.WithName(def.Name),
			scan.WithLogger(cb.logger),
			scan.WithAllocator(cb.allocator),
		)
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", def.Name, err)
		}
		entries = append(entries, &catalog.Entry{Name: def.Name, Comment: def.Comment, Source: src})
	}

	cb.built = true
	return catalog.New(entries...)
}
