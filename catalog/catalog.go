// Package catalog holds the named relations a lazyscan server exposes.
//
// A Catalog is built once and is immutable afterwards, so lookups need no
// locking and are safe from any number of goroutines.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hugr-lab/lazyscan/scan"
)

var (
	// ErrRelationNotFound is returned by Lookup for an unknown name.
	ErrRelationNotFound = errors.New("relation not found")

	// ErrDuplicateRelation is returned when two entries share a name.
	ErrDuplicateRelation = errors.New("duplicate relation")

	// ErrInvalidEntry is returned for entries without a name or a source.
	ErrInvalidEntry = errors.New("invalid catalog entry")
)

// Entry is one named relation.
type Entry struct {
	// Name is the key clients use in tickets and descriptors.
	Name string

	// Comment is optional documentation shown in listings.
	Comment string

	// Source serves lazy scans of the relation.
	Source *scan.Source
}

// Catalog is an immutable set of named relations.
type Catalog struct {
	entries map[string]*Entry
	names   []string
}

// New returns a catalog of the given entries. Names must be non-empty and
// unique; every entry needs a source.
func New(entries ...*Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[string]*Entry, len(entries)),
		names:   make([]string, 0, len(entries)),
	}
	for i, e := range entries {
		if e == nil || e.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidEntry, i)
		}
		if e.Source == nil {
			return nil, fmt.Errorf("%w: %q has no source", ErrInvalidEntry, e.Name)
		}
		if _, ok := c.entries[e.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRelation, e.Name)
		}
		c.entries[e.Name] = e
		c.names = append(c.names, e.Name)
	}
	slices.Sort(c.names)
	return c, nil
}

// Lookup returns the entry with the given name.
func (c *Catalog) Lookup(name string) (*Entry, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRelationNotFound, name)
	}
	return e, nil
}

// Names returns the relation names in sorted order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// Entries returns all entries sorted by name.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, len(c.names))
	for i, name := range c.names {
		out[i] = c.entries[name]
	}
	return out
}

// Len returns the number of relations.
func (c *Catalog) Len() int { return len(c.names) }
