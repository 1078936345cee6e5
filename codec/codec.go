// Package codec holds the process-wide registry of file codecs.
//
// A Codec decodes a file into Arrow record batches and encodes batches back
// into the same layout. Codecs register themselves once, usually from an init
// function, and are looked up by identifier or file extension on the decode
// path. The registry has no teardown.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Codec reads and writes one file layout.
type Codec interface {
	// ID returns the unique codec identifier, e.g. "arrow.stream".
	ID() string

	// Extensions returns the file name suffixes handled by the codec,
	// including the leading dot, e.g. ".arrows".
	Extensions() []string

	// Decode returns a reader over the batches stored in r.
	// The caller must release the reader.
	Decode(r io.Reader, mem memory.Allocator) (array.RecordReader, error)

	// Encode writes schema and batches to w.
	Encode(w io.Writer, schema *arrow.Schema, batches []arrow.RecordBatch) error
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Codec)
)

// Register makes a codec available by its ID and extensions.
// It panics if c is nil or its ID is already registered.
func Register(c Codec) {
	mu.Lock()
	defer mu.Unlock()
	if c == nil {
		panic("codec: Register codec is nil")
	}
	if _, dup := registry[c.ID()]; dup {
		panic("codec: Register called twice for codec " + c.ID())
	}
	registry[c.ID()] = c
}

// Lookup returns the codec registered under id.
func Lookup(id string) (Codec, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[id]
	return c, ok
}

// ForPath returns the codec whose extension is the longest suffix of path.
func ForPath(path string) (Codec, error) {
	name := strings.ToLower(filepath.Base(path))

	mu.RLock()
	defer mu.RUnlock()

	var (
		best    Codec
		bestLen int
	)
	for _, c := range registry {
		for _, ext := range c.Extensions() {
			if strings.HasSuffix(name, ext) && len(ext) > bestLen {
				best, bestLen = c, len(ext)
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCodec, path)
	}
	return best, nil
}

// IDs returns the registered codec identifiers in sorted order.
func IDs() []string {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
