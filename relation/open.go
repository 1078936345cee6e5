package relation

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/lazyscan/codec"
)

// Open reads the file at path into a Memory relation. The codec is chosen by
// file extension from the codec registry.
func Open(path string, mem memory.Allocator) (*Memory, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}
	return OpenWith(c, path, mem)
}

// OpenWith reads the file at path with the given codec.
func OpenWith(c codec.Codec, path string, mem memory.Allocator) (*Memory, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader, err := c.Decode(f, mem)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer reader.Release()

	m, err := ReadAll(reader, mem)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
