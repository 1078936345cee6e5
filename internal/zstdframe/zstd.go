// Package zstdframe holds the ZStandard settings shared by the relation
// listing ticket and the arrow.stream.zst file codec, so frames written by
// one side are readable by the other.
package zstdframe

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// MaxDecodedSize bounds the output of Decompress. Listings are small; a
// larger frame is treated as corrupt.
const MaxDecodedSize = 64 << 20

var (
	sharedEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, encoderOptions()...)
	})
	sharedDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecodedSize))
	})
)

func encoderOptions() []zstd.EOption {
	return []zstd.EOption{zstd.WithEncoderLevel(zstd.SpeedDefault)}
}

// Compress returns data as a single zstd frame. Empty input stays empty.
// Safe for concurrent use.
func Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	enc, err := sharedEncoder()
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress reverses Compress. It also accepts the output of NewWriter.
func Decompress(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return []byte{}, nil
	}
	dec, err := sharedDecoder()
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	out, err := dec.DecodeAll(frame, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

// NewWriter returns a streaming encoder over w. The caller must Close it to
// flush the final block.
func NewWriter(w io.Writer) (*zstd.Encoder, error) {
	enc, err := zstd.NewWriter(w, encoderOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return enc, nil
}

// NewReader returns a streaming decoder over r. Decoding runs on the
// caller's goroutine; Close releases it.
func NewReader(r io.Reader) (*zstd.Decoder, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return dec, nil
}
