package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/lazyscan/internal/zstdframe"
)

// Identifiers of the built-in codecs.
const (
	ArrowStreamID     = "arrow.stream"
	ArrowFileID       = "arrow.file"
	ArrowStreamZstdID = "arrow.stream.zst"
)

func init() {
	Register(arrowStream{})
	Register(arrowFile{})
	Register(arrowStreamZstd{})
}

// arrowStream is the Arrow IPC streaming format.
type arrowStream struct{}

func (arrowStream) ID() string           { return ArrowStreamID }
func (arrowStream) Extensions() []string { return []string{".arrows"} }

func (arrowStream) Decode(r io.Reader, mem memory.Allocator) (array.RecordReader, error) {
	reader, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("open arrow stream: %w", err)
	}
	return reader, nil
}

func (arrowStream) Encode(w io.Writer, schema *arrow.Schema, batches []arrow.RecordBatch) error {
	return writeStream(w, schema, batches)
}

func writeStream(w io.Writer, schema *arrow.Schema, batches []arrow.RecordBatch) error {
	writer := ipc.NewWriter(w, ipc.WithSchema(schema))
	for i, rec := range batches {
		if err := writer.Write(rec); err != nil {
			writer.Close()
			return fmt.Errorf("write batch %d: %w", i, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close arrow stream: %w", err)
	}
	return nil
}

// arrowFile is the Arrow IPC file (Feather v2) format.
type arrowFile struct{}

func (arrowFile) ID() string           { return ArrowFileID }
func (arrowFile) Extensions() []string { return []string{".arrow", ".feather", ".ipc"} }

func (arrowFile) Decode(r io.Reader, mem memory.Allocator) (array.RecordReader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read arrow file: %w", err)
	}

	file, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("open arrow file: %w", err)
	}
	defer file.Close()

	batches := make([]arrow.RecordBatch, 0, file.NumRecords())
	defer func() {
		for _, rec := range batches {
			rec.Release()
		}
	}()
	for i := 0; i < file.NumRecords(); i++ {
		rec, err := file.Record(i)
		if err != nil {
			return nil, fmt.Errorf("read batch %d: %w", i, err)
		}
		rec.Retain()
		batches = append(batches, rec)
	}

	return array.NewRecordReader(file.Schema(), batches)
}

func (arrowFile) Encode(w io.Writer, schema *arrow.Schema, batches []arrow.RecordBatch) error {
	writer, err := ipc.NewFileWriter(w, ipc.WithSchema(schema))
	if err != nil {
		return fmt.Errorf("create arrow file writer: %w", err)
	}
	for i, rec := range batches {
		if err := writer.Write(rec); err != nil {
			writer.Close()
			return fmt.Errorf("write batch %d: %w", i, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close arrow file: %w", err)
	}
	return nil
}

// arrowStreamZstd is an Arrow IPC stream inside a zstd frame.
type arrowStreamZstd struct{}

func (arrowStreamZstd) ID() string           { return ArrowStreamZstdID }
func (arrowStreamZstd) Extensions() []string { return []string{".arrows.zst"} }

func (arrowStreamZstd) Decode(r io.Reader, mem memory.Allocator) (array.RecordReader, error) {
	dec, err := zstdframe.NewReader(r)
	if err != nil {
		return nil, err
	}
	reader, err := ipc.NewReader(dec, ipc.WithAllocator(mem))
	if err != nil {
		dec.Close()
		return nil, fmt.Errorf("open arrow stream: %w", err)
	}
	return &closingReader{RecordReader: reader, close: dec.Close}, nil
}

func (arrowStreamZstd) Encode(w io.Writer, schema *arrow.Schema, batches []arrow.RecordBatch) error {
	enc, err := zstdframe.NewWriter(w)
	if err != nil {
		return err
	}
	if err := writeStream(enc, schema, batches); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close zstd encoder: %w", err)
	}
	return nil
}

// closingReader runs close once the last reference is released.
type closingReader struct {
	array.RecordReader
	refs  int64
	close func()
}

func (r *closingReader) Retain() {
	r.refs++
	r.RecordReader.Retain()
}

func (r *closingReader) Release() {
	r.RecordReader.Release()
	if r.refs == 0 && r.close != nil {
		r.close()
		r.close = nil
		return
	}
	r.refs--
}
