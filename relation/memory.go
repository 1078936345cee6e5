// Package relation provides scan.Relation implementations.
//
// Memory holds Arrow record batches in memory and evaluates predicates with
// Arrow compute kernels. Open loads a file into a Memory relation through the
// codec registry. The duckdb subpackage scans DuckDB tables.
package relation

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/lazyscan/dtype"
	"github.com/hugr-lab/lazyscan/scan"
)

// DefaultBatchSize is the batch size used when a request does not set one.
const DefaultBatchSize = 64 * 1024

// Memory is an immutable in-memory relation.
type Memory struct {
	schema  *arrow.Schema
	dt      dtype.Struct
	batches []arrow.RecordBatch
	rows    int64
	mem     memory.Allocator
}

var _ scan.Relation = (*Memory)(nil)

// NewMemory returns a relation over batches, which must all have schema.
// The batches are retained; call Release to free them.
func NewMemory(schema *arrow.Schema, batches []arrow.RecordBatch, mem memory.Allocator) (*Memory, error) {
	dt, err := dtype.FromArrowSchema(schema)
	if err != nil {
		return nil, err
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	m := &Memory{schema: schema, dt: dt, mem: mem}
	for i, rec := range batches {
		if !rec.Schema().Equal(schema) {
			m.Release()
			return nil, fmt.Errorf("batch %d: schema %v does not match %v", i, rec.Schema(), schema)
		}
		rec.Retain()
		m.batches = append(m.batches, rec)
		m.rows += rec.NumRows()
	}
	return m, nil
}

// ReadAll drains reader into a Memory relation. The reader is not released.
func ReadAll(reader array.RecordReader, mem memory.Allocator) (*Memory, error) {
	var batches []arrow.RecordBatch
	defer func() {
		for _, rec := range batches {
			rec.Release()
		}
	}()

	for reader.Next() {
		rec := reader.RecordBatch()
		rec.Retain()
		batches = append(batches, rec)
	}
	if err := readerErr(reader); err != nil {
		return nil, err
	}
	return NewMemory(reader.Schema(), batches, mem)
}

// DType returns the relation schema.
func (m *Memory) DType() dtype.Struct { return m.dt }

// ArrowSchema returns the relation schema as stored.
func (m *Memory) ArrowSchema() *arrow.Schema { return m.schema }

// NumRows returns the total number of rows.
func (m *Memory) NumRows() int64 { return m.rows }

// Release frees the stored batches.
func (m *Memory) Release() {
	for _, rec := range m.batches {
		rec.Release()
	}
	m.batches = nil
}

// Scan implements scan.Relation.
func (m *Memory) Scan(ctx context.Context, req scan.Request) (array.RecordReader, error) {
	out, err := scan.ProjectSchema(m.schema, req.Projection)
	if err != nil {
		return nil, err
	}
	if err := scan.CheckPredicate(m.dt, req.Predicate); err != nil {
		return nil, err
	}

	batchSize := int64(req.BatchSize)
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	indices := make([]int, out.NumFields())
	for i, f := range out.Fields() {
		indices[i] = m.schema.FieldIndices(f.Name)[0]
	}

	batches := make([]arrow.RecordBatch, len(m.batches))
	for i, rec := range m.batches {
		rec.Retain()
		batches[i] = rec
	}

	return newReader(ctx, readerConfig{
		schema:    out,
		indices:   indices,
		predicate: req.Predicate,
		batches:   batches,
		batchSize: batchSize,
		mem:       m.mem,
	}), nil
}
