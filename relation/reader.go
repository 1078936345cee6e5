package relation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/lazyscan/expr"
)

// reader filters, projects and re-batches stored batches lazily. Every batch
// but the last holds exactly batchSize rows.
type reader struct {
	refCount atomic.Int64

	ctx       context.Context
	schema    *arrow.Schema
	indices   []int
	predicate expr.Expression
	eval      evaluator

	batches   []arrow.RecordBatch
	next      int
	batchSize int64
	mem       memory.Allocator

	pending     []arrow.RecordBatch
	pendingRows int64

	cur arrow.RecordBatch
	err error
}

type readerConfig struct {
	schema    *arrow.Schema
	indices   []int
	predicate expr.Expression
	batches   []arrow.RecordBatch
	batchSize int64
	mem       memory.Allocator
}

func newReader(ctx context.Context, cfg readerConfig) *reader {
	r := &reader{
		ctx:       compute.WithAllocator(ctx, cfg.mem),
		schema:    cfg.schema,
		indices:   cfg.indices,
		predicate: cfg.predicate,
		eval:      evaluator{mem: cfg.mem},
		batches:   cfg.batches,
		batchSize: cfg.batchSize,
		mem:       cfg.mem,
	}
	r.refCount.Store(1)
	return r
}

func (r *reader) Schema() *arrow.Schema          { return r.schema }
func (r *reader) Err() error                     { return r.err }
func (r *reader) RecordBatch() arrow.RecordBatch { return r.cur }
func (r *reader) Record() arrow.RecordBatch      { return r.cur }
func (r *reader) Retain()                        { r.refCount.Add(1) }

func (r *reader) Release() {
	if r.refCount.Add(-1) == 0 {
		r.releaseCurrent()
		for _, rec := range r.pending {
			rec.Release()
		}
		r.pending = nil
		for _, rec := range r.batches[r.next:] {
			rec.Release()
		}
		r.batches = nil
		r.next = 0
	}
}

func (r *reader) Next() bool {
	r.releaseCurrent()
	if r.err != nil {
		return false
	}

	for r.pendingRows < r.batchSize && r.next < len(r.batches) {
		if err := r.ctx.Err(); err != nil {
			r.err = err
			return false
		}

		rec := r.batches[r.next]
		r.batches[r.next] = nil
		r.next++

		out, err := r.process(rec)
		rec.Release()
		if err != nil {
			r.err = err
			return false
		}
		if out.NumRows() == 0 {
			out.Release()
			continue
		}
		r.pending = append(r.pending, out)
		r.pendingRows += out.NumRows()
	}

	if r.pendingRows == 0 {
		return false
	}

	cur, err := r.take(min(r.batchSize, r.pendingRows))
	if err != nil {
		r.err = err
		return false
	}
	r.cur = cur
	return true
}

func (r *reader) releaseCurrent() {
	if r.cur != nil {
		r.cur.Release()
		r.cur = nil
	}
}

// process filters rec with the predicate and projects the output columns.
func (r *reader) process(rec arrow.RecordBatch) (arrow.RecordBatch, error) {
	filtered := rec
	if r.predicate != nil {
		var err error
		filtered, err = r.eval.filter(r.ctx, r.predicate, rec)
		if err != nil {
			return nil, err
		}
		defer filtered.Release()
	}

	cols := make([]arrow.Array, len(r.indices))
	for i, idx := range r.indices {
		cols[i] = filtered.Column(idx)
	}
	return array.NewRecordBatch(r.schema, cols, filtered.NumRows()), nil
}

// take removes the first n pending rows and returns them as one batch.
func (r *reader) take(n int64) (arrow.RecordBatch, error) {
	var parts []arrow.RecordBatch
	for need := n; need > 0; {
		head := r.pending[0]
		if head.NumRows() <= need {
			parts = append(parts, head)
			r.pending = r.pending[1:]
			need -= head.NumRows()
			continue
		}
		parts = append(parts, head.NewSlice(0, need))
		r.pending[0] = head.NewSlice(need, head.NumRows())
		head.Release()
		need = 0
	}
	r.pendingRows -= n

	if len(parts) == 1 {
		return parts[0], nil
	}
	defer func() {
		for _, p := range parts {
			p.Release()
		}
	}()

	cols := make([]arrow.Array, r.schema.NumFields())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i := range cols {
		arrs := make([]arrow.Array, len(parts))
		for j, p := range parts {
			arrs[j] = p.Column(i)
		}
		col, err := array.Concatenate(arrs, r.mem)
		if err != nil {
			return nil, fmt.Errorf("concatenate column %s: %w", r.schema.Field(i).Name, err)
		}
		cols[i] = col
	}
	return array.NewRecordBatch(r.schema, cols, n), nil
}

// readerErr returns the reader error, treating io.EOF as a clean end.
func readerErr(rr array.RecordReader) error {
	if err := rr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
