package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// State is the lifecycle state of a Stream.
type State int

const (
	StateCreated State = iota
	StateSchemaNegotiated
	StatePredicateTranslated
	StatePredicateAbsent
	StateScanning
	StateSentinelEmitted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateSchemaNegotiated:
		return "SchemaNegotiated"
	case StatePredicateTranslated:
		return "PredicateTranslated"
	case StatePredicateAbsent:
		return "PredicateAbsent"
	case StateScanning:
		return "Scanning"
	case StateSentinelEmitted:
		return "SentinelEmitted"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stream is the lazy batch sequence of one bridged scan. It implements
// array.RecordReader. Real batches are conformed to the negotiated schema and
// are followed by exactly one zero-row sentinel batch; a relation error ends
// the stream early with Err set and no sentinel.
//
// A Stream is single-consumer. The relation reader is released when it is
// exhausted, when the row limit is reached, on error, or on Release.
type Stream struct {
	refCount atomic.Int64

	ctx    context.Context
	id     string
	name   string
	schema *arrow.Schema
	reader array.RecordReader
	mem    memory.Allocator
	logger *slog.Logger

	state     State
	history   []State
	remaining int64 // -1 means unlimited
	cur       arrow.RecordBatch
	err       error

	batches int
	rows    int64
}

type streamConfig struct {
	id      string
	name    string
	schema  *arrow.Schema
	reader  array.RecordReader
	nRows   int64
	history []State
	mem     memory.Allocator
	logger  *slog.Logger
}

func newStream(ctx context.Context, cfg streamConfig) *Stream {
	s := &Stream{
		ctx:       ctx,
		id:        cfg.id,
		name:      cfg.name,
		schema:    cfg.schema,
		reader:    cfg.reader,
		mem:       cfg.mem,
		logger:    cfg.logger,
		state:     cfg.history[len(cfg.history)-1],
		history:   cfg.history,
		remaining: cfg.nRows,
	}
	s.refCount.Store(1)
	return s
}

// ID returns the scan identifier used in logs.
func (s *Stream) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Stream) State() State { return s.state }

// History returns every state the scan has passed through, from
// StateCreated to the current one.
func (s *Stream) History() []State { return append([]State(nil), s.history...) }

func (s *Stream) setState(st State) {
	if s.state == st {
		return
	}
	s.state = st
	s.history = append(s.history, st)
}

// Schema returns the negotiated schema. Every batch has exactly this schema.
func (s *Stream) Schema() *arrow.Schema { return s.schema }

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error { return s.err }

// RecordBatch returns the current batch. It is valid until the next call to
// Next or Release.
func (s *Stream) RecordBatch() arrow.RecordBatch { return s.cur }

// Record returns the current batch.
func (s *Stream) Record() arrow.RecordBatch { return s.cur }

// Retain increases the reference count.
func (s *Stream) Retain() { s.refCount.Add(1) }

// Release decreases the reference count and frees all resources when it
// reaches zero.
func (s *Stream) Release() {
	if s.refCount.Add(-1) == 0 {
		s.releaseCurrent()
		s.closeReader()
		s.setState(StateClosed)
	}
}

// Next advances to the next batch.
func (s *Stream) Next() bool {
	s.releaseCurrent()

	switch s.state {
	case StateSentinelEmitted:
		s.setState(StateClosed)
		s.logger.Debug("Scan completed",
			"relation", s.name,
			"scan_id", s.id,
			"batches", s.batches,
			"rows", s.rows,
		)
		return false
	case StateClosed:
		return false
	}

	for s.reader != nil && s.remaining != 0 {
		if err := s.ctx.Err(); err != nil {
			return s.fail(err)
		}
		if !s.reader.Next() {
			if err := s.reader.Err(); err != nil {
				return s.fail(fmt.Errorf("relation scan: %w", err))
			}
			break
		}

		rec := s.reader.RecordBatch()
		if rec.NumRows() == 0 {
			continue
		}

		out, err := s.conform(rec)
		if err != nil {
			return s.fail(err)
		}
		if s.remaining > 0 && out.NumRows() > s.remaining {
			sliced := out.NewSlice(0, s.remaining)
			out.Release()
			out = sliced
		}
		if s.remaining > 0 {
			s.remaining -= out.NumRows()
		}

		s.cur = out
		s.setState(StateScanning)
		s.batches++
		s.rows += out.NumRows()
		s.logger.Debug("Scan batch",
			"relation", s.name,
			"scan_id", s.id,
			"batch", s.batches,
			"rows", out.NumRows(),
		)
		return true
	}

	s.closeReader()
	s.cur = s.sentinel()
	s.setState(StateSentinelEmitted)
	return true
}

func (s *Stream) fail(err error) bool {
	s.err = err
	s.closeReader()
	s.setState(StateClosed)
	s.logger.Debug("Scan failed",
		"relation", s.name,
		"scan_id", s.id,
		"batches", s.batches,
		"error", err,
	)
	return false
}

func (s *Stream) releaseCurrent() {
	if s.cur != nil {
		s.cur.Release()
		s.cur = nil
	}
}

func (s *Stream) closeReader() {
	if s.reader != nil {
		s.reader.Release()
		s.reader = nil
	}
}

// sentinel returns an empty batch with the negotiated schema.
func (s *Stream) sentinel() arrow.RecordBatch {
	b := array.NewRecordBuilder(s.mem, s.schema)
	defer b.Release()
	return b.NewRecordBatch()
}

// conform returns rec with exactly the negotiated schema. Columns are matched
// by name and cast when their physical type differs (for example large or
// view strings). The returned batch is owned by the caller.
func (s *Stream) conform(rec arrow.RecordBatch) (arrow.RecordBatch, error) {
	if rec.Schema().Equal(s.schema) {
		rec.Retain()
		return rec, nil
	}

	recSchema := rec.Schema()
	cols := make([]arrow.Array, 0, s.schema.NumFields())
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	for _, f := range s.schema.Fields() {
		idx := recSchema.FieldIndices(f.Name)
		if len(idx) == 0 {
			return nil, fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, f.Name)
		}
		col := rec.Column(idx[0])
		if arrow.TypeEqual(col.DataType(), f.Type) {
			col.Retain()
			cols = append(cols, col)
			continue
		}

		ctx := compute.WithAllocator(s.ctx, s.mem)
		cast, err := compute.CastArray(ctx, col, compute.SafeCastOptions(f.Type))
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: %v", ErrSchemaMismatch, f.Name, err)
		}
		cols = append(cols, cast)
	}

	return array.NewRecordBatch(s.schema, cols, rec.NumRows()), nil
}
