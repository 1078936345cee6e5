package duckdb

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// rowReader converts sql.Rows into record batches of at most batchSize rows.
// The driver's Arrow reader needs the duckdb_arrow build tag; this path
// builds without it and only handles column types with a scalar sql mapping.
type rowReader struct {
	refCount atomic.Int64

	rows      *sql.Rows
	schema    *arrow.Schema
	batchSize int64
	mem       memory.Allocator

	cur arrow.RecordBatch
	err error
}

func newRowReader(rows *sql.Rows, schema *arrow.Schema, batchSize int64, mem memory.Allocator) *rowReader {
	r := &rowReader{rows: rows, schema: schema, batchSize: batchSize, mem: mem}
	r.refCount.Store(1)
	return r
}

func (r *rowReader) Schema() *arrow.Schema          { return r.schema }
func (r *rowReader) Err() error                     { return r.err }
func (r *rowReader) RecordBatch() arrow.RecordBatch { return r.cur }
func (r *rowReader) Record() arrow.RecordBatch      { return r.cur }
func (r *rowReader) Retain()                        { r.refCount.Add(1) }

func (r *rowReader) Release() {
	if r.refCount.Add(-1) == 0 {
		r.releaseCurrent()
		r.close()
	}
}

func (r *rowReader) Next() bool {
	r.releaseCurrent()
	if r.rows == nil {
		return false
	}

	rec, err := r.readBatch()
	if err != nil {
		r.err = err
		r.close()
		return false
	}
	if rec == nil {
		r.close()
		return false
	}
	r.cur = rec
	return true
}

// readBatch reads up to batchSize rows. It returns nil at the end of rows.
func (r *rowReader) readBatch() (arrow.RecordBatch, error) {
	b := array.NewRecordBuilder(r.mem, r.schema)
	defer b.Release()

	values := make([]any, max(r.schema.NumFields(), 1))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}

	var n int64
	for n < r.batchSize && r.rows.Next() {
		if err := r.rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i := 0; i < r.schema.NumFields(); i++ {
			if err := appendValue(b.Field(i), values[i]); err != nil {
				return nil, fmt.Errorf("column %s: %w", r.schema.Field(i).Name, err)
			}
		}
		n++
	}
	if err := r.rows.Err(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	if r.schema.NumFields() == 0 {
		return array.NewRecordBatch(r.schema, nil, n), nil
	}
	return b.NewRecordBatch(), nil
}

func (r *rowReader) releaseCurrent() {
	if r.cur != nil {
		r.cur.Release()
		r.cur = nil
	}
}

func (r *rowReader) close() {
	if r.rows != nil {
		r.rows.Close()
		r.rows = nil
	}
}

// appendValue appends a value produced by the driver to b.
func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch b := b.(type) {
	case *array.BooleanBuilder:
		x, ok := v.(bool)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(x)
	case *array.Int8Builder:
		x, ok := toInt64(v)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(int8(x))
	case *array.Int16Builder:
		x, ok := toInt64(v)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(int16(x))
	case *array.Int32Builder:
		x, ok := toInt64(v)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(int32(x))
	case *array.Int64Builder:
		x, ok := toInt64(v)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(x)
	case *array.Uint8Builder:
		x, ok := toUint64(v)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(uint8(x))
	case *array.Uint16Builder:
		x, ok := toUint64(v)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(uint16(x))
	case *array.Uint32Builder:
		x, ok := toUint64(v)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(uint32(x))
	case *array.Uint64Builder:
		x, ok := toUint64(v)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(x)
	case *array.Float32Builder:
		x, ok := toFloat64(v)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(float32(x))
	case *array.Float64Builder:
		x, ok := toFloat64(v)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(x)
	case *array.StringBuilder:
		switch x := v.(type) {
		case string:
			b.Append(x)
		case []byte:
			b.Append(string(x))
		default:
			return unexpected(v, b.Type())
		}
	case *array.BinaryBuilder:
		switch x := v.(type) {
		case []byte:
			b.Append(x)
		case string:
			b.AppendString(x)
		default:
			return unexpected(v, b.Type())
		}
	case *array.Date32Builder:
		t, ok := v.(time.Time)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(arrow.Date32FromTime(t))
	case *array.Time64Builder:
		t, ok := v.(time.Time)
		if !ok {
			return unexpected(v, b.Type())
		}
		b.Append(arrow.Time64(sinceMidnight(t) / time.Microsecond))
	case *array.TimestampBuilder:
		t, ok := v.(time.Time)
		if !ok {
			return unexpected(v, b.Type())
		}
		ts, err := arrow.TimestampFromTime(t, b.Type().(*arrow.TimestampType).Unit)
		if err != nil {
			return err
		}
		b.Append(ts)
	default:
		return fmt.Errorf("no conversion into %s", b.Type())
	}
	return nil
}

func unexpected(v any, dt arrow.DataType) error {
	return fmt.Errorf("cannot store %T in %s", v, dt)
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case int:
		return int64(x), true
	}
	return 0, false
}

func toUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case uint:
		return uint64(x), true
	}
	if i, ok := toInt64(v); ok && i >= 0 {
		return uint64(i), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
