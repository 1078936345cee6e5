package relation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/lazyscan/codec"
	"github.com/hugr-lab/lazyscan/dtype"
	"github.com/hugr-lab/lazyscan/expr"
	"github.com/hugr-lab/lazyscan/scan"
)

var testSchema = arrow.NewSchema([]arrow.Field{
	{Name: "a", Type: arrow.PrimitiveTypes.Int64},
	{Name: "b", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "c", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "d", Type: arrow.FixedWidthTypes.Boolean},
}, nil)

// testBatches returns batches holding rows 0..n-1 split into the given sizes.
func testBatches(t *testing.T, mem memory.Allocator, sizes ...int) []arrow.RecordBatch {
	t.Helper()
	var (
		out []arrow.RecordBatch
		row int
	)
	for _, size := range sizes {
		b := array.NewRecordBuilder(mem, testSchema)
		for i := 0; i < size; i++ {
			b.Field(0).(*array.Int64Builder).Append(int64(row))
			b.Field(1).(*array.StringBuilder).Append(fmt.Sprintf("row-%d", row))
			b.Field(2).(*array.Float64Builder).Append(float64(row) / 2)
			b.Field(3).(*array.BooleanBuilder).Append(row%2 == 0)
			row++
		}
		out = append(out, b.NewRecordBatch())
		b.Release()
	}
	return out
}

func newTestMemory(t *testing.T, sizes ...int) *Memory {
	t.Helper()
	mem := memory.NewGoAllocator()
	batches := testBatches(t, mem, sizes...)
	m, err := NewMemory(testSchema, batches, mem)
	if err != nil {
		t.Fatalf("NewMemory error: %v", err)
	}
	for _, b := range batches {
		b.Release()
	}
	t.Cleanup(m.Release)
	return m
}

// collect drains a reader, returning per-batch row counts and column a.
func collect(t *testing.T, r array.RecordReader) ([]int64, []int64) {
	t.Helper()
	defer r.Release()

	var (
		sizes  []int64
		values []int64
	)
	for r.Next() {
		rec := r.RecordBatch()
		sizes = append(sizes, rec.NumRows())
		idx := rec.Schema().FieldIndices("a")
		if len(idx) == 0 {
			continue
		}
		col := rec.Column(idx[0]).(*array.Int64)
		values = append(values, col.Int64Values()...)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("reader error: %v", err)
	}
	return sizes, values
}

func i64(v int64) expr.Expression { return expr.Lit(dtype.NewInt(64, dtype.NonNullable), v) }

func TestMemoryDType(t *testing.T) {
	m := newTestMemory(t, 5)
	if got := m.DType().String(); got != "{a=i64, b=utf8?, c=f64?, d=bool}" {
		t.Errorf("DType() = %s", got)
	}
	if m.NumRows() != 5 {
		t.Errorf("NumRows() = %d, want 5", m.NumRows())
	}
}

func TestMemoryScanBatching(t *testing.T) {
	tests := []struct {
		name      string
		sizes     []int
		batchSize int
		want      []int64
	}{
		{"exact multiple", []int{7, 3, 10}, 4, []int64{4, 4, 4, 4, 4}},
		{"remainder", []int{7, 3, 10}, 6, []int64{6, 6, 6, 2}},
		{"one row batches", []int{2, 1}, 1, []int64{1, 1, 1}},
		{"larger than relation", []int{7, 3}, 100, []int64{10}},
		{"default", []int{7, 3}, 0, []int64{10}},
		{"empty relation", nil, 4, nil},
		{"empty batches skipped", []int{0, 3, 0}, 2, []int64{2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMemory(t, tt.sizes...)
			r, err := m.Scan(context.Background(), scan.Request{BatchSize: tt.batchSize})
			if err != nil {
				t.Fatalf("Scan error: %v", err)
			}
			sizes, values := collect(t, r)
			if fmt.Sprint(sizes) != fmt.Sprint(tt.want) {
				t.Errorf("batch sizes = %v, want %v", sizes, tt.want)
			}
			for i, v := range values {
				if v != int64(i) {
					t.Fatalf("row %d has a=%d, want rows in order", i, v)
				}
			}
		})
	}
}

func TestMemoryScanProjection(t *testing.T) {
	m := newTestMemory(t, 4, 4)

	r, err := m.Scan(context.Background(), scan.Request{Projection: []string{"c", "a"}, BatchSize: 3})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	defer r.Release()

	if got := r.Schema().NumFields(); got != 2 {
		t.Fatalf("schema has %d fields, want 2", got)
	}
	for r.Next() {
		rec := r.RecordBatch()
		if rec.ColumnName(0) != "c" || rec.ColumnName(1) != "a" {
			t.Errorf("columns = %s, %s; want c, a", rec.ColumnName(0), rec.ColumnName(1))
		}
	}

	_, err = m.Scan(context.Background(), scan.Request{Projection: []string{"a", "zzz"}})
	if !errors.Is(err, scan.ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestMemoryScanPredicate(t *testing.T) {
	tests := []struct {
		name string
		pred expr.Expression
		want []int64
	}{
		{"gte", expr.Gte(expr.Col("a"), i64(17)), []int64{17, 18, 19}},
		{"eq", expr.Eq(expr.Col("a"), i64(3)), []int64{3}},
		{"not eq", expr.NotEq(expr.Col("a"), i64(0)), seq(1, 20)},
		{"lt", expr.Lt(expr.Col("a"), i64(2)), []int64{0, 1}},
		{"lte literal first", expr.Lte(i64(18), expr.Col("a")), []int64{18, 19}},
		{"and", expr.And(expr.Gt(expr.Col("a"), i64(4)), expr.Lt(expr.Col("a"), i64(8))), []int64{5, 6, 7}},
		{"or", expr.Or(expr.Lt(expr.Col("a"), i64(1)), expr.Gte(expr.Col("a"), i64(19))), []int64{0, 19}},
		{"string", expr.Eq(expr.Col("b"), expr.Lit(dtype.NewUtf8(dtype.NonNullable), "row-12")), []int64{12}},
		{"bool column", expr.And(expr.Col("d"), expr.Lt(expr.Col("a"), i64(5))), []int64{0, 2, 4}},
		{"float", expr.Gt(expr.Col("c"), expr.Lit(dtype.NewFloat(64, dtype.NonNullable), 9.0)), []int64{19}},
		{"no match", expr.Gt(expr.Col("a"), i64(100)), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMemory(t, 7, 3, 10)
			r, err := m.Scan(context.Background(), scan.Request{Predicate: tt.pred, BatchSize: 4})
			if err != nil {
				t.Fatalf("Scan error: %v", err)
			}
			_, values := collect(t, r)
			if fmt.Sprint(values) != fmt.Sprint(tt.want) {
				t.Errorf("rows = %v, want %v", values, tt.want)
			}
		})
	}
}

func TestMemoryScanPredicateOnUnprojectedColumn(t *testing.T) {
	m := newTestMemory(t, 10)
	r, err := m.Scan(context.Background(), scan.Request{
		Projection: []string{"b"},
		Predicate:  expr.Lt(expr.Col("a"), i64(2)),
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	sizes, _ := collect(t, r)
	if fmt.Sprint(sizes) != "[2]" {
		t.Errorf("batch sizes = %v, want [2]", sizes)
	}
}

func TestMemoryScanUnknownPredicateColumn(t *testing.T) {
	m := newTestMemory(t, 3)
	_, err := m.Scan(context.Background(), scan.Request{Predicate: expr.Eq(expr.Col("nope"), i64(1))})
	if !errors.Is(err, scan.ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestMemoryScanCancelled(t *testing.T) {
	m := newTestMemory(t, 3, 3)
	ctx, cancel := context.WithCancel(context.Background())
	r, err := m.Scan(ctx, scan.Request{BatchSize: 3})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	defer r.Release()

	cancel()
	if r.Next() {
		t.Fatal("expected no batch after cancellation")
	}
	if !errors.Is(r.Err(), context.Canceled) {
		t.Errorf("Err() = %v, want context.Canceled", r.Err())
	}
}

func TestNewMemorySchemaMismatch(t *testing.T) {
	mem := memory.NewGoAllocator()
	batches := testBatches(t, mem, 2)
	defer batches[0].Release()

	other := arrow.NewSchema([]arrow.Field{{Name: "x", Type: arrow.PrimitiveTypes.Int32}}, nil)
	if _, err := NewMemory(other, batches, mem); err == nil {
		t.Error("expected schema mismatch error")
	}
}

func TestOpen(t *testing.T) {
	mem := memory.NewGoAllocator()
	batches := testBatches(t, mem, 5, 5)
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()

	for _, name := range []string{"t.arrows", "t.arrow", "t.arrows.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			c, err := codec.ForPath(path)
			if err != nil {
				t.Fatalf("ForPath error: %v", err)
			}
			f, err := os.Create(path)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := c.Encode(f, testSchema, batches); err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			f.Close()

			m, err := Open(path, mem)
			if err != nil {
				t.Fatalf("Open error: %v", err)
			}
			defer m.Release()

			if m.NumRows() != 10 {
				t.Errorf("NumRows() = %d, want 10", m.NumRows())
			}
			if !m.ArrowSchema().Equal(testSchema) {
				t.Errorf("schema = %v, want %v", m.ArrowSchema(), testSchema)
			}
		})
	}

	if _, err := Open("missing.csv", mem); !errors.Is(err, codec.ErrNoCodec) {
		t.Errorf("expected ErrNoCodec, got %v", err)
	}
}

func seq(from, to int64) []int64 {
	out := make([]int64, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
