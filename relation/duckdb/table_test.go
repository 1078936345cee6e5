package duckdb_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/hugr-lab/lazyscan/dtype"
	"github.com/hugr-lab/lazyscan/expr"
	"github.com/hugr-lab/lazyscan/polars"
	"github.com/hugr-lab/lazyscan/relation/duckdb"
	"github.com/hugr-lab/lazyscan/scan"
)

// openTable creates an in-memory DuckDB table with 20 rows and opens it.
func openTable(t *testing.T) *duckdb.Table {
	t.Helper()

	db, err := sql.Open(duckdb.DriverName, "")
	if err != nil {
		t.Fatalf("DuckDB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE events AS
		SELECT i AS a,
		       'row-' || i AS b,
		       i / 2 AS c,
		       i % 2 = 0 AS d,
		       make_timestamp(2024, 1, 1, 0, 0, i) AS ts
		FROM range(20) r(i)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	table, err := duckdb.Open(context.Background(), db, "events")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	return table
}

func readColumnA(t *testing.T, r array.RecordReader) ([]int64, []int64) {
	t.Helper()
	defer r.Release()

	var sizes, values []int64
	for r.Next() {
		rec := r.RecordBatch()
		sizes = append(sizes, rec.NumRows())
		if idx := rec.Schema().FieldIndices("a"); len(idx) > 0 {
			values = append(values, rec.Column(idx[0]).(*array.Int64).Int64Values()...)
		}
	}
	if err := r.Err(); err != nil {
		t.Fatalf("reader error: %v", err)
	}
	return sizes, values
}

func TestTableSchema(t *testing.T) {
	table := openTable(t)
	want := "{a=i64?, b=utf8?, c=f64?, d=bool?, ts=ext(vortex.timestamp, i64?)}"
	if got := table.DType().String(); got != want {
		t.Errorf("DType() = %s, want %s", got, want)
	}
}

func TestTableScanBatches(t *testing.T) {
	table := openTable(t)

	r, err := table.Scan(context.Background(), scan.Request{BatchSize: 6})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	sizes, _ := readColumnA(t, r)
	if fmt.Sprint(sizes) != "[6 6 6 2]" {
		t.Errorf("batch sizes = %v, want [6 6 6 2]", sizes)
	}
}

func TestTableScanPredicate(t *testing.T) {
	table := openTable(t)
	i64 := func(v int64) expr.Expression { return expr.Lit(dtype.NewInt(64, dtype.NonNullable), v) }

	tests := []struct {
		name string
		pred expr.Expression
		want string
	}{
		{"gte", expr.Gte(expr.Col("a"), i64(17)), "[17 18 19]"},
		{"and", expr.And(expr.Col("d"), expr.Lt(expr.Col("a"), i64(5))), "[0 2 4]"},
		{"or", expr.Or(expr.Eq(expr.Col("a"), i64(1)), expr.Eq(expr.Col("b"), expr.Lit(dtype.NewUtf8(dtype.NonNullable), "row-3"))), "[1 3]"},
		{"timestamp", expr.Gte(expr.Col("ts"), expr.Lit(dtype.NewTimestamp(dtype.Microseconds, "", dtype.NonNullable), int64(1704067215000000))), "[15 16 17 18 19]"},
		{"null", expr.Eq(expr.Col("a"), expr.Lit(dtype.NewInt(64, dtype.Nullable), nil)), "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := table.Scan(context.Background(), scan.Request{Predicate: tt.pred})
			if err != nil {
				t.Fatalf("Scan error: %v", err)
			}
			_, values := readColumnA(t, r)
			if fmt.Sprint(values) != tt.want {
				t.Errorf("rows = %v, want %s", values, tt.want)
			}
		})
	}
}

func TestTableScanProjection(t *testing.T) {
	table := openTable(t)

	r, err := table.Scan(context.Background(), scan.Request{Projection: []string{"ts", "a"}, BatchSize: 100})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	defer r.Release()

	if !r.Next() {
		t.Fatalf("Next() = false, err = %v", r.Err())
	}
	rec := r.RecordBatch()
	if rec.ColumnName(0) != "ts" || rec.ColumnName(1) != "a" {
		t.Errorf("columns = %s, %s; want ts, a", rec.ColumnName(0), rec.ColumnName(1))
	}
	ts := rec.Column(0).(*array.Timestamp)
	if got := ts.Value(3); got != arrow.Timestamp(1704067203000000) {
		t.Errorf("ts[3] = %d", got)
	}

	_, err = table.Scan(context.Background(), scan.Request{Projection: []string{"nope"}})
	if !errors.Is(err, scan.ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestTableEmptyProjection(t *testing.T) {
	table := openTable(t)

	r, err := table.Scan(context.Background(), scan.Request{Projection: []string{}, BatchSize: 8})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	sizes, _ := readColumnA(t, r)
	if fmt.Sprint(sizes) != "[8 8 4]" {
		t.Errorf("batch sizes = %v, want [8 8 4]", sizes)
	}
}

func TestTableThroughSource(t *testing.T) {
	src, err := scan.NewSource(openTable(t), scan.WithName("events"))
	if err != nil {
		t.Fatalf("NewSource error: %v", err)
	}

	pred, err := polars.Parse([]byte(`{"BinaryExpr": {"left": {"Column": "ts"}, "op": "GtEq", "right": {"Literal": {"DateTime": [1704067215000000, "Microseconds", null]}}}}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	s, err := src.Scan(context.Background(), scan.Options{WithColumns: []string{"a"}, Predicate: pred, BatchSize: 2})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	sizes, values := readColumnA(t, s)
	if fmt.Sprint(sizes) != "[2 2 1 0]" {
		t.Errorf("batch sizes = %v, want [2 2 1 0]", sizes)
	}
	if fmt.Sprint(values) != "[15 16 17 18 19]" {
		t.Errorf("rows = %v", values)
	}
}
