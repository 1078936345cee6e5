// Package duckdb scans DuckDB tables as relations.
//
// A Table is opened against a *sql.DB using the duckdb-go driver. Its schema
// is read from the driver's column types; scans push the projection and the
// predicate down into a single SELECT statement and stream the rows into
// Arrow record batches.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/lazyscan/dtype"
	"github.com/hugr-lab/lazyscan/scan"

	// Registers the "duckdb" database/sql driver.
	_ "github.com/duckdb/duckdb-go/v2"
)

// DriverName is the database/sql driver name registered by duckdb-go.
const DriverName = "duckdb"

// DefaultBatchSize is the batch size used when a request does not set one.
const DefaultBatchSize = 8192

// Table is a DuckDB table or view.
type Table struct {
	db     *sql.DB
	name   string
	dt     dtype.Struct
	schema *arrow.Schema
	mem    memory.Allocator
	logger *slog.Logger
}

var _ scan.Relation = (*Table)(nil)

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithAllocator sets the allocator for scanned batches.
func WithAllocator(mem memory.Allocator) Option {
	return func(t *Table) {
		if mem != nil {
			t.mem = mem
		}
	}
}

// Open opens the named table. The name may be schema-qualified.
// The database handle stays owned by the caller.
func Open(ctx context.Context, db *sql.DB, name string, opts ...Option) (*Table, error) {
	t := &Table{
		db:     db,
		name:   name,
		mem:    memory.DefaultAllocator,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteQualified(name)+" LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", name, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", name, err)
	}

	fields := make([]dtype.Field, 0, len(types))
	for _, ct := range types {
		nullable, ok := ct.Nullable()
		if !ok {
			nullable = true
		}
		dt, err := TypeName(ct.DatabaseTypeName()).DType(dtype.NullabilityOf(nullable))
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, ct.Name(), err)
		}
		fields = append(fields, dtype.Field{Name: ct.Name(), Type: dt})
	}
	t.dt = dtype.NewStruct(fields, dtype.NonNullable)

	t.schema, err = dtype.ToArrowSchema(t.dt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	t.logger.Debug("Opened DuckDB table", "table", name, "schema", t.dt.String())
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// DType implements scan.Relation.
func (t *Table) DType() dtype.Struct { return t.dt }

// Scan implements scan.Relation. The statement runs when Scan is called;
// rows are read lazily as the reader advances.
func (t *Table) Scan(ctx context.Context, req scan.Request) (array.RecordReader, error) {
	out, err := scan.ProjectSchema(t.schema, req.Projection)
	if err != nil {
		return nil, err
	}
	if err := scan.CheckPredicate(t.dt, req.Predicate); err != nil {
		return nil, err
	}

	query, err := t.selectQuery(out, req)
	if err != nil {
		return nil, err
	}

	batchSize := int64(req.BatchSize)
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	t.logger.Debug("DuckDB scan", "table", t.name, "query", query, "batch_size", batchSize)

	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	return newRowReader(rows, out, batchSize, t.mem), nil
}

// selectQuery builds the SELECT statement for a scan of the given schema.
func (t *Table) selectQuery(out *arrow.Schema, req scan.Request) (string, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if out.NumFields() == 0 {
		sb.WriteString("NULL")
	}
	for i, f := range out.Fields() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quoteIdentifier(f.Name))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(quoteQualified(t.name))

	if req.Predicate != nil {
		where, err := Encode(req.Predicate)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	return sb.String(), nil
}
