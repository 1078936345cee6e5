// Package scan bridges internal relation scans to a lazy, schema-stable
// batch stream for a foreign query engine.
//
// A Source wraps a Relation and exposes the registration hook a lazy frame
// needs: the output schema up front, and a callback that, given a projection,
// an optional Polars predicate, a row limit and a batch size, returns a
// Stream of Arrow record batches. The predicate is translated once, before the
// relation is touched, so unsupported predicates fail at registration time.
//
// Every Stream ends with exactly one zero-row batch carrying the negotiated
// schema, even when real batches were produced:
//
//	schema, open := source.Register()
//	stream, err := open(ctx, scan.Options{WithColumns: []string{"a", "c"}})
//	if err != nil {
//	    return err
//	}
//	defer stream.Release()
//	for stream.Next() {
//	    rec := stream.RecordBatch() // last one has zero rows
//	}
//	return stream.Err()
package scan

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/hugr-lab/lazyscan/dtype"
	"github.com/hugr-lab/lazyscan/expr"
)

// Relation is an opened, scannable table with a known logical schema.
// Implementations must be safe for concurrent Scan calls; each returned
// reader is owned by its caller.
type Relation interface {
	// DType returns the full schema of the relation.
	DType() dtype.Struct

	// Scan opens a forward-only scan. The reader's batches contain exactly
	// the projected columns, in projection order, and only rows for which
	// the predicate is true. Batches hold at most BatchSize rows when it is
	// positive. Scans are not restartable.
	Scan(ctx context.Context, req Request) (array.RecordReader, error)
}

// Request describes one relation scan.
type Request struct {
	// Projection lists the columns to read, in output order.
	// Nil means all columns in natural order.
	Projection []string

	// Predicate filters rows. Nil means no filtering.
	Predicate expr.Expression

	// BatchSize is the maximum number of rows per batch.
	// Zero means the relation default.
	BatchSize int
}
