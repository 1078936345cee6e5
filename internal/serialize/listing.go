// Package serialize encodes the relation listing sent by ListFlights.
//
// The listing is one Arrow IPC stream with a row per relation, compressed
// with ZStandard.
package serialize

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/lazyscan/catalog"
	"github.com/hugr-lab/lazyscan/internal/zstdframe"
)

// ListingSchema is the schema of the relation listing.
var ListingSchema = arrow.NewSchema([]arrow.Field{
	{Name: "relation_name", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "comment", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "num_columns", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
	{Name: "schema", Type: arrow.BinaryTypes.String, Nullable: false},
}, nil)

// ListingRow is one decoded listing row.
type ListingRow struct {
	Name       string
	Comment    string
	NumColumns int32
	Schema     string
}

// SerializeCatalog writes the catalog listing in Arrow IPC stream format.
// The schema column holds the relation's logical type rendering.
func SerializeCatalog(cat *catalog.Catalog, allocator memory.Allocator) ([]byte, error) {
	builder := array.NewRecordBuilder(allocator, ListingSchema)
	defer builder.Release()

	nameBuilder := builder.Field(0).(*array.StringBuilder)
	commentBuilder := builder.Field(1).(*array.StringBuilder)
	numColumnsBuilder := builder.Field(2).(*array.Int32Builder)
	schemaBuilder := builder.Field(3).(*array.StringBuilder)

	for _, e := range cat.Entries() {
		dt := e.Source.Relation().DType()
		nameBuilder.Append(e.Name)
		if e.Comment == "" {
			commentBuilder.AppendNull()
		} else {
			commentBuilder.Append(e.Comment)
		}
		numColumnsBuilder.Append(int32(len(dt.Fields)))
		schemaBuilder.Append(dt.String())
	}

	record := builder.NewRecordBatch()
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(ListingSchema), ipc.WithAllocator(allocator))
	if err := writer.Write(record); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write IPC record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close IPC writer: %w", err)
	}

	return buf.Bytes(), nil
}

// CompressCatalog compresses serialized listing data using ZStandard.
func CompressCatalog(data []byte) ([]byte, error) {
	return zstdframe.Compress(data)
}

// ReadCatalog decompresses and decodes a listing produced by
// SerializeCatalog and CompressCatalog.
func ReadCatalog(compressed []byte, allocator memory.Allocator) ([]ListingRow, error) {
	data, err := zstdframe.Decompress(compressed)
	if err != nil {
		return nil, err
	}

	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(allocator))
	if err != nil {
		return nil, fmt.Errorf("failed to open IPC reader: %w", err)
	}
	defer reader.Release()

	if !reader.Schema().Equal(ListingSchema) {
		return nil, fmt.Errorf("unexpected listing schema: %v", reader.Schema())
	}

	var rows []ListingRow
	for reader.Next() {
		rec := reader.RecordBatch()
		names := rec.Column(0).(*array.String)
		comments := rec.Column(1).(*array.String)
		numColumns := rec.Column(2).(*array.Int32)
		schemas := rec.Column(3).(*array.String)
		for i := 0; i < int(rec.NumRows()); i++ {
			row := ListingRow{
				Name:       names.Value(i),
				NumColumns: numColumns.Value(i),
				Schema:     schemas.Value(i),
			}
			if comments.IsValid(i) {
				row.Comment = comments.Value(i)
			}
			rows = append(rows, row)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read IPC record: %w", err)
	}
	return rows, nil
}
