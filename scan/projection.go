package scan

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/lazyscan/dtype"
	"github.com/hugr-lab/lazyscan/expr"
)

// ProjectSchema returns a schema containing only the named columns, in the
// order given. A nil columns slice returns the schema unchanged; an empty one
// returns a schema with no fields. Schema metadata is preserved.
func ProjectSchema(schema *arrow.Schema, columns []string) (*arrow.Schema, error) {
	if columns == nil {
		return schema, nil
	}

	colIndex := make(map[string]int, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		colIndex[schema.Field(i).Name] = i
	}

	seen := make(map[string]struct{}, len(columns))
	fields := make([]arrow.Field, 0, len(columns))
	for _, col := range columns {
		idx, ok := colIndex[col]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
		}
		if _, dup := seen[col]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col)
		}
		seen[col] = struct{}{}
		fields = append(fields, schema.Field(idx))
	}

	meta := schema.Metadata()
	return arrow.NewSchema(fields, &meta), nil
}

// CheckPredicate returns ErrUnknownColumn when pred references a column the
// schema lacks.
func CheckPredicate(schema dtype.Struct, pred expr.Expression) error {
	for _, name := range expr.ReferencedColumns(pred) {
		if schema.FieldIndex(name) < 0 {
			return fmt.Errorf("%w: predicate references %q", ErrUnknownColumn, name)
		}
	}
	return nil
}
