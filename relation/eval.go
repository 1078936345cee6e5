package relation

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/scalar"

	"github.com/hugr-lab/lazyscan/dtype"
	"github.com/hugr-lab/lazyscan/expr"
)

// kernelNames maps operators to Arrow compute functions. Conjunction and
// disjunction use Kleene logic so that null AND false is false.
var kernelNames = map[expr.Operator]string{
	expr.OpEq:    "equal",
	expr.OpNotEq: "not_equal",
	expr.OpLt:    "less",
	expr.OpLte:   "less_equal",
	expr.OpGt:    "greater",
	expr.OpGte:   "greater_equal",
	expr.OpAnd:   "and_kleene",
	expr.OpOr:    "or_kleene",
}

// evaluator evaluates expressions against record batches with Arrow compute.
type evaluator struct {
	mem memory.Allocator
}

// filter returns the rows of rec for which pred is true. Rows where pred is
// null are dropped.
func (e evaluator) filter(ctx context.Context, pred expr.Expression, rec arrow.RecordBatch) (arrow.RecordBatch, error) {
	result, err := e.eval(ctx, pred, rec)
	if err != nil {
		return nil, err
	}
	defer result.Release()

	var mask arrow.Array
	switch d := result.(type) {
	case *compute.ArrayDatum:
		mask = d.MakeArray()
	case *compute.ScalarDatum:
		mask, err = scalar.MakeArrayFromScalar(d.Value, int(rec.NumRows()), e.mem)
		if err != nil {
			return nil, fmt.Errorf("broadcast predicate: %w", err)
		}
	default:
		return nil, fmt.Errorf("predicate %s evaluated to %s", pred, result.Kind())
	}
	defer mask.Release()

	if mask.DataType().ID() != arrow.BOOL {
		return nil, fmt.Errorf("predicate %s evaluates to %s, not bool", pred, mask.DataType())
	}

	out, err := compute.FilterRecordBatch(ctx, rec, mask, compute.DefaultFilterOptions())
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return out, nil
}

func (e evaluator) eval(ctx context.Context, ex expr.Expression, input arrow.RecordBatch) (compute.Datum, error) {
	switch ex := ex.(type) {
	case *expr.Column:
		idx := input.Schema().FieldIndices(ex.Name)
		if len(idx) == 0 {
			return nil, fmt.Errorf("column %q not found", ex.Name)
		}
		return compute.NewDatum(input.Column(idx[0])), nil

	case *expr.Literal:
		sc, err := literalScalar(ex)
		if err != nil {
			return nil, err
		}
		return compute.NewDatum(sc), nil

	case *expr.BinaryExpr:
		name, ok := kernelNames[ex.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %v", ex.Op)
		}

		lhs, err := e.eval(ctx, ex.Left, input)
		if err != nil {
			return nil, err
		}
		defer lhs.Release()

		rhs, err := e.eval(ctx, ex.Right, input)
		if err != nil {
			return nil, err
		}
		defer rhs.Release()

		out, err := compute.CallFunction(ctx, name, nil, lhs, rhs)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", ex, err)
		}
		return out, nil
	}

	return nil, fmt.Errorf("unknown expression: %v", ex)
}

// literalScalar converts a literal to an Arrow scalar of the literal's type.
func literalScalar(lit *expr.Literal) (scalar.Scalar, error) {
	dt, err := dtype.ToArrow(lit.DType)
	if err != nil {
		return nil, fmt.Errorf("literal %s: %w", lit, err)
	}
	if lit.Value == nil {
		return scalar.MakeNullScalar(dt), nil
	}

	switch v := lit.Value.(type) {
	case bool:
		return scalar.NewBooleanScalar(v), nil
	case int8:
		return scalar.NewInt8Scalar(v), nil
	case int16:
		return scalar.NewInt16Scalar(v), nil
	case int32:
		switch t := dt.(type) {
		case *arrow.Date32Type:
			return scalar.NewDate32Scalar(arrow.Date32(v)), nil
		case *arrow.Time32Type:
			return scalar.NewTime32Scalar(arrow.Time32(v), t), nil
		}
		return scalar.NewInt32Scalar(v), nil
	case int64:
		switch t := dt.(type) {
		case *arrow.TimestampType:
			return scalar.NewTimestampScalar(arrow.Timestamp(v), t), nil
		case *arrow.Date64Type:
			return scalar.NewDate64Scalar(arrow.Date64(v)), nil
		case *arrow.Time64Type:
			return scalar.NewTime64Scalar(arrow.Time64(v), t), nil
		}
		return scalar.NewInt64Scalar(v), nil
	case uint8:
		return scalar.NewUint8Scalar(v), nil
	case uint16:
		return scalar.NewUint16Scalar(v), nil
	case uint32:
		return scalar.NewUint32Scalar(v), nil
	case uint64:
		return scalar.NewUint64Scalar(v), nil
	case float32:
		return scalar.NewFloat32Scalar(v), nil
	case float64:
		return scalar.NewFloat64Scalar(v), nil
	case string:
		return scalar.NewStringScalar(v), nil
	case []byte:
		return scalar.NewBinaryScalar(memory.NewBufferBytes(v), arrow.BinaryTypes.Binary), nil
	default:
		return nil, fmt.Errorf("literal %s: unsupported value type %T", lit, lit.Value)
	}
}
