package polars

import "github.com/hugr-lab/lazyscan/expr"

// Operator is a Polars binary operator tag, e.g. "GtEq".
type Operator string

// Supported operators. LogicalAnd and LogicalOr are the spellings Polars uses
// in boolean contexts; they lower to the same constructors as And and Or.
const (
	OpEq         Operator = "Eq"
	OpNotEq      Operator = "NotEq"
	OpLt         Operator = "Lt"
	OpLtEq       Operator = "LtEq"
	OpGt         Operator = "Gt"
	OpGtEq       Operator = "GtEq"
	OpAnd        Operator = "And"
	OpOr         Operator = "Or"
	OpLogicalAnd Operator = "LogicalAnd"
	OpLogicalOr  Operator = "LogicalOr"
)

// Operators returns every operator tag accepted by the translator.
func Operators() []Operator {
	return []Operator{OpEq, OpNotEq, OpLt, OpLtEq, OpGt, OpGtEq, OpAnd, OpOr, OpLogicalAnd, OpLogicalOr}
}

// Lower returns the internal operator for op.
func (op Operator) Lower() (expr.Operator, bool) {
	switch op {
	case OpEq:
		return expr.OpEq, true
	case OpNotEq:
		return expr.OpNotEq, true
	case OpLt:
		return expr.OpLt, true
	case OpLtEq:
		return expr.OpLte, true
	case OpGt:
		return expr.OpGt, true
	case OpGtEq:
		return expr.OpGte, true
	case OpAnd, OpLogicalAnd:
		return expr.OpAnd, true
	case OpOr, OpLogicalOr:
		return expr.OpOr, true
	default:
		return 0, false
	}
}

func lowerBinary(op Operator, left, right expr.Expression) (expr.Expression, error) {
	internal, ok := op.Lower()
	if !ok {
		return nil, newError(ErrUnsupportedOperator, "%q", string(op))
	}
	return expr.Binary(internal, left, right), nil
}
