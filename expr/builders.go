package expr

import "github.com/hugr-lab/lazyscan/dtype"

// Col returns a column reference.
func Col(name string) *Column { return &Column{Name: name} }

// Lit returns a literal of the given type.
func Lit(t dtype.DType, value any) *Literal { return &Literal{DType: t, Value: value} }

// Binary returns op applied to left and right.
func Binary(op Operator, left, right Expression) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right}
}

func Eq(left, right Expression) Expression    { return Binary(OpEq, left, right) }
func NotEq(left, right Expression) Expression { return Binary(OpNotEq, left, right) }
func Gt(left, right Expression) Expression    { return Binary(OpGt, left, right) }
func Gte(left, right Expression) Expression   { return Binary(OpGte, left, right) }
func Lt(left, right Expression) Expression    { return Binary(OpLt, left, right) }
func Lte(left, right Expression) Expression   { return Binary(OpLte, left, right) }
func And(left, right Expression) Expression   { return Binary(OpAnd, left, right) }
func Or(left, right Expression) Expression    { return Binary(OpOr, left, right) }

// Conjunction folds exprs with And. It returns nil for an empty slice.
func Conjunction(exprs ...Expression) Expression {
	var out Expression
	for _, e := range exprs {
		if out == nil {
			out = e
			continue
		}
		out = And(out, e)
	}
	return out
}
