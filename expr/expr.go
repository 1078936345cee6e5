// Package expr defines the internal expression tree consumed by the scan layer.
//
// An Expression is one of three variants:
//   - *Column: a reference to a column by name
//   - *Literal: a typed constant value
//   - *BinaryExpr: an operator applied to two sub-expressions
//
// Expressions are immutable once built and hold no back-references. Use a
// type switch to access variant data:
//
//	switch e := e.(type) {
//	case *expr.Column:
//	    fmt.Println(e.Name)
//	case *expr.BinaryExpr:
//	    fmt.Println(e.Op)
//	}
//
// The package never evaluates expressions; relations do.
package expr

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/hugr-lab/lazyscan/dtype"
)

// Expression is the interface implemented by all expression variants.
type Expression interface {
	// String returns a compact infix rendering, e.g. ($a >= 5_i64).
	String() string

	// expressionMarker is a marker method to prevent external implementation.
	expressionMarker()
}

// Column references a column of the scanned relation by name.
type Column struct {
	Name string
}

func (*Column) expressionMarker() {}

func (c *Column) String() string { return "$" + c.Name }

// Literal is a typed constant.
//
// Value holds one of: nil, bool, int8, int16, int32, int64, uint8, uint16,
// uint32, uint64, float32, float64, string, []byte. Temporal extension
// literals hold their int64 storage value. DType.Nullable() is true exactly
// when Value is nil.
type Literal struct {
	DType dtype.DType
	Value any
}

func (*Literal) expressionMarker() {}

func (l *Literal) String() string {
	return formatValue(l.Value) + "_" + l.DType.String()
}

// BinaryExpr applies Op to Left and Right.
type BinaryExpr struct {
	Op    Operator
	Left  Expression
	Right Expression
}

func (*BinaryExpr) expressionMarker() {}

func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Op.Symbol() + " " + b.Right.String() + ")"
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case []byte:
		return fmt.Sprintf("0x%x", v)
	default:
		return fmt.Sprint(v)
	}
}

// Equal reports whether two expression trees are structurally identical.
func Equal(a, b Expression) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case *Column:
		o, ok := b.(*Column)
		return ok && a.Name == o.Name
	case *Literal:
		o, ok := b.(*Literal)
		return ok && a.DType.Equal(o.DType) && valuesEqual(a.Value, o.Value)
	case *BinaryExpr:
		o, ok := b.(*BinaryExpr)
		return ok && a.Op == o.Op && Equal(a.Left, o.Left) && Equal(a.Right, o.Right)
	default:
		return false
	}
}

func valuesEqual(a, b any) bool {
	ab, aok := a.([]byte)
	bb, bok := b.([]byte)
	if aok || bok {
		return aok && bok && bytes.Equal(ab, bb)
	}
	return a == b
}

// ReferencedColumns returns the distinct column names referenced by e, in
// order of first appearance.
func ReferencedColumns(e Expression) []string {
	var names []string
	seen := make(map[string]struct{})
	Walk(e, func(e Expression) bool {
		if c, ok := e.(*Column); ok {
			if _, dup := seen[c.Name]; !dup {
				seen[c.Name] = struct{}{}
				names = append(names, c.Name)
			}
		}
		return true
	})
	return names
}

// Walk visits e and its children depth-first, left before right.
// Returning false from fn skips the children of the current node.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	if b, ok := e.(*BinaryExpr); ok {
		Walk(b.Left, fn)
		Walk(b.Right, fn)
	}
}
