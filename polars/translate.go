package polars

import (
	"encoding/json"
	"strings"

	"github.com/hugr-lab/lazyscan/expr"
)

// Translate lowers a parsed Polars expression to an internal expression.
//
// Translation is pure and deterministic. It either returns a complete tree or
// an error wrapping one of ErrUnrecognizedNode, ErrUnsupportedOperator,
// ErrUnsupportedLiteralType, ErrUnsupportedConstruct, ErrUnsupportedFunction
// or ErrMalformedNode; no partial tree is ever returned.
func Translate(node Node) (expr.Expression, error) {
	switch n := node.(type) {
	case *BinaryExprNode:
		left, err := Translate(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := Translate(n.Right)
		if err != nil {
			return nil, err
		}
		return lowerBinary(n.Op, left, right)

	case *ColumnNode:
		return expr.Col(n.Name), nil

	case *ScalarNode:
		lit, err := normalizeScalar(n.DType, n.Value)
		if err != nil {
			return nil, err
		}
		return lit.lower()

	case *LiteralNode:
		lit, err := normalizeLiteral(n.Kind, n.Payload)
		if err != nil {
			return nil, err
		}
		return lit.lower()

	case *FunctionNode:
		for _, in := range n.Inputs {
			if _, err := Translate(in); err != nil {
				return nil, err
			}
		}
		return nil, rejectFunction(n)

	case *UnknownNode:
		return nil, newError(ErrUnrecognizedNode, "keys [%s]", strings.Join(n.Keys, ", "))

	case nil:
		return nil, newError(ErrMalformedNode, "nil node")

	default:
		return nil, newError(ErrUnrecognizedNode, "%T", node)
	}
}

// TranslateJSON parses and translates Polars expression JSON.
func TranslateJSON(data []byte) (expr.Expression, error) {
	node, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Translate(node)
}

// rejectFunction returns the error for a function call. No function is
// lowered; the known-unsupported ones get ErrUnsupportedConstruct.
func rejectFunction(n *FunctionNode) error {
	switch {
	case n.Namespace == "Boolean" && n.Name == "IsIn":
		var opts struct {
			NullsEqual bool `json:"nulls_equal"`
		}
		if !isNull(n.Options) {
			if err := json.Unmarshal(n.Options, &opts); err != nil {
				return newError(ErrMalformedNode, "IsIn options: %v", err)
			}
		}
		if opts.NullsEqual {
			return newError(ErrUnsupportedConstruct, "IsIn with nulls_equal=true")
		}
	case n.Namespace == "StringExpr" && n.Name == "Contains":
		return newError(ErrUnsupportedConstruct, "StringExpr.Contains")
	}
	return newError(ErrUnsupportedFunction, "%s", functionName(n))
}

func functionName(n *FunctionNode) string {
	if n.Name == "" {
		return n.Namespace
	}
	return n.Namespace + "." + n.Name
}
