package polars

import "encoding/json"

// Node is a parsed Polars expression node.
// The set of variants is closed; use a type switch to access variant data.
type Node interface {
	// nodeMarker is a marker method to prevent external implementation.
	nodeMarker()
}

// BinaryExprNode is {"BinaryExpr": {"left": ..., "op": ..., "right": ...}}.
type BinaryExprNode struct {
	Left  Node
	Op    Operator
	Right Node
}

// ColumnNode is {"Column": "name"}.
type ColumnNode struct {
	Name string
}

// ScalarNode is the current literal shape {"Scalar": {"dtype": ..., "value": ...}}.
// DType is a Polars DataType and Value a Polars AnyValue, both kept raw until
// literal normalization.
type ScalarNode struct {
	DType json.RawMessage
	Value json.RawMessage
}

// LiteralNode is the legacy literal shape {"Literal": {Kind: Payload}}.
// Kind is the single inner key, e.g. "Int", "Dyn", "DateTime", "Series" or
// "Scalar". A bare string literal such as {"Literal": "Null"} has a nil Payload.
type LiteralNode struct {
	Kind    string
	Payload json.RawMessage
}

// FunctionNode is {"Function": {"input": [...], "function": ...}}.
// Namespace is the outer function tag (e.g. "Boolean", "StringExpr") and Name
// the inner one (e.g. "IsIn", "Contains"), empty when the function has no
// namespace. Options holds the inner payload.
type FunctionNode struct {
	Namespace string
	Name      string
	Options   json.RawMessage
	Inputs    []Node
}

// UnknownNode is any node without a recognized variant key.
type UnknownNode struct {
	Keys []string
}

func (*BinaryExprNode) nodeMarker() {}
func (*ColumnNode) nodeMarker()     {}
func (*ScalarNode) nodeMarker()     {}
func (*LiteralNode) nodeMarker()    {}
func (*FunctionNode) nodeMarker()   {}
func (*UnknownNode) nodeMarker()    {}
