package polars

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Variant keys in dispatch priority order.
const (
	keyBinaryExpr = "BinaryExpr"
	keyColumn     = "Column"
	keyScalar     = "Scalar"
	keyLiteral    = "Literal"
	keyFunction   = "Function"
)

// Parse parses the JSON produced by Polars' expr.meta.write_json().
//
// The variant is selected by the first key present in the order BinaryExpr,
// Column, Scalar, Literal, Function. Objects with none of these keys, and
// bare-string unit variants such as "Len", parse to *UnknownNode so that the
// translator can report them.
//
// Error conditions:
//   - Invalid JSON syntax
//   - A recognized variant whose payload has the wrong structure
func Parse(data []byte) (Node, error) {
	return parseNode(json.RawMessage(data))
}

// rawBinaryExpr is the JSON structure of a BinaryExpr payload.
type rawBinaryExpr struct {
	Left  json.RawMessage `json:"left"`
	Op    string          `json:"op"`
	Right json.RawMessage `json:"right"`
}

// rawScalar is the JSON structure of a Scalar payload.
type rawScalar struct {
	DType json.RawMessage `json:"dtype"`
	Value json.RawMessage `json:"value"`
}

// rawFunction is the JSON structure of a Function payload.
type rawFunction struct {
	Input    []json.RawMessage `json:"input"`
	Function json.RawMessage   `json:"function"`
}

func parseNode(data json.RawMessage) (Node, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, newError(ErrMalformedNode, "empty expression")
	}

	switch data[0] {
	case '"':
		var unit string
		if err := json.Unmarshal(data, &unit); err != nil {
			return nil, newError(ErrMalformedNode, "invalid JSON: %v", err)
		}
		return &UnknownNode{Keys: []string{unit}}, nil
	case '{':
	default:
		return nil, newError(ErrMalformedNode, "expression must be an object, got %s", truncate(data))
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, newError(ErrMalformedNode, "invalid JSON: %v", err)
	}

	if payload, ok := obj[keyBinaryExpr]; ok {
		return parseBinaryExpr(payload)
	}
	if payload, ok := obj[keyColumn]; ok {
		var name string
		if err := json.Unmarshal(payload, &name); err != nil {
			return nil, newError(ErrMalformedNode, "Column payload must be a string: %v", err)
		}
		return &ColumnNode{Name: name}, nil
	}
	if payload, ok := obj[keyScalar]; ok {
		return parseScalar(payload)
	}
	if payload, ok := obj[keyLiteral]; ok {
		kind, inner, err := splitTag(payload)
		if err != nil {
			return nil, newError(ErrMalformedNode, "Literal: %v", err)
		}
		return &LiteralNode{Kind: kind, Payload: inner}, nil
	}
	if payload, ok := obj[keyFunction]; ok {
		return parseFunction(payload)
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &UnknownNode{Keys: keys}, nil
}

func parseBinaryExpr(payload json.RawMessage) (*BinaryExprNode, error) {
	var raw rawBinaryExpr
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, newError(ErrMalformedNode, "invalid BinaryExpr: %v", err)
	}
	if raw.Left == nil || raw.Right == nil {
		return nil, newError(ErrMalformedNode, "BinaryExpr requires left and right operands")
	}

	left, err := parseNode(raw.Left)
	if err != nil {
		return nil, err
	}
	right, err := parseNode(raw.Right)
	if err != nil {
		return nil, err
	}

	return &BinaryExprNode{Left: left, Op: Operator(raw.Op), Right: right}, nil
}

func parseScalar(payload json.RawMessage) (*ScalarNode, error) {
	var raw rawScalar
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, newError(ErrMalformedNode, "invalid Scalar: %v", err)
	}
	if raw.DType == nil || raw.Value == nil {
		return nil, newError(ErrMalformedNode, "Scalar requires dtype and value")
	}
	return &ScalarNode{DType: raw.DType, Value: raw.Value}, nil
}

func parseFunction(payload json.RawMessage) (*FunctionNode, error) {
	var raw rawFunction
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, newError(ErrMalformedNode, "invalid Function: %v", err)
	}
	if raw.Function == nil {
		return nil, newError(ErrMalformedNode, "Function requires a function tag")
	}

	fn := &FunctionNode{Inputs: make([]Node, 0, len(raw.Input))}
	for _, in := range raw.Input {
		node, err := parseNode(in)
		if err != nil {
			return nil, err
		}
		fn.Inputs = append(fn.Inputs, node)
	}

	ns, inner, err := splitTag(raw.Function)
	if err != nil {
		return nil, newError(ErrMalformedNode, "Function: %v", err)
	}
	fn.Namespace = ns
	if !isNull(inner) {
		// Namespaced functions nest a second tag: {"Boolean": {"IsIn": {...}}}.
		name, opts, err := splitTag(inner)
		if err == nil {
			fn.Name = name
			fn.Options = opts
		} else {
			fn.Options = inner
		}
	}
	return fn, nil
}

// splitTag splits a serde enum value into its tag and payload. Unit variants
// are bare strings and have a nil payload; other variants are single-key
// objects.
func splitTag(data json.RawMessage) (string, json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", nil, errors.New("empty tag")
	}

	if data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return "", nil, err
		}
		return tag, nil, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, err
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("expected a single-key object, got %d keys", len(obj))
	}
	for tag, payload := range obj {
		return tag, payload, nil
	}
	return "", nil, errors.New("empty tag")
}

func isNull(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}

func truncate(data []byte) string {
	const limit = 64
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
