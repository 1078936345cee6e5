package polars

import (
	"encoding/json"

	"github.com/hugr-lab/lazyscan/dtype"
	"github.com/hugr-lab/lazyscan/expr"
)

// literal is the single canonical form of every literal wire shape.
// Exactly one of typ and datetime is set.
type literal struct {
	typ   LiteralType
	value any // decoded JSON value, see LiteralType.Resolve

	datetime *datetimeLiteral
}

// datetimeLiteral is the payload of {"DateTime": [value, unit, tz]}.
type datetimeLiteral struct {
	value any
	unit  string
	tz    any
}

// scalarValueTags are the Polars AnyValue tags whose payload is a plain JSON value.
var scalarValueTags = map[string]struct{}{
	"StringOwned": {}, "String": {},
	"BinaryOwned": {}, "Binary": {},
	"Boolean": {},
	"Int8": {}, "Int16": {}, "Int32": {}, "Int64": {},
	"UInt8": {}, "UInt16": {}, "UInt32": {}, "UInt64": {},
	"Float32": {}, "Float64": {},
}

// normalizeScalar normalizes the current {"Scalar": {"dtype", "value"}} shape.
func normalizeScalar(dt, value json.RawMessage) (literal, error) {
	typ, _, err := splitTag(dt)
	if err != nil {
		return literal{}, newError(ErrMalformedNode, "Scalar dtype: %v", err)
	}

	tag, payload, err := splitTag(value)
	if err != nil {
		return literal{}, newError(ErrUnsupportedConstruct, "scalar value %s", truncate(value))
	}
	if tag == "Null" {
		return literal{typ: LiteralType(typ)}, nil
	}
	if _, ok := scalarValueTags[tag]; !ok {
		return literal{}, newError(ErrUnsupportedConstruct, "scalar value type %s", tag)
	}

	v, err := decodeValue(payload)
	if err != nil {
		return literal{}, err
	}
	return literal{typ: LiteralType(typ), value: v}, nil
}

// normalizeLiteral normalizes the legacy {"Literal": {kind: payload}} shape,
// including nested Scalar and the Dyn wrapper.
func normalizeLiteral(kind string, payload json.RawMessage) (literal, error) {
	switch kind {
	case keyScalar:
		sc, err := parseScalar(payload)
		if err != nil {
			return literal{}, err
		}
		return normalizeScalar(sc.DType, sc.Value)
	case "Series":
		return literal{}, newError(ErrUnsupportedConstruct, "Series literals")
	case "DateTime":
		return normalizeDateTime(payload)
	case "Dyn":
		// Dynamic literals have no established type yet; the inner tag is the
		// resolver tag.
		inner, innerPayload, err := splitTag(payload)
		if err != nil {
			return literal{}, newError(ErrMalformedNode, "Dyn literal: %v", err)
		}
		return resolverLiteral(inner, innerPayload)
	default:
		return resolverLiteral(kind, payload)
	}
}

func resolverLiteral(kind string, payload json.RawMessage) (literal, error) {
	v, err := decodeValue(payload)
	if err != nil {
		return literal{}, err
	}
	return literal{typ: LiteralType(kind), value: v}, nil
}

func normalizeDateTime(payload json.RawMessage) (literal, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(payload, &parts); err != nil || len(parts) != 3 {
		return literal{}, newError(ErrMalformedNode, "DateTime literal must be [value, unit, tz], got %s", truncate(payload))
	}

	value, err := decodeValue(parts[0])
	if err != nil {
		return literal{}, err
	}
	var unit string
	if err := json.Unmarshal(parts[1], &unit); err != nil {
		return literal{}, newError(ErrMalformedNode, "DateTime unit: %v", err)
	}
	tz, err := decodeValue(parts[2])
	if err != nil {
		return literal{}, err
	}

	return literal{datetime: &datetimeLiteral{value: value, unit: unit, tz: tz}}, nil
}

func (l literal) lower() (expr.Expression, error) {
	if l.datetime != nil {
		return l.datetime.lower()
	}
	dt, v, err := l.typ.Resolve(l.value)
	if err != nil {
		return nil, err
	}
	return expr.Lit(dt, v), nil
}

func (d *datetimeLiteral) lower() (expr.Expression, error) {
	var unit dtype.TimeUnit
	switch d.unit {
	case "Nanoseconds":
		unit = dtype.Nanoseconds
	case "Microseconds":
		unit = dtype.Microseconds
	case "Milliseconds":
		unit = dtype.Milliseconds
	case "Seconds":
		unit = dtype.Seconds
	default:
		return nil, newError(ErrUnsupportedConstruct, "DateTime unit %q", d.unit)
	}
	if d.tz != nil {
		return nil, newError(ErrUnsupportedConstruct, "DateTime with time zone %v", d.tz)
	}

	_, v, err := TypeInt64.Resolve(d.value)
	if err != nil {
		return nil, err
	}
	dt := dtype.NewTimestamp(unit, "", dtype.NullabilityOf(v == nil))
	return expr.Lit(dt, v), nil
}
