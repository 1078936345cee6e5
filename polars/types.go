package polars

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/hugr-lab/lazyscan/dtype"
)

// LiteralType is a Polars scalar type tag, e.g. "Int32" or "String".
type LiteralType string

const (
	TypeNull    LiteralType = "Null"
	TypeBoolean LiteralType = "Boolean"
	TypeInt     LiteralType = "Int" // dynamic integer, resolved as i64
	TypeInt8    LiteralType = "Int8"
	TypeInt16   LiteralType = "Int16"
	TypeInt32   LiteralType = "Int32"
	TypeInt64   LiteralType = "Int64"
	TypeUInt8   LiteralType = "UInt8"
	TypeUInt16  LiteralType = "UInt16"
	TypeUInt32  LiteralType = "UInt32"
	TypeUInt64  LiteralType = "UInt64"
	TypeFloat   LiteralType = "Float" // dynamic float, resolved as f64
	TypeFloat32 LiteralType = "Float32"
	TypeFloat64 LiteralType = "Float64"
	TypeString  LiteralType = "String"
	TypeBinary  LiteralType = "Binary"
)

// LiteralTypes returns every type tag accepted by the resolver.
func LiteralTypes() []LiteralType {
	return []LiteralType{
		TypeNull, TypeBoolean, TypeInt,
		TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64,
		TypeFloat, TypeFloat32, TypeFloat64,
		TypeString, TypeBinary,
	}
}

// Resolve returns the domain type for a literal of type t carrying the JSON
// value v, together with v converted to its canonical Go representation.
// v is nil, bool, json.Number, string or []any as produced by a json.Decoder
// with UseNumber. The type is nullable exactly when v is nil.
func (t LiteralType) Resolve(v any) (dtype.DType, any, error) {
	n := dtype.NullabilityOf(v == nil)

	switch t {
	case TypeNull:
		return dtype.NewNull(), nil, nil
	case TypeBoolean:
		if v == nil {
			return dtype.NewBool(n), nil, nil
		}
		b, ok := v.(bool)
		if !ok {
			return nil, nil, t.malformed(v)
		}
		return dtype.NewBool(n), b, nil
	case TypeInt, TypeInt64:
		return resolveInt(t, v, 64, n)
	case TypeInt8:
		return resolveInt(t, v, 8, n)
	case TypeInt16:
		return resolveInt(t, v, 16, n)
	case TypeInt32:
		return resolveInt(t, v, 32, n)
	case TypeUInt8:
		return resolveUint(t, v, 8, n)
	case TypeUInt16:
		return resolveUint(t, v, 16, n)
	case TypeUInt32:
		return resolveUint(t, v, 32, n)
	case TypeUInt64:
		return resolveUint(t, v, 64, n)
	case TypeFloat32:
		return resolveFloat(t, v, 32, n)
	case TypeFloat, TypeFloat64:
		return resolveFloat(t, v, 64, n)
	case TypeString:
		if v == nil {
			return dtype.NewUtf8(n), nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, nil, t.malformed(v)
		}
		return dtype.NewUtf8(n), s, nil
	case TypeBinary:
		if v == nil {
			return dtype.NewBinary(n), nil, nil
		}
		b, err := toBytes(v)
		if err != nil {
			return nil, nil, t.malformed(v)
		}
		return dtype.NewBinary(n), b, nil
	default:
		return nil, nil, newError(ErrUnsupportedLiteralType, "%q", string(t))
	}
}

func (t LiteralType) malformed(v any) error {
	return newError(ErrMalformedNode, "invalid %s literal value %v (%T)", string(t), v, v)
}

func resolveInt(t LiteralType, v any, bits int, n dtype.Nullability) (dtype.DType, any, error) {
	dt := dtype.NewInt(bits, n)
	if v == nil {
		return dt, nil, nil
	}
	num, ok := v.(json.Number)
	if !ok {
		return nil, nil, t.malformed(v)
	}
	i, err := strconv.ParseInt(num.String(), 10, bits)
	if err != nil {
		return nil, nil, t.malformed(v)
	}

	switch bits {
	case 8:
		return dt, int8(i), nil
	case 16:
		return dt, int16(i), nil
	case 32:
		return dt, int32(i), nil
	default:
		return dt, i, nil
	}
}

func resolveUint(t LiteralType, v any, bits int, n dtype.Nullability) (dtype.DType, any, error) {
	dt := dtype.NewUInt(bits, n)
	if v == nil {
		return dt, nil, nil
	}
	num, ok := v.(json.Number)
	if !ok {
		return nil, nil, t.malformed(v)
	}
	u, err := strconv.ParseUint(num.String(), 10, bits)
	if err != nil {
		return nil, nil, t.malformed(v)
	}

	switch bits {
	case 8:
		return dt, uint8(u), nil
	case 16:
		return dt, uint16(u), nil
	case 32:
		return dt, uint32(u), nil
	default:
		return dt, u, nil
	}
}

func resolveFloat(t LiteralType, v any, bits int, n dtype.Nullability) (dtype.DType, any, error) {
	dt := dtype.NewFloat(bits, n)
	if v == nil {
		return dt, nil, nil
	}

	var s string
	switch v := v.(type) {
	case json.Number:
		s = v.String()
	case string:
		// serde writes non-finite floats as strings
		s = v
	default:
		return nil, nil, t.malformed(v)
	}
	f, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return nil, nil, t.malformed(v)
	}

	if bits == 32 {
		return dt, float32(f), nil
	}
	return dt, f, nil
}

// toBytes accepts a JSON byte array or a string.
func toBytes(v any) ([]byte, error) {
	switch v := v.(type) {
	case string:
		return []byte(v), nil
	case []any:
		out := make([]byte, len(v))
		for i, el := range v {
			num, ok := el.(json.Number)
			if !ok {
				return nil, errInvalidByte
			}
			b, err := strconv.ParseUint(num.String(), 10, 8)
			if err != nil {
				return nil, err
			}
			out[i] = byte(b)
		}
		return out, nil
	default:
		return nil, errInvalidByte
	}
}

// decodeValue decodes a raw JSON payload, keeping numbers as json.Number.
// A nil or JSON null payload decodes to nil.
func decodeValue(data json.RawMessage) (any, error) {
	if isNull(data) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, newError(ErrMalformedNode, "invalid literal value: %v", err)
	}
	return v, nil
}
