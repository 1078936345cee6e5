// Package dtype defines the logical types of the columnar engine.
//
// A DType is a closed set of variants: Null, Bool, Primitive, Utf8, Binary,
// Struct, List and Extension. Every variant carries a Nullability; an
// Extension inherits the nullability of its storage type.
//
// Types convert to and from Arrow data types (see ToArrow and FromArrow), and
// temporal extension types (timestamps, dates, times) carry a small binary
// metadata blob describing their time unit and zone (see TemporalMetadata).
package dtype

import (
	"bytes"
	"strings"
)

// Nullability reports whether a type admits null values.
type Nullability bool

const (
	NonNullable Nullability = false
	Nullable    Nullability = true
)

// NullabilityOf returns Nullable when v is true.
func NullabilityOf(v bool) Nullability { return Nullability(v) }

func (n Nullability) suffix() string {
	if n {
		return "?"
	}
	return ""
}

// DType is implemented by all logical types.
// Use a type switch to access variant data.
type DType interface {
	// Nullable reports whether values of this type may be null.
	Nullable() bool

	// WithNullability returns a copy of the type with the given nullability.
	WithNullability(n Nullability) DType

	// Equal reports structural equality, including nullability.
	Equal(other DType) bool

	// String returns a compact human-readable form, e.g. "i64?".
	String() string

	// dtypeMarker prevents external implementations.
	dtypeMarker()
}

// Null is the type with a single value, null. It is always nullable.
type Null struct{}

func (Null) Nullable() bool                    { return true }
func (Null) WithNullability(Nullability) DType { return Null{} }
func (Null) String() string                    { return "null" }
func (Null) dtypeMarker()                      {}

func (Null) Equal(other DType) bool {
	_, ok := other.(Null)
	return ok
}

// Bool is the boolean type.
type Bool struct {
	Nullability Nullability
}

func (b Bool) Nullable() bool                      { return bool(b.Nullability) }
func (b Bool) WithNullability(n Nullability) DType { return Bool{Nullability: n} }
func (b Bool) String() string                      { return "bool" + b.Nullability.suffix() }
func (Bool) dtypeMarker()                          {}

func (b Bool) Equal(other DType) bool {
	o, ok := other.(Bool)
	return ok && o == b
}

// Primitive is a fixed-width numeric type.
type Primitive struct {
	PType       PType
	Nullability Nullability
}

func (p Primitive) Nullable() bool { return bool(p.Nullability) }
func (p Primitive) WithNullability(n Nullability) DType {
	return Primitive{PType: p.PType, Nullability: n}
}
func (p Primitive) String() string { return p.PType.String() + p.Nullability.suffix() }
func (Primitive) dtypeMarker()     {}

func (p Primitive) Equal(other DType) bool {
	o, ok := other.(Primitive)
	return ok && o == p
}

// Utf8 is the UTF-8 string type.
type Utf8 struct {
	Nullability Nullability
}

func (u Utf8) Nullable() bool                      { return bool(u.Nullability) }
func (u Utf8) WithNullability(n Nullability) DType { return Utf8{Nullability: n} }
func (u Utf8) String() string                      { return "utf8" + u.Nullability.suffix() }
func (Utf8) dtypeMarker()                          {}

func (u Utf8) Equal(other DType) bool {
	o, ok := other.(Utf8)
	return ok && o == u
}

// Binary is the variable-length byte string type.
type Binary struct {
	Nullability Nullability
}

func (b Binary) Nullable() bool                      { return bool(b.Nullability) }
func (b Binary) WithNullability(n Nullability) DType { return Binary{Nullability: n} }
func (b Binary) String() string                      { return "binary" + b.Nullability.suffix() }
func (Binary) dtypeMarker()                          {}

func (b Binary) Equal(other DType) bool {
	o, ok := other.(Binary)
	return ok && o == b
}

// Field is a named member of a Struct.
type Field struct {
	Name string
	Type DType
}

// Struct is an ordered list of named fields.
type Struct struct {
	Fields      []Field
	Nullability Nullability
}

func (s Struct) Nullable() bool { return bool(s.Nullability) }
func (s Struct) WithNullability(n Nullability) DType {
	return Struct{Fields: s.Fields, Nullability: n}
}
func (Struct) dtypeMarker() {}

func (s Struct) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, f := range s.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString("=")
		sb.WriteString(f.Type.String())
	}
	sb.WriteString("}")
	sb.WriteString(s.Nullability.suffix())
	return sb.String()
}

func (s Struct) Equal(other DType) bool {
	o, ok := other.(Struct)
	if !ok || o.Nullability != s.Nullability || len(o.Fields) != len(s.Fields) {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i].Name != o.Fields[i].Name || !s.Fields[i].Type.Equal(o.Fields[i].Type) {
			return false
		}
	}
	return true
}

// Names returns the field names in order.
func (s Struct) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldIndex returns the index of the named field, or -1.
func (s Struct) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Project narrows the struct to the named fields, in the order given.
// A nil projection returns the struct unchanged.
func (s Struct) Project(names []string) (Struct, error) {
	if names == nil {
		return s, nil
	}
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		idx := s.FieldIndex(name)
		if idx < 0 {
			return Struct{}, &FieldNotFoundError{Name: name, Available: s.Names()}
		}
		fields = append(fields, s.Fields[idx])
	}
	return Struct{Fields: fields, Nullability: s.Nullability}, nil
}

// List is a variable-length list of a single element type.
type List struct {
	Elem        DType
	Nullability Nullability
}

func (l List) Nullable() bool { return bool(l.Nullability) }
func (l List) WithNullability(n Nullability) DType {
	return List{Elem: l.Elem, Nullability: n}
}
func (l List) String() string { return "list(" + l.Elem.String() + ")" + l.Nullability.suffix() }
func (List) dtypeMarker()     {}

func (l List) Equal(other DType) bool {
	o, ok := other.(List)
	return ok && o.Nullability == l.Nullability && l.Elem.Equal(o.Elem)
}

// Extension is a type built on a storage type plus opaque metadata.
// Its nullability is the nullability of Storage.
type Extension struct {
	ID       string
	Storage  DType
	Metadata []byte
}

func (e Extension) Nullable() bool { return e.Storage.Nullable() }
func (e Extension) WithNullability(n Nullability) DType {
	return Extension{ID: e.ID, Storage: e.Storage.WithNullability(n), Metadata: e.Metadata}
}
func (Extension) dtypeMarker() {}

func (e Extension) String() string {
	return "ext(" + e.ID + ", " + e.Storage.String() + ")"
}

func (e Extension) Equal(other DType) bool {
	o, ok := other.(Extension)
	return ok && o.ID == e.ID && e.Storage.Equal(o.Storage) && bytes.Equal(e.Metadata, o.Metadata)
}

// NewNull returns the null type.
func NewNull() DType { return Null{} }

// NewBool returns a boolean type.
func NewBool(n Nullability) DType { return Bool{Nullability: n} }

// NewInt returns a signed integer type of the given bit width (8, 16, 32 or 64).
func NewInt(width int, n Nullability) DType {
	return Primitive{PType: intPType(width, true), Nullability: n}
}

// NewUInt returns an unsigned integer type of the given bit width.
func NewUInt(width int, n Nullability) DType {
	return Primitive{PType: intPType(width, false), Nullability: n}
}

// NewFloat returns a floating point type of the given bit width (32 or 64).
func NewFloat(width int, n Nullability) DType {
	if width == 32 {
		return Primitive{PType: F32, Nullability: n}
	}
	return Primitive{PType: F64, Nullability: n}
}

// NewUtf8 returns the string type.
func NewUtf8(n Nullability) DType { return Utf8{Nullability: n} }

// NewBinary returns the binary type.
func NewBinary(n Nullability) DType { return Binary{Nullability: n} }

// NewStruct returns a struct type over the given fields.
func NewStruct(fields []Field, n Nullability) Struct {
	return Struct{Fields: fields, Nullability: n}
}

// NewList returns a list type with the given element type.
func NewList(elem DType, n Nullability) DType { return List{Elem: elem, Nullability: n} }

// NewExtension returns an extension type.
func NewExtension(id string, storage DType, metadata []byte) DType {
	return Extension{ID: id, Storage: storage, Metadata: metadata}
}

func intPType(width int, signed bool) PType {
	switch width {
	case 8:
		if signed {
			return I8
		}
		return U8
	case 16:
		if signed {
			return I16
		}
		return U16
	case 32:
		if signed {
			return I32
		}
		return U32
	default:
		if signed {
			return I64
		}
		return U64
	}
}
