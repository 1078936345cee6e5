package dtype

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// ToArrow returns the Arrow data type for d.
// Temporal extensions map to the matching Arrow temporal types; other
// extensions map to their storage type.
func ToArrow(d DType) (arrow.DataType, error) {
	switch t := d.(type) {
	case Null:
		return arrow.Null, nil
	case Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case Primitive:
		return primitiveToArrow(t.PType)
	case Utf8:
		return arrow.BinaryTypes.String, nil
	case Binary:
		return arrow.BinaryTypes.Binary, nil
	case Struct:
		fields, err := fieldsToArrow(t.Fields)
		if err != nil {
			return nil, err
		}
		return arrow.StructOf(fields...), nil
	case List:
		elem, err := ToArrow(t.Elem)
		if err != nil {
			return nil, fmt.Errorf("list element: %w", err)
		}
		return arrow.ListOfField(arrow.Field{Name: "item", Type: elem, Nullable: t.Elem.Nullable()}), nil
	case Extension:
		if IsTemporal(t.ID) {
			return temporalToArrow(t)
		}
		return ToArrow(t.Storage)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, d)
	}
}

// ToArrowSchema converts a struct type into an Arrow schema, one field per struct field.
func ToArrowSchema(s Struct) (*arrow.Schema, error) {
	fields, err := fieldsToArrow(s.Fields)
	if err != nil {
		return nil, err
	}
	return arrow.NewSchema(fields, nil), nil
}

func fieldsToArrow(fields []Field) ([]arrow.Field, error) {
	out := make([]arrow.Field, 0, len(fields))
	for _, f := range fields {
		dt, err := ToArrow(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out = append(out, arrow.Field{Name: f.Name, Type: dt, Nullable: f.Type.Nullable()})
	}
	return out, nil
}

func primitiveToArrow(p PType) (arrow.DataType, error) {
	switch p {
	case U8:
		return arrow.PrimitiveTypes.Uint8, nil
	case U16:
		return arrow.PrimitiveTypes.Uint16, nil
	case U32:
		return arrow.PrimitiveTypes.Uint32, nil
	case U64:
		return arrow.PrimitiveTypes.Uint64, nil
	case I8:
		return arrow.PrimitiveTypes.Int8, nil
	case I16:
		return arrow.PrimitiveTypes.Int16, nil
	case I32:
		return arrow.PrimitiveTypes.Int32, nil
	case I64:
		return arrow.PrimitiveTypes.Int64, nil
	case F32:
		return arrow.PrimitiveTypes.Float32, nil
	case F64:
		return arrow.PrimitiveTypes.Float64, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, p)
	}
}

func temporalToArrow(ext Extension) (arrow.DataType, error) {
	meta, err := DecodeTemporalMetadata(ext.ID, ext.Metadata)
	if err != nil {
		return nil, err
	}

	switch ext.ID {
	case DateID:
		switch meta.Unit {
		case Days:
			return arrow.FixedWidthTypes.Date32, nil
		case Milliseconds:
			return arrow.FixedWidthTypes.Date64, nil
		}
	case TimeID:
		switch meta.Unit {
		case Seconds:
			return arrow.FixedWidthTypes.Time32s, nil
		case Milliseconds:
			return arrow.FixedWidthTypes.Time32ms, nil
		case Microseconds:
			return arrow.FixedWidthTypes.Time64us, nil
		case Nanoseconds:
			return arrow.FixedWidthTypes.Time64ns, nil
		}
	case TimestampID:
		unit, ok := arrowTimeUnit(meta.Unit)
		if ok {
			return &arrow.TimestampType{Unit: unit, TimeZone: meta.TimeZone}, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid time unit %s for %s", ErrUnsupportedType, meta.Unit, ext.ID)
}

func arrowTimeUnit(u TimeUnit) (arrow.TimeUnit, bool) {
	switch u {
	case Seconds:
		return arrow.Second, true
	case Milliseconds:
		return arrow.Millisecond, true
	case Microseconds:
		return arrow.Microsecond, true
	case Nanoseconds:
		return arrow.Nanosecond, true
	default:
		return 0, false
	}
}

func fromArrowTimeUnit(u arrow.TimeUnit) TimeUnit {
	switch u {
	case arrow.Second:
		return Seconds
	case arrow.Millisecond:
		return Milliseconds
	case arrow.Microsecond:
		return Microseconds
	default:
		return Nanoseconds
	}
}

// FromArrow converts an Arrow data type into a logical type.
// Large and view string/binary layouts collapse into Utf8 and Binary.
func FromArrow(dt arrow.DataType, nullable bool) (DType, error) {
	n := NullabilityOf(nullable)

	switch dt.ID() {
	case arrow.NULL:
		return Null{}, nil
	case arrow.BOOL:
		return Bool{Nullability: n}, nil
	case arrow.INT8:
		return NewInt(8, n), nil
	case arrow.INT16:
		return NewInt(16, n), nil
	case arrow.INT32:
		return NewInt(32, n), nil
	case arrow.INT64:
		return NewInt(64, n), nil
	case arrow.UINT8:
		return NewUInt(8, n), nil
	case arrow.UINT16:
		return NewUInt(16, n), nil
	case arrow.UINT32:
		return NewUInt(32, n), nil
	case arrow.UINT64:
		return NewUInt(64, n), nil
	case arrow.FLOAT32:
		return NewFloat(32, n), nil
	case arrow.FLOAT64:
		return NewFloat(64, n), nil
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		return Utf8{Nullability: n}, nil
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.BINARY_VIEW:
		return Binary{Nullability: n}, nil
	case arrow.TIMESTAMP:
		ts := dt.(*arrow.TimestampType)
		return NewTimestamp(fromArrowTimeUnit(ts.Unit), ts.TimeZone, n), nil
	case arrow.DATE32:
		return NewDate(Days, n), nil
	case arrow.DATE64:
		return NewDate(Milliseconds, n), nil
	case arrow.TIME32:
		return NewTime(fromArrowTimeUnit(dt.(*arrow.Time32Type).Unit), n), nil
	case arrow.TIME64:
		return NewTime(fromArrowTimeUnit(dt.(*arrow.Time64Type).Unit), n), nil
	case arrow.STRUCT:
		st := dt.(*arrow.StructType)
		fields, err := fieldsFromArrow(st.Fields())
		if err != nil {
			return nil, err
		}
		return Struct{Fields: fields, Nullability: n}, nil
	case arrow.LIST, arrow.LARGE_LIST:
		elemField := dt.(arrow.ListLikeType).ElemField()
		elem, err := FromArrow(elemField.Type, elemField.Nullable)
		if err != nil {
			return nil, fmt.Errorf("list element: %w", err)
		}
		return List{Elem: elem, Nullability: n}, nil
	case arrow.EXTENSION:
		return FromArrow(dt.(arrow.ExtensionType).StorageType(), nullable)
	default:
		return nil, fmt.Errorf("%w: arrow type %s", ErrUnsupportedType, dt)
	}
}

// FromArrowSchema converts an Arrow schema into a non-nullable struct type.
func FromArrowSchema(schema *arrow.Schema) (Struct, error) {
	fields, err := fieldsFromArrow(schema.Fields())
	if err != nil {
		return Struct{}, err
	}
	return Struct{Fields: fields, Nullability: NonNullable}, nil
}

func fieldsFromArrow(fields []arrow.Field) ([]Field, error) {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		dt, err := FromArrow(f.Type, f.Nullable)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out = append(out, Field{Name: f.Name, Type: dt})
	}
	return out, nil
}
