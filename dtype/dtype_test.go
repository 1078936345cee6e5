package dtype

import (
	"bytes"
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
)

func TestString(t *testing.T) {
	tests := []struct {
		dt   DType
		want string
	}{
		{NewNull(), "null"},
		{NewBool(Nullable), "bool?"},
		{NewInt(8, NonNullable), "i8"},
		{NewUInt(32, Nullable), "u32?"},
		{NewFloat(32, NonNullable), "f32"},
		{NewFloat(64, NonNullable), "f64"},
		{NewUtf8(NonNullable), "utf8"},
		{NewBinary(Nullable), "binary?"},
		{NewList(NewInt(16, NonNullable), Nullable), "list(i16)?"},
		{NewStruct([]Field{{Name: "a", Type: NewInt(64, NonNullable)}, {Name: "b", Type: NewUtf8(Nullable)}}, NonNullable), "{a=i64, b=utf8?}"},
		{NewTimestamp(Seconds, "", Nullable), "ext(vortex.timestamp, i64?)"},
	}

	for _, tt := range tests {
		if got := tt.dt.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	ts := NewTimestamp(Milliseconds, "", NonNullable)

	tests := []struct {
		name string
		a, b DType
		want bool
	}{
		{"same primitive", NewInt(64, Nullable), NewInt(64, Nullable), true},
		{"nullability differs", NewInt(64, Nullable), NewInt(64, NonNullable), false},
		{"width differs", NewInt(32, Nullable), NewInt(64, Nullable), false},
		{"signedness differs", NewInt(32, Nullable), NewUInt(32, Nullable), false},
		{"null", NewNull(), NewNull(), true},
		{"utf8 vs binary", NewUtf8(NonNullable), NewBinary(NonNullable), false},
		{"same extension", ts, NewTimestamp(Milliseconds, "", NonNullable), true},
		{"extension unit differs", ts, NewTimestamp(Seconds, "", NonNullable), false},
		{"extension zone differs", ts, NewTimestamp(Milliseconds, "UTC", NonNullable), false},
		{"list", NewList(NewBool(false), false), NewList(NewBool(false), false), true},
		{"list elem differs", NewList(NewBool(false), false), NewList(NewBool(true), false), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestExtensionNullabilityFollowsStorage(t *testing.T) {
	ts := NewTimestamp(Seconds, "", NonNullable)
	if ts.Nullable() {
		t.Fatal("expected non-nullable timestamp")
	}
	n := ts.WithNullability(Nullable)
	if !n.Nullable() {
		t.Fatal("expected nullable timestamp")
	}
	ext := n.(Extension)
	if !ext.Storage.Equal(NewInt(64, Nullable)) {
		t.Errorf("storage = %v, want i64?", ext.Storage)
	}
}

func TestStructProject(t *testing.T) {
	s := NewStruct([]Field{
		{Name: "a", Type: NewInt(64, NonNullable)},
		{Name: "b", Type: NewUtf8(Nullable)},
		{Name: "c", Type: NewFloat(64, Nullable)},
		{Name: "d", Type: NewBool(NonNullable)},
	}, NonNullable)

	t.Run("nil keeps all", func(t *testing.T) {
		got, err := s.Project(nil)
		if err != nil {
			t.Fatalf("Project(nil) error: %v", err)
		}
		if !got.Equal(s) {
			t.Errorf("Project(nil) = %v, want %v", got, s)
		}
	})

	t.Run("order follows projection", func(t *testing.T) {
		got, err := s.Project([]string{"c", "a"})
		if err != nil {
			t.Fatalf("Project error: %v", err)
		}
		names := got.Names()
		if len(names) != 2 || names[0] != "c" || names[1] != "a" {
			t.Errorf("Names() = %v, want [c a]", names)
		}
	})

	t.Run("empty projection", func(t *testing.T) {
		got, err := s.Project([]string{})
		if err != nil {
			t.Fatalf("Project error: %v", err)
		}
		if len(got.Fields) != 0 {
			t.Errorf("expected no fields, got %v", got)
		}
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := s.Project([]string{"a", "z"})
		var nf *FieldNotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("expected FieldNotFoundError, got %v", err)
		}
		if nf.Name != "z" {
			t.Errorf("Name = %q, want z", nf.Name)
		}
	})
}

func TestTimestampMetadata(t *testing.T) {
	tests := []struct {
		unit TimeUnit
		tz   string
		want []byte
	}{
		{Nanoseconds, "", []byte{0x00, 0x00, 0x00}},
		{Microseconds, "", []byte{0x01, 0x00, 0x00}},
		{Milliseconds, "", []byte{0x02, 0x00, 0x00}},
		{Seconds, "", []byte{0x03, 0x00, 0x00}},
		{Seconds, "UTC", []byte{0x03, 0x03, 0x00, 'U', 'T', 'C'}},
	}

	for _, tt := range tests {
		got := EncodeTimestampMetadata(tt.unit, tt.tz)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("EncodeTimestampMetadata(%v, %q) = % x, want % x", tt.unit, tt.tz, got, tt.want)
		}
		meta, err := DecodeTemporalMetadata(TimestampID, got)
		if err != nil {
			t.Fatalf("DecodeTemporalMetadata error: %v", err)
		}
		if meta.Unit != tt.unit || meta.TimeZone != tt.tz {
			t.Errorf("decoded %+v, want unit=%v tz=%q", meta, tt.unit, tt.tz)
		}
	}
}

func TestDecodeTemporalMetadataErrors(t *testing.T) {
	tests := []struct {
		name string
		id   string
		meta []byte
	}{
		{"empty", TimestampID, nil},
		{"bad unit", DateID, []byte{0x09}},
		{"short timestamp", TimestampID, []byte{0x03, 0x00}},
		{"zone length mismatch", TimestampID, []byte{0x03, 0x05, 0x00, 'U'}},
		{"not temporal", "geo.point", []byte{0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTemporalMetadata(tt.id, tt.meta)
			if !errors.Is(err, ErrInvalidMetadata) {
				t.Errorf("expected ErrInvalidMetadata, got %v", err)
			}
		})
	}
}

func TestToArrow(t *testing.T) {
	tests := []struct {
		name string
		dt   DType
		want arrow.DataType
	}{
		{"null", NewNull(), arrow.Null},
		{"bool", NewBool(NonNullable), arrow.FixedWidthTypes.Boolean},
		{"i8", NewInt(8, NonNullable), arrow.PrimitiveTypes.Int8},
		{"u64", NewUInt(64, NonNullable), arrow.PrimitiveTypes.Uint64},
		{"f32", NewFloat(32, NonNullable), arrow.PrimitiveTypes.Float32},
		{"utf8", NewUtf8(Nullable), arrow.BinaryTypes.String},
		{"binary", NewBinary(Nullable), arrow.BinaryTypes.Binary},
		{"timestamp", NewTimestamp(Seconds, "", NonNullable), &arrow.TimestampType{Unit: arrow.Second}},
		{"timestamp tz", NewTimestamp(Microseconds, "UTC", NonNullable), &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}},
		{"date32", NewDate(Days, NonNullable), arrow.FixedWidthTypes.Date32},
		{"date64", NewDate(Milliseconds, NonNullable), arrow.FixedWidthTypes.Date64},
		{"time32", NewTime(Milliseconds, NonNullable), arrow.FixedWidthTypes.Time32ms},
		{"time64", NewTime(Nanoseconds, NonNullable), arrow.FixedWidthTypes.Time64ns},
		{"list", NewList(NewInt(32, Nullable), NonNullable), arrow.ListOfField(arrow.Field{Name: "item", Type: arrow.PrimitiveTypes.Int32, Nullable: true})},
		{"opaque extension", NewExtension("geo.point", NewBinary(Nullable), nil), arrow.BinaryTypes.Binary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToArrow(tt.dt)
			if err != nil {
				t.Fatalf("ToArrow error: %v", err)
			}
			if !arrow.TypeEqual(got, tt.want) {
				t.Errorf("ToArrow(%v) = %v, want %v", tt.dt, got, tt.want)
			}
		})
	}
}

func TestToArrowInvalidTemporal(t *testing.T) {
	_, err := ToArrow(NewExtension(DateID, NewInt(32, false), []byte{byte(Seconds)}))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestFromArrow(t *testing.T) {
	tests := []struct {
		name     string
		dt       arrow.DataType
		nullable bool
		want     DType
	}{
		{"int64", arrow.PrimitiveTypes.Int64, true, NewInt(64, Nullable)},
		{"uint16", arrow.PrimitiveTypes.Uint16, false, NewUInt(16, NonNullable)},
		{"large string", arrow.BinaryTypes.LargeString, true, NewUtf8(Nullable)},
		{"string view", arrow.BinaryTypes.StringView, false, NewUtf8(NonNullable)},
		{"large binary", arrow.BinaryTypes.LargeBinary, false, NewBinary(NonNullable)},
		{"timestamp", &arrow.TimestampType{Unit: arrow.Nanosecond}, true, NewTimestamp(Nanoseconds, "", Nullable)},
		{"date32", arrow.FixedWidthTypes.Date32, false, NewDate(Days, NonNullable)},
		{"time32s", arrow.FixedWidthTypes.Time32s, false, NewTime(Seconds, NonNullable)},
		{"time64us", arrow.FixedWidthTypes.Time64us, false, NewTime(Microseconds, NonNullable)},
		{"struct", arrow.StructOf(arrow.Field{Name: "x", Type: arrow.FixedWidthTypes.Boolean}), true,
			NewStruct([]Field{{Name: "x", Type: NewBool(NonNullable)}}, Nullable)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromArrow(tt.dt, tt.nullable)
			if err != nil {
				t.Fatalf("FromArrow error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("FromArrow(%v) = %v, want %v", tt.dt, got, tt.want)
			}
		})
	}
}

func TestFromArrowUnsupported(t *testing.T) {
	_, err := FromArrow(arrow.FixedWidthTypes.Float16, false)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestArrowSchema(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "ts", Type: &arrow.TimestampType{Unit: arrow.Millisecond}, Nullable: true},
	}, nil)

	st, err := FromArrowSchema(schema)
	if err != nil {
		t.Fatalf("FromArrowSchema error: %v", err)
	}
	if got := st.String(); got != "{id=i64, name=utf8?, ts=ext(vortex.timestamp, i64?)}" {
		t.Errorf("struct = %s", got)
	}

	back, err := ToArrowSchema(st)
	if err != nil {
		t.Fatalf("ToArrowSchema error: %v", err)
	}
	if !back.Equal(schema) {
		t.Errorf("ToArrowSchema = %v, want %v", back, schema)
	}
}
