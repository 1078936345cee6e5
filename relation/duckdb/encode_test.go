package duckdb

import (
	"errors"
	"math"
	"testing"

	"github.com/hugr-lab/lazyscan/dtype"
	"github.com/hugr-lab/lazyscan/expr"
)

func lit(dt dtype.DType, v any) expr.Expression { return expr.Lit(dt, v) }

func TestEncode(t *testing.T) {
	nn := dtype.NonNullable
	tests := []struct {
		name string
		in   expr.Expression
		want string
	}{
		{"column", expr.Col("a"), "a"},
		{"reserved column", expr.Col("select"), `"select"`},
		{"spaced column", expr.Col("my col"), `"my col"`},
		{"quote in column", expr.Col(`a"b`), `"a""b"`},
		{"gt", expr.Gt(expr.Col("a"), lit(dtype.NewInt(64, nn), int64(5))), "(a > 5)"},
		{"not eq", expr.NotEq(expr.Col("a"), lit(dtype.NewInt(8, nn), int8(-1))), "(a <> -1)"},
		{"literal first", expr.Lte(lit(dtype.NewUInt(32, nn), uint32(7)), expr.Col("a")), "(a >= 7)"},
		{
			"and or",
			expr.Or(
				expr.And(expr.Gte(expr.Col("a"), lit(dtype.NewInt(64, nn), int64(1))), expr.Lt(expr.Col("a"), lit(dtype.NewInt(64, nn), int64(3)))),
				expr.Eq(expr.Col("b"), lit(dtype.NewUtf8(nn), "x")),
			),
			"(((a >= 1) AND (a < 3)) OR (b = 'x'))",
		},
		{"string escape", expr.Eq(expr.Col("b"), lit(dtype.NewUtf8(nn), "it's")), "(b = 'it''s')"},
		{"null", expr.Eq(expr.Col("a"), lit(dtype.NewInt(64, dtype.Nullable), nil)), "(a = NULL)"},
		{"bool", expr.Eq(expr.Col("d"), lit(dtype.NewBool(nn), true)), "(d = TRUE)"},
		{"float", expr.Gt(expr.Col("c"), lit(dtype.NewFloat(64, nn), 1.5)), "(c > 1.5)"},
		{"float32", expr.Gt(expr.Col("c"), lit(dtype.NewFloat(32, nn), float32(0.25))), "(c > 0.25)"},
		{"nan", expr.Eq(expr.Col("c"), lit(dtype.NewFloat(64, nn), math.NaN())), "(c = 'nan'::DOUBLE)"},
		{"neg inf", expr.Gt(expr.Col("c"), lit(dtype.NewFloat(64, nn), math.Inf(-1))), "(c > '-inf'::DOUBLE)"},
		{"blob", expr.Eq(expr.Col("e"), lit(dtype.NewBinary(nn), []byte{0xab, 0x01})), `(e = '\xab\x01'::BLOB)`},
		{
			"timestamp seconds",
			expr.Gte(expr.Col("ts"), lit(dtype.NewTimestamp(dtype.Seconds, "", nn), int64(1700000000))),
			"(ts >= TIMESTAMP '2023-11-14 22:13:20')",
		},
		{
			"timestamp micros",
			expr.Gte(expr.Col("ts"), lit(dtype.NewTimestamp(dtype.Microseconds, "", nn), int64(1700000000123456))),
			"(ts >= TIMESTAMP '2023-11-14 22:13:20.123456')",
		},
		{
			"timestamp millis",
			expr.Gte(expr.Col("ts"), lit(dtype.NewTimestamp(dtype.Milliseconds, "", nn), int64(1700000000500))),
			"(ts >= TIMESTAMP '2023-11-14 22:13:20.5')",
		},
		{
			"timestamp nanos",
			expr.Gte(expr.Col("ts"), lit(dtype.NewTimestamp(dtype.Nanoseconds, "", nn), int64(1700000000000000001))),
			"(ts >= TIMESTAMP_NS '2023-11-14 22:13:20.000000001')",
		},
		{
			"timestamp zoned",
			expr.Gte(expr.Col("ts"), lit(dtype.NewTimestamp(dtype.Microseconds, "UTC", nn), int64(1700000000000000))),
			"(ts >= TIMESTAMPTZ '2023-11-14 22:13:20+00')",
		},
		{"date", expr.Eq(expr.Col("dt"), lit(dtype.NewDate(dtype.Days, nn), int32(19000))), "(dt = DATE '2022-01-08')"},
		{"time", expr.Lt(expr.Col("tm"), lit(dtype.NewTime(dtype.Microseconds, nn), int64(3723000000))), "(tm < TIME '01:02:03')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Encode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   expr.Expression
	}{
		{"nil", nil},
		{"bad operator", &expr.BinaryExpr{Op: expr.Operator(99), Left: expr.Col("a"), Right: expr.Col("b")}},
		{"bad literal", expr.Eq(expr.Col("a"), lit(dtype.NewList(dtype.NewBool(false), false), []bool{true}))},
		{"bad temporal value", expr.Eq(expr.Col("a"), lit(dtype.NewTimestamp(dtype.Seconds, "", false), "now"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.in); !errors.Is(err, ErrUnsupportedExpression) {
				t.Errorf("expected ErrUnsupportedExpression, got %v", err)
			}
		})
	}
}

func TestTypeNameDType(t *testing.T) {
	tests := []struct {
		in   TypeName
		want string
	}{
		{"BIGINT", "i64?"},
		{"int4", "i32?"},
		{"UTINYINT", "u8?"},
		{"REAL", "f32?"},
		{"DOUBLE", "f64?"},
		{"TEXT", "utf8?"},
		{"BLOB", "binary?"},
		{"BOOL", "bool?"},
		{"DATE", "ext(vortex.date, i32?)"},
		{"TIME", "ext(vortex.time, i64?)"},
		{"TIMESTAMP_NS", "ext(vortex.timestamp, i64?)"},
		{"TIMESTAMP WITH TIME ZONE", "ext(vortex.timestamp, i64?)"},
	}

	for _, tt := range tests {
		got, err := tt.in.DType(dtype.Nullable)
		if err != nil {
			t.Errorf("%s: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("%s: got %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := TypeName("DECIMAL(18,3)").DType(dtype.Nullable); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestTimestampTZMetadata(t *testing.T) {
	got, err := TypeTimestampTZ.DType(dtype.Nullable)
	if err != nil {
		t.Fatal(err)
	}
	ext := got.(dtype.Extension)
	meta, err := dtype.DecodeTemporalMetadata(ext.ID, ext.Metadata)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Unit != dtype.Microseconds || meta.TimeZone != "UTC" {
		t.Errorf("metadata = %+v", meta)
	}
}
