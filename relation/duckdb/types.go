package duckdb

import (
	"fmt"
	"strings"

	"github.com/hugr-lab/lazyscan/dtype"
)

// TypeName is a DuckDB column type name as reported by the driver.
type TypeName string

const (
	TypeBoolean     TypeName = "BOOLEAN"
	TypeTinyInt     TypeName = "TINYINT"
	TypeSmallInt    TypeName = "SMALLINT"
	TypeInteger     TypeName = "INTEGER"
	TypeBigInt      TypeName = "BIGINT"
	TypeUTinyInt    TypeName = "UTINYINT"
	TypeUSmallInt   TypeName = "USMALLINT"
	TypeUInteger    TypeName = "UINTEGER"
	TypeUBigInt     TypeName = "UBIGINT"
	TypeFloat       TypeName = "FLOAT"
	TypeDouble      TypeName = "DOUBLE"
	TypeVarchar     TypeName = "VARCHAR"
	TypeBlob        TypeName = "BLOB"
	TypeDate        TypeName = "DATE"
	TypeTime        TypeName = "TIME"
	TypeTimestampS  TypeName = "TIMESTAMP_S"
	TypeTimestampMS TypeName = "TIMESTAMP_MS"
	TypeTimestamp   TypeName = "TIMESTAMP"
	TypeTimestampNS TypeName = "TIMESTAMP_NS"
	TypeTimestampTZ TypeName = "TIMESTAMPTZ"
)

// typeAliases maps alternative spellings to canonical names.
var typeAliases = map[TypeName]TypeName{
	"TIMESTAMP WITH TIME ZONE":    TypeTimestampTZ,
	"TIMESTAMP_TZ":                TypeTimestampTZ,
	"TIMESTAMP_SEC":               TypeTimestampS,
	"TIMESTAMP WITHOUT TIME ZONE": TypeTimestamp,
	"DATETIME":                    TypeTimestamp,
	"INT":                         TypeInteger,
	"INT4":                        TypeInteger,
	"INT8":                        TypeBigInt,
	"INT2":                        TypeSmallInt,
	"INT1":                        TypeTinyInt,
	"UINT8":                       TypeUBigInt,
	"UINT4":                       TypeUInteger,
	"UINT2":                       TypeUSmallInt,
	"UINT1":                       TypeUTinyInt,
	"FLOAT4":                      TypeFloat,
	"FLOAT8":                      TypeDouble,
	"REAL":                        TypeFloat,
	"STRING":                      TypeVarchar,
	"TEXT":                        TypeVarchar,
	"BOOL":                        TypeBoolean,
	"BYTEA":                       TypeBlob,
}

// Normalize returns the canonical name for t.
func (t TypeName) Normalize() TypeName {
	upper := TypeName(strings.ToUpper(strings.TrimSpace(string(t))))
	if mapped, ok := typeAliases[upper]; ok {
		return mapped
	}
	return upper
}

// DType returns the logical type of a column of this DuckDB type.
// Zoned timestamps are reported in UTC.
func (t TypeName) DType(n dtype.Nullability) (dtype.DType, error) {
	switch t.Normalize() {
	case TypeBoolean:
		return dtype.NewBool(n), nil
	case TypeTinyInt:
		return dtype.NewInt(8, n), nil
	case TypeSmallInt:
		return dtype.NewInt(16, n), nil
	case TypeInteger:
		return dtype.NewInt(32, n), nil
	case TypeBigInt:
		return dtype.NewInt(64, n), nil
	case TypeUTinyInt:
		return dtype.NewUInt(8, n), nil
	case TypeUSmallInt:
		return dtype.NewUInt(16, n), nil
	case TypeUInteger:
		return dtype.NewUInt(32, n), nil
	case TypeUBigInt:
		return dtype.NewUInt(64, n), nil
	case TypeFloat:
		return dtype.NewFloat(32, n), nil
	case TypeDouble:
		return dtype.NewFloat(64, n), nil
	case TypeVarchar:
		return dtype.NewUtf8(n), nil
	case TypeBlob:
		return dtype.NewBinary(n), nil
	case TypeDate:
		return dtype.NewDate(dtype.Days, n), nil
	case TypeTime:
		return dtype.NewTime(dtype.Microseconds, n), nil
	case TypeTimestampS:
		return dtype.NewTimestamp(dtype.Seconds, "", n), nil
	case TypeTimestampMS:
		return dtype.NewTimestamp(dtype.Milliseconds, "", n), nil
	case TypeTimestamp:
		return dtype.NewTimestamp(dtype.Microseconds, "", n), nil
	case TypeTimestampNS:
		return dtype.NewTimestamp(dtype.Nanoseconds, "", n), nil
	case TypeTimestampTZ:
		return dtype.NewTimestamp(dtype.Microseconds, "UTC", n), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}
