package duckdb

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hugr-lab/lazyscan/dtype"
	"github.com/hugr-lab/lazyscan/expr"
)

var sqlOperators = map[expr.Operator]string{
	expr.OpEq:    "=",
	expr.OpNotEq: "<>",
	expr.OpLt:    "<",
	expr.OpLte:   "<=",
	expr.OpGt:    ">",
	expr.OpGte:   ">=",
	expr.OpAnd:   "AND",
	expr.OpOr:    "OR",
}

// Encode renders an expression as a DuckDB boolean SQL expression suitable
// for a WHERE clause. Every binary expression is parenthesized.
func Encode(e expr.Expression) (string, error) {
	switch ex := e.(type) {
	case *expr.Column:
		return quoteIdentifier(ex.Name), nil
	case *expr.Literal:
		return encodeLiteral(ex)
	case *expr.BinaryExpr:
		ex = columnFirst(ex)
		op, ok := sqlOperators[ex.Op]
		if !ok {
			return "", fmt.Errorf("%w: operator %v", ErrUnsupportedExpression, ex.Op)
		}
		left, err := Encode(ex.Left)
		if err != nil {
			return "", err
		}
		right, err := Encode(ex.Right)
		if err != nil {
			return "", err
		}
		return "(" + left + " " + op + " " + right + ")", nil
	case nil:
		return "", fmt.Errorf("%w: nil expression", ErrUnsupportedExpression)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedExpression, e)
	}
}

// columnFirst rewrites "literal op column" comparisons as "column op' literal".
func columnFirst(b *expr.BinaryExpr) *expr.BinaryExpr {
	if !b.Op.IsComparison() {
		return b
	}
	lit, isLit := b.Left.(*expr.Literal)
	col, isCol := b.Right.(*expr.Column)
	if !isLit || !isCol {
		return b
	}
	return expr.Binary(b.Op.Swap(), col, lit)
}

func encodeLiteral(lit *expr.Literal) (string, error) {
	if lit.Value == nil {
		return "NULL", nil
	}

	if ext, ok := lit.DType.(dtype.Extension); ok {
		return encodeTemporal(ext, lit.Value)
	}

	switch v := lit.Value.(type) {
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloat(float64(v), 32, "FLOAT"), nil
	case float64:
		return formatFloat(v, 64, "DOUBLE"), nil
	case string:
		return quoteLiteral(v), nil
	case []byte:
		return formatBlob(v), nil
	default:
		return "", fmt.Errorf("%w: literal value %T", ErrUnsupportedExpression, lit.Value)
	}
}

func formatFloat(v float64, bits int, typeName string) string {
	switch {
	case math.IsNaN(v):
		return "'nan'::" + typeName
	case math.IsInf(v, 1):
		return "'inf'::" + typeName
	case math.IsInf(v, -1):
		return "'-inf'::" + typeName
	}
	return strconv.FormatFloat(v, 'g', -1, bits)
}

// formatBlob formats bytes as a BLOB literal using \x escapes.
func formatBlob(b []byte) string {
	var sb strings.Builder
	sb.WriteString("'")
	for _, c := range b {
		sb.WriteString(`\x`)
		sb.WriteString(hex.EncodeToString([]byte{c}))
	}
	sb.WriteString("'::BLOB")
	return sb.String()
}

func encodeTemporal(ext dtype.Extension, value any) (string, error) {
	meta, err := dtype.DecodeTemporalMetadata(ext.ID, ext.Metadata)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedExpression, err)
	}

	var v int64
	switch x := value.(type) {
	case int32:
		v = int64(x)
	case int64:
		v = x
	default:
		return "", fmt.Errorf("%w: %s literal holds %T", ErrUnsupportedExpression, ext.ID, value)
	}

	switch ext.ID {
	case dtype.DateID:
		var t time.Time
		if meta.Unit == dtype.Days {
			t = time.Unix(v*86400, 0).UTC()
		} else {
			t = time.UnixMilli(v).UTC()
		}
		return "DATE '" + t.Format("2006-01-02") + "'", nil

	case dtype.TimeID:
		t := time.Unix(0, v*unitNanos(meta.Unit)).UTC()
		return "TIME '" + t.Format("15:04:05.999999") + "'", nil

	default:
		t := time.Unix(0, 0).UTC()
		switch meta.Unit {
		case dtype.Seconds:
			t = time.Unix(v, 0).UTC()
		case dtype.Milliseconds:
			t = time.UnixMilli(v).UTC()
		case dtype.Microseconds:
			t = time.UnixMicro(v).UTC()
		case dtype.Nanoseconds:
			t = time.Unix(0, v).UTC()
		}
		if meta.TimeZone != "" {
			return "TIMESTAMPTZ '" + t.Format("2006-01-02 15:04:05.999999") + "+00'", nil
		}
		if meta.Unit == dtype.Nanoseconds {
			return "TIMESTAMP_NS '" + t.Format("2006-01-02 15:04:05.999999999") + "'", nil
		}
		return "TIMESTAMP '" + t.Format("2006-01-02 15:04:05.999999") + "'", nil
	}
}

func unitNanos(u dtype.TimeUnit) int64 {
	switch u {
	case dtype.Seconds:
		return int64(time.Second)
	case dtype.Milliseconds:
		return int64(time.Millisecond)
	case dtype.Microseconds:
		return int64(time.Microsecond)
	default:
		return 1
	}
}

// escapeString escapes single quotes in a string value for SQL.
func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quoteLiteral returns a SQL string literal with proper escaping.
func quoteLiteral(s string) string {
	return "'" + escapeString(s) + "'"
}

// quoteIdentifier returns a quoted identifier if needed.
func quoteIdentifier(name string) string {
	if needsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// quoteQualified quotes every dot-separated part of a table name.
func quoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func needsQuoting(name string) bool {
	if len(name) == 0 {
		return true
	}

	c := name[0]
	if !isLetter(c) && c != '_' {
		return true
	}
	for i := 1; i < len(name); i++ {
		c = name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return true
		}
	}

	switch strings.ToUpper(name) {
	case "SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "NULL", "TRUE", "FALSE",
		"TABLE", "JOIN", "ON", "AS", "IN", "IS", "LIKE", "BETWEEN", "CASE", "WHEN",
		"THEN", "ELSE", "END", "ORDER", "BY", "GROUP", "HAVING", "LIMIT", "OFFSET",
		"UNION", "ALL", "DISTINCT", "CAST", "INTERVAL", "DATE", "TIME", "TIMESTAMP":
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
