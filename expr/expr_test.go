package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hugr-lab/lazyscan/dtype"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want string
	}{
		{"column", Col("a"), "$a"},
		{"int literal", Lit(dtype.NewInt(64, dtype.NonNullable), int64(5)), "5_i64"},
		{"null literal", Lit(dtype.NewUtf8(dtype.Nullable), nil), "null_utf8?"},
		{"string literal", Lit(dtype.NewUtf8(dtype.NonNullable), "x"), `"x"_utf8`},
		{"binary literal", Lit(dtype.NewBinary(dtype.NonNullable), []byte{0xab}), "0xab_binary"},
		{
			"nested",
			And(Gte(Col("a"), Lit(dtype.NewInt(64, dtype.NonNullable), int64(1))), Eq(Col("b"), Col("c"))),
			"(($a >= 1_i64) and ($b = $c))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	i64 := dtype.NewInt(64, dtype.NonNullable)

	tests := []struct {
		name string
		a, b Expression
		want bool
	}{
		{"same column", Col("a"), Col("a"), true},
		{"different column", Col("a"), Col("b"), false},
		{"same literal", Lit(i64, int64(1)), Lit(i64, int64(1)), true},
		{"literal value differs", Lit(i64, int64(1)), Lit(i64, int64(2)), false},
		{"literal Go type differs", Lit(i64, int64(1)), Lit(i64, int32(1)), false},
		{"literal nullability differs", Lit(i64, int64(1)), Lit(i64.WithNullability(dtype.Nullable), int64(1)), false},
		{"bytes", Lit(dtype.NewBinary(false), []byte("ab")), Lit(dtype.NewBinary(false), []byte("ab")), true},
		{"bytes vs string", Lit(dtype.NewBinary(false), []byte("ab")), Lit(dtype.NewBinary(false), "ab"), false},
		{"operator differs", Lt(Col("a"), Col("b")), Gt(Col("a"), Col("b")), false},
		{"operands differ", Lt(Col("a"), Col("b")), Lt(Col("b"), Col("a")), false},
		{"nil", nil, nil, true},
		{"nil vs column", nil, Col("a"), false},
		{"column vs literal", Col("a"), Lit(i64, int64(1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestReferencedColumns(t *testing.T) {
	e := Or(
		And(Eq(Col("b"), Col("a")), Gt(Col("c"), Lit(dtype.NewInt(32, false), int32(0)))),
		Lt(Col("a"), Col("d")),
	)

	got := ReferencedColumns(e)
	want := []string{"b", "a", "c", "d"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReferencedColumns() mismatch (-want +got):\n%s", diff)
	}

	if got := ReferencedColumns(Lit(dtype.NewBool(false), true)); len(got) != 0 {
		t.Errorf("ReferencedColumns(literal) = %v, want empty", got)
	}
}

func TestOperatorInverseAndSwap(t *testing.T) {
	tests := []struct {
		op      Operator
		inverse Operator
		swap    Operator
	}{
		{OpEq, OpNotEq, OpEq},
		{OpNotEq, OpEq, OpNotEq},
		{OpGt, OpLte, OpLt},
		{OpGte, OpLt, OpLte},
		{OpLt, OpGte, OpGt},
		{OpLte, OpGt, OpGte},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			inv, ok := tt.op.Inverse()
			if !ok || inv != tt.inverse {
				t.Errorf("Inverse() = %v, %v; want %v, true", inv, ok, tt.inverse)
			}
			if got := tt.op.Swap(); got != tt.swap {
				t.Errorf("Swap() = %v, want %v", got, tt.swap)
			}
			if !tt.op.IsComparison() || tt.op.IsLogical() {
				t.Errorf("%v should be a comparison", tt.op)
			}
		})
	}

	for _, op := range []Operator{OpAnd, OpOr} {
		if _, ok := op.Inverse(); ok {
			t.Errorf("%v should have no inverse", op)
		}
		if !op.IsLogical() {
			t.Errorf("%v should be logical", op)
		}
	}
}

func TestConjunction(t *testing.T) {
	if got := Conjunction(); got != nil {
		t.Errorf("Conjunction() = %v, want nil", got)
	}

	a, b, c := Col("a"), Col("b"), Col("c")
	if got := Conjunction(a); !Equal(got, a) {
		t.Errorf("Conjunction(a) = %v, want $a", got)
	}
	want := And(And(a, b), c)
	if got := Conjunction(a, b, c); !Equal(got, want) {
		t.Errorf("Conjunction(a, b, c) = %v, want %v", got, want)
	}
}
