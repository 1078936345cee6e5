// Package polars translates Polars expression trees into internal expressions.
//
// Polars serializes a lazy expression with expr.meta.write_json() as nested
// single-key JSON objects whose keys name the variant:
//
//	{"BinaryExpr": {"left": {"Column": "a"}, "op": "GtEq", "right": {"Literal": {"Int": 5}}}}
//
// Parse turns that JSON into a closed Node tree and Translate lowers the tree
// to an expr.Expression. Only comparisons, boolean conjunction and
// disjunction, column references and scalar literals are supported; anything
// else fails with an error wrapping one of the package sentinels:
//
//	e, err := polars.TranslateJSON(data)
//	if errors.Is(err, polars.ErrUnsupportedOperator) {
//	    // reject the pushdown
//	}
//
// Literals arrive in two historical wire shapes, the legacy
// {"Literal": {"Int": 5}} (optionally wrapped in "Dyn") and the current
// {"Scalar": {"dtype": "Int64", "value": {"Int64": 5}}}. Both are normalized
// into one canonical literal before type resolution.
package polars
