package duckdb

import "errors"

var (
	// ErrUnsupportedType indicates a column type with no logical equivalent.
	ErrUnsupportedType = errors.New("unsupported column type")

	// ErrUnsupportedExpression indicates a predicate that cannot be rendered as SQL.
	ErrUnsupportedExpression = errors.New("unsupported expression")
)
