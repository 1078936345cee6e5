package polars

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedNode indicates a node with none of the known variant keys.
	ErrUnrecognizedNode = errors.New("unrecognized polars expression")

	// ErrUnsupportedOperator indicates a binary operator outside the operator table.
	ErrUnsupportedOperator = errors.New("unsupported polars binary operator")

	// ErrUnsupportedLiteralType indicates a literal type tag outside the type resolver.
	ErrUnsupportedLiteralType = errors.New("unsupported polars literal type")

	// ErrUnsupportedConstruct indicates a recognized construct that is intentionally
	// not translated: Series literals, zoned datetimes, null-equal IsIn, substring
	// containment.
	ErrUnsupportedConstruct = errors.New("unsupported polars construct")

	// ErrUnsupportedFunction indicates a function that is not recognized at all.
	ErrUnsupportedFunction = errors.New("unsupported polars function")

	// ErrMalformedNode indicates a payload whose structure does not match its tag.
	ErrMalformedNode = errors.New("malformed polars expression")

	errInvalidByte = errors.New("binary literal must be a byte array or string")
)

// TranslateError is returned by Parse and Translate.
// Kind is one of the package sentinels; errors.Is matches against it.
type TranslateError struct {
	Kind   error
	Detail string
}

func (e *TranslateError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *TranslateError) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &TranslateError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
