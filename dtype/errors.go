package dtype

import (
	"errors"
	"strings"
)

var (
	// ErrUnsupportedType indicates a type with no counterpart in the target type system.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidMetadata indicates malformed extension metadata.
	ErrInvalidMetadata = errors.New("invalid extension metadata")
)

// FieldNotFoundError is returned when a projection names a missing field.
type FieldNotFoundError struct {
	Name      string
	Available []string
}

func (e *FieldNotFoundError) Error() string {
	return "field not found: " + e.Name + " (available: " + strings.Join(e.Available, ", ") + ")"
}
