package scan

import "errors"

var (
	// ErrUnknownColumn indicates a projection naming a column the relation lacks.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDuplicateColumn indicates a projection naming a column twice.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrInvalidOptions indicates negative row limits or batch sizes.
	ErrInvalidOptions = errors.New("invalid scan options")

	// ErrSchemaMismatch indicates a relation batch that cannot be conformed
	// to the negotiated schema.
	ErrSchemaMismatch = errors.New("batch does not match negotiated schema")
)
