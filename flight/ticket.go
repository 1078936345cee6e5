package flight

import (
	"fmt"

	"github.com/hugr-lab/lazyscan/internal/msgpack"
	"github.com/hugr-lab/lazyscan/polars"
	"github.com/hugr-lab/lazyscan/scan"
)

// ScanTicket describes one lazy scan. It is used both as the command of a
// CMD FlightDescriptor and as the DoGet ticket.
type ScanTicket struct {
	// Relation is the catalog name of the relation to scan.
	Relation string `msgpack:"relation"`

	// Columns is the projection. Nil means all columns; an empty non-nil
	// slice selects no columns.
	Columns []string `msgpack:"columns"`

	// Predicate is Polars expression JSON as written by expr.meta.write_json().
	Predicate []byte `msgpack:"predicate,omitempty"`

	// NRows limits the number of rows. Nil means unlimited.
	NRows *int64 `msgpack:"n_rows,omitempty"`

	// BatchSize is the preferred batch size. Zero means the relation default.
	BatchSize int `msgpack:"batch_size,omitempty"`
}

// EncodeTicket serializes a ticket with MessagePack.
func EncodeTicket(t ScanTicket) ([]byte, error) {
	if t.Relation == "" {
		return nil, fmt.Errorf("relation name cannot be empty")
	}
	data, err := msgpack.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}
	return data, nil
}

// DecodeTicket parses a ticket produced by EncodeTicket.
func DecodeTicket(data []byte) (*ScanTicket, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("ticket cannot be empty")
	}

	var t ScanTicket
	if err := msgpack.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode ticket: %w", err)
	}
	if t.Relation == "" {
		return nil, fmt.Errorf("decoded ticket has empty relation name")
	}
	if t.NRows != nil && *t.NRows < 0 {
		return nil, fmt.Errorf("n_rows must be non-negative, got %d", *t.NRows)
	}
	if t.BatchSize < 0 {
		return nil, fmt.Errorf("batch_size must be non-negative, got %d", t.BatchSize)
	}
	return &t, nil
}

// Options converts the ticket into scan options, parsing the predicate.
func (t *ScanTicket) Options() (scan.Options, error) {
	opts := scan.Options{
		WithColumns: t.Columns,
		NRows:       t.NRows,
		BatchSize:   t.BatchSize,
	}
	if len(t.Predicate) > 0 {
		node, err := polars.Parse(t.Predicate)
		if err != nil {
			return scan.Options{}, err
		}
		opts.Predicate = node
	}
	return opts, nil
}
