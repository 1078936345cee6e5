package scan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"

	"github.com/hugr-lab/lazyscan/dtype"
	"github.com/hugr-lab/lazyscan/expr"
	"github.com/hugr-lab/lazyscan/polars"
)

// Options are the arguments of one lazy-source callback invocation.
type Options struct {
	// WithColumns is the projection. Nil means all columns.
	WithColumns []string

	// Predicate is the Polars predicate to push down. Nil means none.
	Predicate polars.Node

	// NRows limits the number of rows produced. Nil means unlimited.
	NRows *int64

	// BatchSize is the preferred batch size. Zero means the relation default.
	BatchSize int
}

// Callback is the lazy-source callback returned by Source.Register.
type Callback func(ctx context.Context, opts Options) (*Stream, error)

// Source adapts a Relation to the lazy-source contract.
// A Source is immutable and safe for concurrent use.
type Source struct {
	name   string
	rel    Relation
	schema *arrow.Schema
	mem    memory.Allocator
	logger *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAllocator sets the allocator used for sentinel and conformed batches.
// Defaults to memory.DefaultAllocator.
func WithAllocator(mem memory.Allocator) Option {
	return func(s *Source) {
		if mem != nil {
			s.mem = mem
		}
	}
}

// WithName sets the relation name used in logs.
func WithName(name string) Option {
	return func(s *Source) { s.name = name }
}

// NewSource returns a Source over rel. It fails if the relation schema has
// no Arrow representation.
func NewSource(rel Relation, opts ...Option) (*Source, error) {
	schema, err := dtype.ToArrowSchema(rel.DType())
	if err != nil {
		return nil, fmt.Errorf("relation schema: %w", err)
	}

	s := &Source{
		rel:    rel,
		schema: schema,
		mem:    memory.DefaultAllocator,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Relation returns the wrapped relation.
func (s *Source) Relation() Relation { return s.rel }

// Schema returns the output schema for the given projection.
func (s *Source) Schema(columns []string) (*arrow.Schema, error) {
	return ProjectSchema(s.schema, columns)
}

// Register returns the full output schema and the scan callback.
func (s *Source) Register() (*arrow.Schema, Callback) {
	return s.schema, s.Scan
}

// Prepared is a validated scan that has not opened the relation yet.
type Prepared struct {
	Schema    *arrow.Schema
	Predicate expr.Expression
	request   Request
	nRows     int64
	history   []State
}

// State returns the last state reached while preparing.
func (p *Prepared) State() State { return p.history[len(p.history)-1] }

// History returns the states passed through while preparing, starting with
// StateCreated.
func (p *Prepared) History() []State { return append([]State(nil), p.history...) }

func (p *Prepared) advance(st State) { p.history = append(p.history, st) }

// Prepare negotiates the schema and translates the predicate without opening
// the relation. Translation failures are returned here.
func (s *Source) Prepare(opts Options) (*Prepared, error) {
	if opts.BatchSize < 0 {
		return nil, fmt.Errorf("%w: batch size %d", ErrInvalidOptions, opts.BatchSize)
	}
	nRows := int64(-1)
	if opts.NRows != nil {
		if *opts.NRows < 0 {
			return nil, fmt.Errorf("%w: row limit %d", ErrInvalidOptions, *opts.NRows)
		}
		nRows = *opts.NRows
	}

	p := &Prepared{nRows: nRows, history: []State{StateCreated}}

	schema, err := s.Schema(opts.WithColumns)
	if err != nil {
		return nil, err
	}
	p.Schema = schema
	p.advance(StateSchemaNegotiated)

	if opts.Predicate != nil {
		pred, err := polars.Translate(opts.Predicate)
		if err != nil {
			return nil, fmt.Errorf("translate predicate: %w", err)
		}
		p.Predicate = pred
		p.advance(StatePredicateTranslated)
	} else {
		p.advance(StatePredicateAbsent)
	}

	p.request = Request{
		Projection: opts.WithColumns,
		Predicate:  p.Predicate,
		BatchSize:  opts.BatchSize,
	}
	return p, nil
}

// Scan runs the callback: it prepares the scan, then opens exactly one
// relation scan. Nothing is opened when preparation fails.
func (s *Source) Scan(ctx context.Context, opts Options) (*Stream, error) {
	p, err := s.Prepare(opts)
	if err != nil {
		s.logger.Debug("Scan rejected", "relation", s.name, "error", err)
		return nil, err
	}
	return s.Open(ctx, p)
}

// Open opens the relation scan for a prepared request.
func (s *Source) Open(ctx context.Context, p *Prepared) (*Stream, error) {
	id := uuid.NewString()
	s.logger.Debug("Opening relation scan",
		"relation", s.name,
		"scan_id", id,
		"columns", p.request.Projection,
		"predicate", p.Predicate,
		"batch_size", p.request.BatchSize,
		"n_rows", p.nRows,
	)

	reader, err := s.rel.Scan(ctx, p.request)
	if err != nil {
		return nil, fmt.Errorf("scan relation: %w", err)
	}

	return newStream(ctx, streamConfig{
		id:      id,
		name:    s.name,
		schema:  p.Schema,
		reader:  reader,
		nRows:   p.nRows,
		history: p.History(),
		mem:     s.mem,
		logger:  s.logger,
	}), nil
}
