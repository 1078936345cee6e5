package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GetFlightInfo negotiates a scan without opening the relation.
//
// A CMD descriptor carries an encoded ScanTicket. A PATH descriptor of one
// element names a relation and stands for a full scan of it. The returned
// FlightInfo holds the negotiated schema and a ticket for DoGet. Unknown
// columns, malformed tickets and untranslatable predicates are rejected here
// with InvalidArgument.
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	ctx = EnrichContextMetadata(ctx)

	s.logger.Debug("GetFlightInfo called",
		"type", desc.GetType(),
		"trace_id", TraceIDFromContext(ctx),
	)

	ticket, err := s.ticketFromDescriptor(desc)
	if err != nil {
		return nil, err
	}

	entry, err := s.catalog.Lookup(ticket.Relation)
	if err != nil {
		return nil, toStatus(err, "lookup")
	}

	opts, err := ticket.Options()
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid predicate: %v", err)
	}

	prepared, err := entry.Source.Prepare(opts)
	if err != nil {
		s.logger.Debug("Scan rejected",
			"relation", ticket.Relation,
			"error", err,
		)
		return nil, toStatus(err, "prepare scan")
	}

	data, err := EncodeTicket(*ticket)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "%v", err)
	}

	s.logger.Debug("GetFlightInfo successful",
		"relation", ticket.Relation,
		"num_fields", prepared.Schema.NumFields(),
		"predicate", prepared.Predicate,
	)

	return &flight.FlightInfo{
		Schema:           flight.SerializeSchema(prepared.Schema, s.allocator),
		FlightDescriptor: desc,
		Endpoint:         s.endpoint(data),
		TotalRecords:     -1,
		TotalBytes:       -1,
	}, nil
}

// GetSchema returns the negotiated schema for a descriptor.
func (s *Server) GetSchema(ctx context.Context, desc *flight.FlightDescriptor) (*flight.SchemaResult, error) {
	info, err := s.GetFlightInfo(ctx, desc)
	if err != nil {
		return nil, err
	}
	return &flight.SchemaResult{Schema: info.Schema}, nil
}

func (s *Server) ticketFromDescriptor(desc *flight.FlightDescriptor) (*ScanTicket, error) {
	switch desc.GetType() {
	case flight.DescriptorCMD:
		t, err := DecodeTicket(desc.GetCmd())
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid command: %v", err)
		}
		return t, nil

	case flight.DescriptorPATH:
		path := desc.GetPath()
		if len(path) != 1 || path[0] == "" {
			return nil, status.Error(codes.InvalidArgument, "path must contain exactly 1 element: [relation_name]")
		}
		return &ScanTicket{Relation: path[0]}, nil

	default:
		return nil, status.Error(codes.InvalidArgument, "descriptor must be CMD or PATH type")
	}
}
