// Package flight serves catalog relations as lazy scans over Arrow Flight.
//
// Clients describe a scan with a msgpack-encoded ScanTicket: the relation
// name, a projection, an optional Polars predicate in its JSON form, a row
// limit and a batch size. GetFlightInfo negotiates the schema and translates
// the predicate without touching the relation; DoGet runs the scan and streams
// every batch, including the trailing zero-row batch.
package flight

import (
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/lazyscan/catalog"
)

// Server implements the Flight service handlers.
// Embeds BaseFlightServer so unimplemented RPCs return Unimplemented.
type Server struct {
	flight.BaseFlightServer

	catalog   *catalog.Catalog
	allocator memory.Allocator
	logger    *slog.Logger
	address   string // public address for FlightEndpoint locations
}

// NewServer creates a Flight server over the given catalog.
// The address, when set, is advertised as the endpoint location.
func NewServer(cat *catalog.Catalog, allocator memory.Allocator, logger *slog.Logger, address string) *Server {
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		catalog:   cat,
		allocator: allocator,
		logger:    logger,
		address:   address,
	}
}

// RegisterFlightServer registers the Flight service on the provided gRPC server.
func RegisterFlightServer(grpcServer *grpc.Server, flightServer *Server) {
	flight.RegisterFlightServiceServer(grpcServer, flightServer)
}

// endpoint returns the single endpoint serving the given ticket.
func (s *Server) endpoint(ticket []byte) []*flight.FlightEndpoint {
	ep := &flight.FlightEndpoint{Ticket: &flight.Ticket{Ticket: ticket}}
	if s.address != "" {
		ep.Location = []*flight.Location{{Uri: "grpc://" + s.address}}
	}
	return []*flight.FlightEndpoint{ep}
}
