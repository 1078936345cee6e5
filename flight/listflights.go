package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/lazyscan/internal/serialize"
)

// ListingCommand is the descriptor command of the catalog listing FlightInfo.
const ListingCommand = "ListFlights"

// ListFlights returns the catalog.
//
// The first FlightInfo is the listing: a CMD descriptor with ListingCommand
// whose endpoint ticket carries a ZStandard-compressed Arrow IPC table of
// relations (see internal/serialize). It is followed by one FlightInfo per
// relation, in name order, with a PATH descriptor of the relation name, the
// full relation schema and a full-scan ticket.
//
// Criteria is ignored.
func (s *Server) ListFlights(criteria *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	s.logger.Debug("ListFlights called", "relations", s.catalog.Len())

	catalogData, err := serialize.SerializeCatalog(s.catalog, s.allocator)
	if err != nil {
		s.logger.Error("Failed to serialize catalog", "error", err)
		return status.Errorf(codes.Internal, "failed to serialize catalog: %v", err)
	}

	compressed, err := serialize.CompressCatalog(catalogData)
	if err != nil {
		s.logger.Error("Failed to compress catalog", "error", err)
		return status.Errorf(codes.Internal, "failed to compress catalog: %v", err)
	}

	s.logger.Debug("Catalog serialized",
		"uncompressed_bytes", len(catalogData),
		"compressed_bytes", len(compressed),
	)

	listing := &flight.FlightInfo{
		FlightDescriptor: &flight.FlightDescriptor{
			Type: flight.DescriptorCMD,
			Cmd:  []byte(ListingCommand),
		},
		Endpoint: []*flight.FlightEndpoint{
			{Ticket: &flight.Ticket{Ticket: compressed}},
		},
		TotalRecords: int64(s.catalog.Len()),
		TotalBytes:   int64(len(compressed)),
	}
	if err := stream.Send(listing); err != nil {
		s.logger.Error("Failed to send FlightInfo", "error", err)
		return status.Errorf(codes.Internal, "failed to send flight info: %v", err)
	}

	for _, e := range s.catalog.Entries() {
		if err := stream.Context().Err(); err != nil {
			return status.FromContextError(err).Err()
		}

		ticket, err := EncodeTicket(ScanTicket{Relation: e.Name})
		if err != nil {
			return status.Errorf(codes.Internal, "%v", err)
		}
		schema, _ := e.Source.Register()

		info := &flight.FlightInfo{
			Schema: flight.SerializeSchema(schema, s.allocator),
			FlightDescriptor: &flight.FlightDescriptor{
				Type: flight.DescriptorPATH,
				Path: []string{e.Name},
			},
			Endpoint:     s.endpoint(ticket),
			TotalRecords: -1,
			TotalBytes:   -1,
		}
		if err := stream.Send(info); err != nil {
			s.logger.Error("Failed to send FlightInfo", "relation", e.Name, "error", err)
			return status.Errorf(codes.Internal, "failed to send flight info: %v", err)
		}
	}

	s.logger.Debug("ListFlights completed successfully",
		"relations", s.catalog.Len(),
		"compressed_bytes", len(compressed),
	)
	return nil
}
