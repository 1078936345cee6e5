package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/lazyscan/internal/recovery"
	"github.com/hugr-lab/lazyscan/scan"
)

// DoGet runs the scan described by the ticket and streams its batches.
//
// Every batch of the bridged stream is written, so a successful response
// always ends with one zero-row batch. A relation error after streaming has
// begun is returned as an Internal status; the zero-row batch is then absent.
func (s *Server) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	t, err := DecodeTicket(ticket.GetTicket())
	if err != nil {
		s.logger.Error("Failed to decode ticket", "error", err)
		return status.Errorf(codes.InvalidArgument, "invalid ticket: %v", err)
	}

	entry, err := s.catalog.Lookup(t.Relation)
	if err != nil {
		return toStatus(err, "lookup")
	}

	opts, err := t.Options()
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid predicate: %v", err)
	}

	reader, err := recovery.RecoverToValue(s.logger, "Scan", func() (*scan.Stream, error) {
		return entry.Source.Scan(ctx, opts)
	})
	if err != nil {
		s.logger.Error("Failed to open scan",
			"relation", t.Relation,
			"trace_id", TraceIDFromContext(ctx),
			"error", err,
		)
		return toStatus(err, "scan")
	}
	defer reader.Release()

	s.logger.Debug("Starting record streaming",
		"relation", t.Relation,
		"scan_id", reader.ID(),
		"trace_id", TraceIDFromContext(ctx),
		"session_id", SessionIDFromContext(ctx),
		"num_fields", reader.Schema().NumFields(),
	)

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(reader.Schema()), ipc.WithAllocator(s.allocator))
	defer writer.Close()

	var batchCount int
	var totalRows int64
	err = recovery.RecoverToError(s.logger, "Stream", func() error {
		for reader.Next() {
			record := reader.RecordBatch()
			batchCount++
			totalRows += record.NumRows()

			if err := writer.Write(record); err != nil {
				s.logger.Error("Failed to write record batch",
					"relation", t.Relation,
					"batch", batchCount,
					"error", err,
				)
				return status.Errorf(codes.Internal, "failed to write batch %d: %v", batchCount, err)
			}
		}
		return reader.Err()
	})
	if err != nil {
		s.logger.Error("Scan failed during streaming",
			"relation", t.Relation,
			"scan_id", reader.ID(),
			"batch", batchCount,
			"error", err,
		)
		return toStatus(err, "scan")
	}

	s.logger.Debug("DoGet completed successfully",
		"relation", t.Relation,
		"scan_id", reader.ID(),
		"batches_sent", batchCount,
		"total_rows", totalRows,
	)
	return nil
}
