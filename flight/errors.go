package flight

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/lazyscan/catalog"
	"github.com/hugr-lab/lazyscan/polars"
	"github.com/hugr-lab/lazyscan/scan"
)

// codeOf maps a lookup, translation or scan error to a gRPC code.
func codeOf(err error) codes.Code {
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return s.Code()
	}

	var translateErr *polars.TranslateError
	switch {
	case errors.Is(err, catalog.ErrRelationNotFound):
		return codes.NotFound
	case errors.As(err, &translateErr),
		errors.Is(err, scan.ErrUnknownColumn),
		errors.Is(err, scan.ErrDuplicateColumn),
		errors.Is(err, scan.ErrInvalidOptions):
		return codes.InvalidArgument
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// toStatus wraps err in a gRPC status error with the given message prefix.
// Status errors are returned unchanged.
func toStatus(err error, msg string) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Errorf(codeOf(err), "%s: %v", msg, err)
}
