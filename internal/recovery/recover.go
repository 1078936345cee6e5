// Package recovery converts panics in relation code into errors so a faulty
// relation cannot crash the server.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecoverToError calls fn and converts a panic into an Internal gRPC error.
//
// Example:
//
//	err := recovery.RecoverToError(logger, "Stream", func() error {
//	    for reader.Next() { ... }
//	    return reader.Err()
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = status.Errorf(codes.Internal, "%s panicked: %v", operation, r)
		}
	}()

	return fn()
}

// RecoverToValue calls fn and converts a panic into a zero value and a
// plain error.
//
// Example:
//
//	stream, err := recovery.RecoverToValue(logger, "Scan", func() (*scan.Stream, error) {
//	    return source.Scan(ctx, opts)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			var zero T
			result = zero
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()

	return fn()
}
