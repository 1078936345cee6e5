package lazyscan

import (
	"errors"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/lazyscan/auth"
	"github.com/hugr-lab/lazyscan/catalog"
)

// ServerConfig contains configuration for the lazyscan Flight server.
type ServerConfig struct {
	// Catalog provides the relations to serve.
	// REQUIRED: MUST NOT be nil.
	Catalog *catalog.Catalog

	// Auth provides authentication logic.
	// OPTIONAL: If nil, no authentication (all requests allowed).
	Auth auth.Authenticator

	// Allocator for Arrow memory management.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger

	// LogLevel sets the logging level of a text logger on stderr.
	// OPTIONAL: If nil, uses Info level.
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level

	// MaxMessageSize sets maximum gRPC message size in bytes.
	// OPTIONAL: If 0, uses gRPC default (4MB).
	// Recommended: 16MB for large Arrow batches.
	MaxMessageSize int

	// Address is the server's public address (e.g., "localhost:50051").
	// OPTIONAL: If empty, FlightEndpoint locations will not include URI.
	Address string
}

// Standard errors returned by the lazyscan package.
var (
	// ErrInvalidConfig indicates ServerConfig validation failed.
	ErrInvalidConfig = errors.New("invalid server config")
)
