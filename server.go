package lazyscan

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/lazyscan/auth"
	"github.com/hugr-lab/lazyscan/flight"
)

// NewServer registers the lazyscan Flight service on the provided gRPC server.
//
// Returns error if config is invalid (e.g., nil Catalog).
// Does NOT start the gRPC server - the caller controls its lifecycle.
//
// For authentication, create the gRPC server with ServerOptions:
//
//	config := lazyscan.ServerConfig{
//	    Catalog: cat,
//	    Auth:    lazyscan.StaticTokens(map[string]string{"secret": "alice"}),
//	}
//	grpcServer := grpc.NewServer(lazyscan.ServerOptions(config)...)
//	if err := lazyscan.NewServer(grpcServer, config); err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
func NewServer(grpcServer *grpc.Server, config ServerConfig) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	allocator := config.Allocator
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	logger := loggerFor(config)

	flightServer := flight.NewServer(config.Catalog, allocator, logger, config.Address)
	flight.RegisterFlightServer(grpcServer, flightServer)

	logger.Info("lazyscan Flight server registered",
		"relations", config.Catalog.Len(),
		"has_auth", config.Auth != nil,
		"max_message_size", config.MaxMessageSize,
	)
	return nil
}

// validateConfig checks that required ServerConfig fields are valid.
func validateConfig(config ServerConfig) error {
	if config.Catalog == nil {
		return fmt.Errorf("catalog is required")
	}
	if config.MaxMessageSize < 0 {
		return fmt.Errorf("max message size must be non-negative, got %d", config.MaxMessageSize)
	}
	return nil
}

func loggerFor(config ServerConfig) *slog.Logger {
	switch {
	case config.Logger != nil:
		return config.Logger
	case config.LogLevel != nil:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *config.LogLevel}))
	default:
		return slog.Default()
	}
}

// ServerOptions returns gRPC server options with authentication interceptors
// and message size limits taken from config.
func ServerOptions(config ServerConfig) []grpc.ServerOption {
	var opts []grpc.ServerOption

	if config.Auth != nil {
		logger := loggerFor(config)
		opts = append(opts,
			grpc.UnaryInterceptor(auth.UnaryServerInterceptor(config.Auth, logger)),
			grpc.StreamInterceptor(auth.StreamServerInterceptor(config.Auth, logger)),
		)
	}

	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}

	return opts
}
