package auth

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
)

// UnaryServerInterceptor creates a gRPC unary interceptor for authentication.
// With a nil authenticator requests pass through unchanged.
func UnaryServerInterceptor(authenticator Authenticator, logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if authenticator == nil {
			return handler(ctx, req)
		}

		ctx, err := authenticate(ctx, authenticator, logger, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor creates a gRPC stream interceptor for authentication.
// With a nil authenticator requests pass through unchanged.
func StreamServerInterceptor(authenticator Authenticator, logger *slog.Logger) grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if authenticator == nil {
			return handler(srv, ss)
		}

		ctx, err := authenticate(ss.Context(), authenticator, logger, info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

func authenticate(ctx context.Context, authenticator Authenticator, logger *slog.Logger, method string) (context.Context, error) {
	token, err := ExtractToken(ctx)
	if err == nil {
		ctx, err = ValidateToken(ctx, token, authenticator)
	}
	if err != nil {
		if logger != nil {
			logger.Debug("Request rejected", "method", method, "error", err)
		}
		return ctx, err
	}
	return ctx, nil
}

// wrappedServerStream wraps grpc.ServerStream with an authenticated context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
