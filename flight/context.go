package flight

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey int

const (
	requestMetaKey contextKey = iota
)

// Metadata header keys used for log correlation.
const (
	// HeaderTraceID is the gRPC metadata header for a distributed trace identifier.
	HeaderTraceID = "lazyscan-trace-id"
	// HeaderSessionID is the gRPC metadata header for a client session identifier.
	HeaderSessionID = "lazyscan-client-session-id"
)

// RequestMeta carries request metadata extracted from gRPC headers.
type RequestMeta struct {
	TraceID   string
	SessionID string
}

// WithRequestMeta returns a context carrying meta.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey, &meta)
}

// MetaFromContext returns the request metadata, or nil if none was attached.
func MetaFromContext(ctx context.Context) *RequestMeta {
	meta, _ := ctx.Value(requestMetaKey).(*RequestMeta)
	return meta
}

// TraceIDFromContext returns the trace ID from context, or empty string if not set.
func TraceIDFromContext(ctx context.Context) string {
	if meta := MetaFromContext(ctx); meta != nil {
		return meta.TraceID
	}
	return ""
}

// SessionIDFromContext returns the session ID from context, or empty string if not set.
func SessionIDFromContext(ctx context.Context) string {
	if meta := MetaFromContext(ctx); meta != nil {
		return meta.SessionID
	}
	return ""
}

// EnrichContextMetadata extracts request metadata from the incoming gRPC
// context. An already enriched context is returned unchanged.
func EnrichContextMetadata(ctx context.Context) context.Context {
	if MetaFromContext(ctx) != nil {
		return ctx
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}

	var meta RequestMeta
	if values := md.Get(HeaderTraceID); len(values) > 0 {
		meta.TraceID = values[0]
	}
	if values := md.Get(HeaderSessionID); len(values) > 0 {
		meta.SessionID = values[0]
	}
	return WithRequestMeta(ctx, meta)
}
