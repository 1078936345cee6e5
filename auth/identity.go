package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey int

const (
	identityKey contextKey = iota
)

// HeaderAuthorization is the gRPC metadata key carrying the bearer token.
const HeaderAuthorization = "authorization"

const bearerPrefix = "Bearer "

// WithIdentity returns a new context with the given user identity.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the authenticated user identity from context.
// Returns empty string for unauthenticated requests.
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey).(string)
	return identity
}

// TokenFromAuthorizationHeader parses a "Bearer <token>" header value.
func TokenFromAuthorizationHeader(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" {
		return "", ErrTokenIsEmpty
	}
	return token, nil
}

// ExtractToken extracts the bearer token from incoming gRPC metadata.
// Returns an empty token when no authorization header is present.
func ExtractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}
	headers := md.Get(HeaderAuthorization)
	if len(headers) == 0 {
		return "", nil
	}

	token, err := TokenFromAuthorizationHeader(headers[0])
	if err != nil {
		return "", status.Error(codes.Unauthenticated, err.Error())
	}
	return token, nil
}

// ValidateToken validates a bearer token using the provided Authenticator.
// Returns the context with identity set, or an Unauthenticated status error.
func ValidateToken(ctx context.Context, token string, authenticator Authenticator) (context.Context, error) {
	if token == "" {
		return ctx, status.Error(codes.Unauthenticated, "missing bearer token")
	}

	identity, err := authenticator.Authenticate(ctx, token)
	if err != nil {
		return ctx, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}
	return WithIdentity(ctx, identity), nil
}
