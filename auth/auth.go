// Package auth provides bearer-token authentication for the lazyscan Flight server.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
)

var (
	// ErrInvalidAuthHeader is returned when the authorization header is malformed.
	ErrInvalidAuthHeader = errors.New("authorization header must use Bearer scheme")

	// ErrTokenIsEmpty is returned when the bearer token is missing or empty.
	ErrTokenIsEmpty = errors.New("authorization token is empty")

	// ErrUnauthenticated is returned when a token is not accepted.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Authenticator validates bearer tokens and returns user identity.
// Implementations MUST be goroutine-safe.
type Authenticator interface {
	// Authenticate validates a bearer token and returns user identity.
	// The identity is attached to the request context and used in logs.
	Authenticate(ctx context.Context, token string) (identity string, err error)
}

// noAuthenticator is an Authenticator that allows all requests.
type noAuthenticator struct{}

// NoAuth returns an Authenticator that accepts any non-empty token.
// Useful for development/testing. DO NOT use in production.
func NoAuth() Authenticator {
	return &noAuthenticator{}
}

func (n *noAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	return "anonymous", nil
}

// staticTokens maps fixed tokens to identities.
type staticTokens struct {
	tokens map[string]string
}

// StaticTokens returns an Authenticator accepting a fixed set of tokens.
// The map goes from token to identity and is copied.
func StaticTokens(tokens map[string]string) Authenticator {
	st := &staticTokens{tokens: make(map[string]string, len(tokens))}
	for token, identity := range tokens {
		st.tokens[token] = identity
	}
	return st
}

// Authenticate compares the token against every known token in constant time.
func (s *staticTokens) Authenticate(ctx context.Context, token string) (string, error) {
	identity, found := "", false
	for known, id := range s.tokens {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			identity, found = id, true
		}
	}
	if !found {
		return "", ErrUnauthenticated
	}
	return identity, nil
}
