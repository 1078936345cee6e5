package lazyscan

import (
	"context"

	"github.com/hugr-lab/lazyscan/auth"
)

// Authenticator validates bearer tokens and returns user identity.
// This is re-exported from the auth package for convenience.
type Authenticator = auth.Authenticator

// BearerAuth creates an Authenticator from a validation function.
func BearerAuth(validateFunc func(token string) (identity string, err error)) Authenticator {
	return auth.BearerAuth(validateFunc)
}

// StaticTokens creates an Authenticator from a token to identity map.
func StaticTokens(tokens map[string]string) Authenticator {
	return auth.StaticTokens(tokens)
}

// IdentityFromContext retrieves the authenticated user identity from context.
// Relations can use it in Scan to filter by caller.
func IdentityFromContext(ctx context.Context) string {
	return auth.IdentityFromContext(ctx)
}
