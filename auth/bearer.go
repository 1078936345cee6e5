package auth

import (
	"context"
)

// bearerAuthenticator wraps a user-provided validation function.
type bearerAuthenticator struct {
	validateFunc func(token string) (identity string, err error)
}

// BearerAuth creates an Authenticator from a validation function.
//
// Example:
//
//	auth := BearerAuth(func(token string) (string, error) {
//	    user, err := lookupToken(token)
//	    if err != nil {
//	        return "", auth.ErrUnauthenticated
//	    }
//	    return user.ID, nil
//	})
func BearerAuth(validateFunc func(token string) (identity string, err error)) Authenticator {
	return &bearerAuthenticator{
		validateFunc: validateFunc,
	}
}

func (b *bearerAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.validateFunc(token)
}
