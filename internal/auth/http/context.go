// Package http provides HTTP middleware and handlers for authentication.
package http

import (
	"context"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
)

// identityKey is a context key type for storing authenticated claims.
type identityKey struct{}

// WithIdentity stores the verified claims of the authenticated caller in the
// context. Called by the authentication middleware after successful token
// verification; claims are never stored before the signature checks out.
func WithIdentity(ctx context.Context, claims *authDomain.Claims) context.Context {
	return context.WithValue(ctx, identityKey{}, claims)
}

// GetIdentity retrieves the authenticated caller's claims from the context.
// Returns (claims, true) if present, or (nil, false) if the request was not
// authenticated.
func GetIdentity(ctx context.Context) (*authDomain.Claims, bool) {
	claims, ok := ctx.Value(identityKey{}).(*authDomain.Claims)
	return claims, ok
}
