package auth

import (
	"context"

	"github.com/mazurov/bloglist-server/internal/models"
)

// Identity is the typed result of resolving a bearer token. A nil User means
// the request is unauthenticated; handlers branch on that explicitly instead
// of assuming a user is always attached.
type Identity struct {
	User  *models.User
	Token string
}

// Authenticated reports whether the identity resolved to a persisted user
func (i Identity) Authenticated() bool {
	return i.User != nil
}

type contextKey int

const (
	tokenKey contextKey = iota
	identityKey
)

// ContextWithToken stores a raw bearer token in the context
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the raw bearer token, or "" when the request
// carried none
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// ContextWithIdentity stores a resolved identity in the context
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the resolved identity. The zero Identity is
// returned for unauthenticated requests.
func IdentityFromContext(ctx context.Context) Identity {
	identity, _ := ctx.Value(identityKey).(Identity)
	return identity
}
