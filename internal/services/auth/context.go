package auth

import "context"

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller placed in the request context by the
// auth middleware.
type Identity struct {
	UserID string
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
