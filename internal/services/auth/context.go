package auth

import "context"

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

// Identity is attached to the request context once a bearer token has been
// validated. IsAdmin is only set after the profile lookup done by the admin
// guard, never from token claims.
type Identity struct {
	UserID  string
	SID     string
	IsAdmin bool
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
