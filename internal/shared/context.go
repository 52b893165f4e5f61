package shared

import "context"

// Identity describes the authenticated caller. Authentication itself is
// performed by the gateway in front of this service; handlers only consume
// the resolved identity.
type Identity struct {
	UserID  int64
	Name    string
	IsAdmin bool
}

type identityContextKey struct{}

// ContextWithIdentity stores the caller identity in the context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the caller identity, nil when unauthenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
