// Package identity carries the already-authenticated principal
// through a request. Authentication itself happens in the storefront
// auth service; this package only validates the token it issued and
// exposes the resolved identity. Authorization decisions live with
// the board aggregate.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// Identity is a resolved acting principal.
type Identity struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	AvatarURL   string
}

// IsAnonymous reports whether this is the unauthenticated principal.
func (id Identity) IsAnonymous() bool {
	return id.UserID == uuid.Nil
}

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// FromContext retrieves the identity from the context. Returns the
// anonymous identity when none is set.
func FromContext(ctx context.Context) Identity {
	id, ok := ctx.Value(identityContextKey).(Identity)
	if !ok {
		return Identity{}
	}
	return id
}
