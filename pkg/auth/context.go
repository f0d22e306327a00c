package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/pkg/enums"
)

type identityKey struct{}

// Identity is what a verified access token says about the caller.
type Identity struct {
	UserID        uuid.UUID
	ActiveStoreID *uuid.UUID
	Role          enums.MemberRole
	AccessID      string
}

// IdentityFromClaims copies the request-scoped fields out of parsed claims.
func IdentityFromClaims(claims *AccessTokenClaims) Identity {
	if claims == nil {
		return Identity{}
	}
	return Identity{
		UserID:        claims.UserID,
		ActiveStoreID: claims.ActiveStoreID,
		Role:          claims.Role,
		AccessID:      claims.ID,
	}
}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller set by the auth middleware. The
// boolean is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == uuid.Nil {
		return Identity{}, false
	}
	return id, true
}
