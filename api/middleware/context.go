package middleware

import (
	"context"

	"github.com/google/uuid"
	pkgAuth "github.com/sarisari/backoffice/pkg/auth"
)

func UserIDFromContext(ctx context.Context) string {
	id, ok := pkgAuth.IdentityFromContext(ctx)
	if !ok {
		return ""
	}
	return id.UserID.String()
}

func RoleFromContext(ctx context.Context) string {
	id, ok := pkgAuth.IdentityFromContext(ctx)
	if !ok {
		return ""
	}
	return string(id.Role)
}

func StoreIDFromContext(ctx context.Context) string {
	id, ok := pkgAuth.IdentityFromContext(ctx)
	if !ok || id.ActiveStoreID == nil || *id.ActiveStoreID == uuid.Nil {
		return ""
	}
	return id.ActiveStoreID.String()
}

// AccessIDFromContext returns the jti of the access token that authenticated
// the request.
func AccessIDFromContext(ctx context.Context) string {
	id, ok := pkgAuth.IdentityFromContext(ctx)
	if !ok {
		return ""
	}
	return id.AccessID
}
