package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/api/responses"
	pkgAuth "github.com/sarisari/backoffice/pkg/auth"
	"github.com/sarisari/backoffice/pkg/enums"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/logger"
)

type MembershipChecker interface {
	UserHasRole(ctx context.Context, userID, storeID uuid.UUID, roles ...enums.MemberRole) (bool, error)
}

// RequireStoreRoles checks the caller's live membership in the token's
// active store against allowed before executing the handler.
func RequireStoreRoles(checker MembershipChecker, logg *logger.Logger, allowed ...enums.MemberRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if checker == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership checker unavailable"))
				return
			}
			if len(allowed) == 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allowed roles missing"))
				return
			}

			identity, ok := pkgAuth.IdentityFromContext(ctx)
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}
			if identity.ActiveStoreID == nil || *identity.ActiveStoreID == uuid.Nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context required"))
				return
			}

			ok, err := checker.UserHasRole(ctx, identity.UserID, *identity.ActiveStoreID, allowed...)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership role"))
				return
			}
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient store role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
