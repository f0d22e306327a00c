package middleware

import (
	"net/http"

	"github.com/sarisari/backoffice/api/responses"
	pkgAuth "github.com/sarisari/backoffice/pkg/auth"
	"github.com/sarisari/backoffice/pkg/enums"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/logger"
)

const msgNoCurrentStore = "You don't have a current store. Please create a store first."

// StoreContext requires a current store on the token and a live membership
// in it, whatever the role. A membership removed after the token was minted
// is refused with 403.
func StoreContext(checker MembershipChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity, ok := pkgAuth.IdentityFromContext(ctx)
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}
			if StoreIDFromContext(ctx) == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNoStore, msgNoCurrentStore))
				return
			}
			if checker == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership checker unavailable"))
				return
			}

			member, err := checker.UserHasRole(ctx, identity.UserID, *identity.ActiveStoreID, enums.MemberRoles()...)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store membership"))
				return
			}
			if !member {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store membership inactive"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
