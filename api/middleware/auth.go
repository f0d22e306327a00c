package middleware

import (
	"net/http"

	"github.com/sarisari/backoffice/api/responses"
	"github.com/sarisari/backoffice/api/validators"
	pkgAuth "github.com/sarisari/backoffice/pkg/auth"
	"github.com/sarisari/backoffice/pkg/auth/session"
	"github.com/sarisari/backoffice/pkg/config"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the caller
// identity.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			identity := pkgAuth.IdentityFromClaims(claims)
			ctx := pkgAuth.WithIdentity(r.Context(), identity)

			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.UserID.String())
				if identity.ActiveStoreID != nil {
					ctx = logg.WithStoreID(ctx, identity.ActiveStoreID.String())
				}
				if identity.Role != "" {
					ctx = logg.WithField(ctx, "actor_role", string(identity.Role))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
