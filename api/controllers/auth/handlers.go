package auth

import (
	"context"
	"net/http"

	"github.com/sarisari/backoffice/api/responses"
	"github.com/sarisari/backoffice/api/validators"
	"github.com/sarisari/backoffice/internal/auth"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/logger"
)

const (
	msgSignedIn    = "Signed in successfully"
	msgRegistered  = "Account created successfully"
	msgCurrentUser = "Current user retrieved successfully"
)

type currentUserResolver interface {
	CurrentUser(ctx context.Context) (*auth.CurrentUser, error)
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, msgSignedIn, result, nil)
	}
}

// AuthRegister creates the account and its first store, then signs the new
// user in.
func AuthRegister(reg auth.RegisterService, svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil || svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := reg.Register(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginRequest{Email: body.Email, Password: body.Password})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusCreated, msgRegistered, result, nil)
	}
}

// CurrentUser returns the authenticated user with their current store.
func CurrentUser(resolver currentUserResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "current user resolver unavailable"))
			return
		}

		user, err := resolver.CurrentUser(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, msgCurrentUser, map[string]*auth.CurrentUser{"user": user}, nil)
	}
}
