package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/api/responses"
	"github.com/sarisari/backoffice/api/validators"
	"github.com/sarisari/backoffice/internal/auth"
	pkgAuth "github.com/sarisari/backoffice/pkg/auth"
	"github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/logger"
)

type switchStoreRequest struct {
	StoreID string `json:"store_id" validate:"required,uuid"`
}

// AuthSwitchStore mints a new token that targets the requested store. It runs
// behind the auth middleware.
func AuthSwitchStore(svc auth.SwitchStoreService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "switch store service unavailable"))
			return
		}

		identity, ok := pkgAuth.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeUnauthorized, "user context missing"))
			return
		}

		var body switchStoreRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeID, err := uuid.Parse(body.StoreID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodeValidation, err, "invalid store_id"))
			return
		}

		result, err := svc.Switch(r.Context(), auth.SwitchStoreInput{
			UserID:        identity.UserID,
			StoreID:       storeID,
			AccessTokenID: identity.AccessID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, "Store switched successfully", result, nil)
	}
}
