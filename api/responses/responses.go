package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/logger"
	"github.com/sarisari/backoffice/pkg/pagination"
	"github.com/sarisari/backoffice/pkg/types"
)

const defaultSuccessMessage = "OK"

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	WriteMessage(w, status, defaultSuccessMessage, data, nil)
}

// WriteMessage writes a success envelope with an explicit message.
func WriteMessage(w http.ResponseWriter, status int, message string, data any, page *pagination.Info) {
	WriteEnvelope(w, status, types.Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: page,
	})
}

// WriteFailure writes a failure envelope carrying message verbatim.
func WriteFailure(w http.ResponseWriter, status int, code pkgerrors.Code, message string) {
	WriteEnvelope(w, status, types.Envelope{
		Success: false,
		Message: message,
		Code:    string(code),
	})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeNoStore,
		pkgerrors.CodeIdempotency,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.Envelope{
		Success: false,
		Message: msg,
		Code:    string(typed.Code()),
	}
	if meta.DetailsAllowed {
		payload.Details = typed.Details()
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, map[string]any{
			"error":         dump.TopMessage,
			"error_code":    dump.Code,
			"error_chain":   dump.Chain,
			"pg_code":       dump.PGCode,
			"pg_detail":     dump.PGDetail,
			"pg_table":      dump.PGTable,
			"pg_constraint": dump.PGConstraint,
		})
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	WriteEnvelope(w, meta.HTTPStatus, payload)
}

// WriteEnvelope encodes env with status. Non-2xx statuses always go out with
// success=false.
func WriteEnvelope(w http.ResponseWriter, status int, env types.Envelope) {
	if status < 200 || status > 299 {
		env.Success = false
	}
	writeJSON(w, status, env)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
