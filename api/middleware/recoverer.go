package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sarisari/backoffice/api/responses"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/logger"
)

// Recoverer answers a handler panic with a 500 envelope unless the handler
// already started its response. http.ErrAbortHandler is re-raised so the
// server drops the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				err := fmt.Errorf("panic: %v", v)
				if logg != nil {
					logg.Error(panicContext(logg, r, rec, v), "http.panic", err)
				}
				if rec.status != 0 {
					return
				}
				responses.WriteError(r.Context(), nil, rec, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

// panicContext collects what is still reachable from the outer request. The
// request id is read back from the response header RequestID set.
func panicContext(logg *logger.Logger, r *http.Request, rec *statusRecorder, v any) context.Context {
	fields := map[string]any{
		"panic":  fmt.Sprint(v),
		"method": r.Method,
		"path":   r.URL.Path,
	}
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		fields["route"] = rc.RoutePattern()
	}
	if id := rec.Header().Get(requestIDHeader); id != "" {
		fields["request_id"] = id
	}
	if rec.status != 0 {
		fields["status_sent"] = rec.status
	}
	return logg.WithFields(r.Context(), fields)
}
