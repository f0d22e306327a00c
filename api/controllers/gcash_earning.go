package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/api/responses"
	"github.com/sarisari/backoffice/api/validators"
	"github.com/sarisari/backoffice/internal/earnings"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/logger"
	"github.com/sarisari/backoffice/pkg/pagination"
	"github.com/shopspring/decimal"
)

const (
	cacheHeader = "X-Cache"
	cacheHit    = "HIT"
	cacheMiss   = "MISS"
)

// EarningService is the slice of earnings.Service the handlers call.
type EarningService interface {
	Scope(ctx context.Context) (uuid.UUID, error)
	ListStore(ctx context.Context, storeID uuid.UUID, page, limit int) earnings.Result[[]earnings.EarningDTO]
	Create(ctx context.Context, in earnings.CreateInput) earnings.Result[earnings.IDPayload]
	Update(ctx context.Context, in earnings.UpdateInput) earnings.Result[earnings.IDPayload]
	Delete(ctx context.Context, id uuid.UUID) earnings.Result[earnings.IDPayload]
}

// EarningsCache is the page cache consulted by the list handler and
// invalidated after successful mutations. A nil value disables caching.
// DefaultLimit is the page size its store-wide sweep covers, so a request
// without ?limit must use it too.
type EarningsCache interface {
	DefaultLimit() int
	Get(ctx context.Context, storeID uuid.UUID, page *earnings.PageKey) (*earnings.ListPage, bool)
	Set(ctx context.Context, storeID uuid.UUID, value *earnings.ListPage, page *earnings.PageKey)
	Invalidate(ctx context.Context, storeID uuid.UUID, page *earnings.PageKey)
}

type createEarningRequest struct {
	Amount *validators.Amount `json:"amount" validate:"required,gt=0,lte=1000000,maxdp=2"`
	Date   *string            `json:"date,omitempty"`
}

type updateEarningRequest struct {
	ID     string             `json:"id" validate:"required,uuid"`
	Amount *validators.Amount `json:"amount,omitempty" validate:"omitempty,gt=0,lte=1000000,maxdp=2"`
	Date   *string            `json:"date,omitempty"`
}

type deleteEarningRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// GCashEarningList serves one page of the current store's records, from the
// cache when possible.
func GCashEarningList(svc EarningService, cache EarningsCache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gcash earning service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", pagination.DefaultPage, 1, pagination.MaxPage)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defaultLimit := pagination.DefaultLimit
		if cache != nil {
			defaultLimit = cache.DefaultLimit()
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		storeID, err := svc.Scope(ctx)
		if err != nil {
			writeServiceError(ctx, logg, w, err)
			return
		}

		key := &earnings.PageKey{Page: page, Limit: limit}
		if cache != nil {
			if cached, ok := cache.Get(ctx, storeID, key); ok {
				w.Header().Set(cacheHeader, cacheHit)
				responses.WriteMessage(w, http.StatusOK, earnings.MsgListed, cached.Data, &cached.Pagination)
				return
			}
		}

		res := svc.ListStore(ctx, storeID, page, limit)
		if res.Success && res.Pagination != nil && cache != nil {
			cache.Set(ctx, storeID, &earnings.ListPage{Data: res.Data, Pagination: *res.Pagination}, key)
		}
		w.Header().Set(cacheHeader, cacheMiss)
		writeResult(w, res)
	}
}

// GCashEarningCreate records the amount for a day of the current store.
func GCashEarningCreate(svc EarningService, cache EarningsCache, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gcash earning service unavailable"))
			return
		}

		var body createEarningRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		day, err := parseOptionalDay(body.Date, loc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		res := svc.Create(ctx, earnings.CreateInput{Amount: body.Amount.Decimal, Date: day})
		invalidateOnSuccess(ctx, cache, res)
		writeResult(w, res)
	}
}

// GCashEarningUpdate changes the amount and/or day of a record.
func GCashEarningUpdate(svc EarningService, cache EarningsCache, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gcash earning service unavailable"))
			return
		}

		var body updateEarningRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := uuid.Parse(body.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, validators.FieldError("id", "must be a valid UUID"))
			return
		}
		day, err := parseOptionalDay(body.Date, loc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var amount *decimal.Decimal
		if body.Amount != nil {
			amount = &body.Amount.Decimal
		}
		res := svc.Update(ctx, earnings.UpdateInput{ID: id, Amount: amount, Date: day})
		invalidateOnSuccess(ctx, cache, res)
		writeResult(w, res)
	}
}

// GCashEarningDelete removes a record of the current store.
func GCashEarningDelete(svc EarningService, cache EarningsCache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gcash earning service unavailable"))
			return
		}

		var body deleteEarningRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := uuid.Parse(body.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, validators.FieldError("id", "must be a valid UUID"))
			return
		}

		res := svc.Delete(ctx, id)
		invalidateOnSuccess(ctx, cache, res)
		writeResult(w, res)
	}
}

func parseOptionalDay(raw *string, loc *time.Location) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	day, err := earnings.ParseDay(*raw, loc)
	if err != nil {
		return nil, validators.FieldError("date", "must be an ISO-8601 date or date-time")
	}
	return &day, nil
}

// invalidateOnSuccess drops the touched store's cached pages. It runs before
// the response is written.
func invalidateOnSuccess[T any](ctx context.Context, cache EarningsCache, res earnings.Result[T]) {
	if cache == nil || !res.Success || res.StoreID == uuid.Nil {
		return
	}
	cache.Invalidate(ctx, res.StoreID, nil)
}

// writeResult mirrors a service result onto the response.
func writeResult[T any](w http.ResponseWriter, res earnings.Result[T]) {
	if res.Success {
		responses.WriteMessage(w, res.Status, res.Message, res.Data, res.Pagination)
		return
	}
	responses.WriteFailure(w, res.Status, res.Code, res.Message)
}

// writeServiceError keeps the status and message of typed errors and surfaces
// the raw text of anything else as a 500.
func writeServiceError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if typed := pkgerrors.As(err); typed != nil {
		if logg != nil && typed.Status() >= http.StatusInternalServerError {
			logg.Error(ctx, "gcash earning scope", err)
		}
		responses.WriteFailure(w, typed.Status(), typed.Code(), typed.Message())
		return
	}
	if logg != nil {
		logg.Error(ctx, "gcash earning scope", err)
	}
	responses.WriteFailure(w, http.StatusInternalServerError, pkgerrors.CodeInternal, err.Error())
}
