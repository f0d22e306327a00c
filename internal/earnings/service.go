package earnings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/internal/auth"
	"github.com/sarisari/backoffice/pkg/db/models"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/logger"
	"github.com/sarisari/backoffice/pkg/pagination"
	"github.com/shopspring/decimal"
)

const (
	MsgCreated         = "GCash earning created successfully"
	MsgUpdated         = "GCash earning updated successfully"
	MsgDeleted         = "GCash earning deleted successfully"
	MsgListed          = "GCash earnings retrieved successfully"
	MsgDuplicateCreate = "You already have a GCash earning for that date"
	MsgDuplicateUpdate = "Another GCash earning record already exists for this store on the target date. Please choose a different date or update the existing record."
	MsgNotFound        = "GCash earning record not found"
	MsgNoStore         = "You don't have a current store. Please create a store first."
)

type recordStore interface {
	Create(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal, day *time.Time) (*models.GCashEarning, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*models.GCashEarning, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.GCashEarning, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.GCashEarning, error)
	ListByStorePage(ctx context.Context, storeID uuid.UUID, page, limit int) (*PageResult, error)
}

type currentUserResolver interface {
	CurrentUser(ctx context.Context) (*auth.CurrentUser, error)
}

// Service runs earning operations on behalf of the authenticated user's
// current store.
type Service struct {
	repo  recordStore
	users currentUserResolver
	logg  *logger.Logger
}

func NewService(repo recordStore, users currentUserResolver, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("earnings repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("current user resolver required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{repo: repo, users: users, logg: logg}, nil
}

// Scope resolves the store the caller acts on. Resolver failures come back
// unchanged; a user without a store yields CodeNoStore.
func (s *Service) Scope(ctx context.Context) (uuid.UUID, error) {
	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return uuid.Nil, err
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, err.Error())
	}
	if user == nil || user.CurrentStoreID == nil || *user.CurrentStoreID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNoStore, MsgNoStore)
	}
	return *user.CurrentStoreID, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) Result[IDPayload] {
	storeID, err := s.Scope(ctx)
	if err != nil {
		return failFrom[IDPayload](err)
	}

	record, err := s.repo.Create(ctx, storeID, in.Amount, in.Date)
	switch {
	case errors.Is(err, ErrDuplicateDay):
		return fail[IDPayload](pkgerrors.CodeConflict, MsgDuplicateCreate)
	case err != nil:
		s.logg.Error(ctx, "create gcash earning", err)
		return failFrom[IDPayload](err)
	}
	return ok(http.StatusCreated, MsgCreated, IDPayload{ID: record.ID}, record.StoreID)
}

func (s *Service) Update(ctx context.Context, in UpdateInput) Result[IDPayload] {
	storeID, err := s.Scope(ctx)
	if err != nil {
		return failFrom[IDPayload](err)
	}
	if res, owned := s.owned(ctx, in.ID, storeID); !owned {
		return res
	}

	record, err := s.repo.Update(ctx, in.ID, UpdateFields{Amount: in.Amount, Day: in.Date})
	switch {
	case errors.Is(err, ErrNotFound):
		return fail[IDPayload](pkgerrors.CodeNotFound, MsgNotFound)
	case errors.Is(err, ErrDuplicateDay):
		return fail[IDPayload](pkgerrors.CodeConflict, MsgDuplicateUpdate)
	case err != nil:
		s.logg.Error(ctx, "update gcash earning", err)
		return failFrom[IDPayload](err)
	}
	return ok(http.StatusOK, MsgUpdated, IDPayload{ID: record.ID}, record.StoreID)
}

// Delete looks the record up first so the store id survives the delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) Result[IDPayload] {
	storeID, err := s.Scope(ctx)
	if err != nil {
		return failFrom[IDPayload](err)
	}
	if res, owned := s.owned(ctx, id, storeID); !owned {
		return res
	}

	record, err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return fail[IDPayload](pkgerrors.CodeNotFound, MsgNotFound)
	case err != nil:
		s.logg.Error(ctx, "delete gcash earning", err)
		return failFrom[IDPayload](err)
	}
	return ok(http.StatusOK, MsgDeleted, IDPayload{ID: record.ID}, record.StoreID)
}

// List returns one page of the current store's records.
func (s *Service) List(ctx context.Context, page, limit int) Result[[]EarningDTO] {
	storeID, err := s.Scope(ctx)
	if err != nil {
		return failFrom[[]EarningDTO](err)
	}
	return s.ListStore(ctx, storeID, page, limit)
}

// ListStore pages through storeID's records without resolving the caller;
// handlers that already called Scope use it.
func (s *Service) ListStore(ctx context.Context, storeID uuid.UUID, page, limit int) Result[[]EarningDTO] {
	res, err := s.repo.ListByStorePage(ctx, storeID, page, limit)
	if err != nil {
		s.logg.Error(ctx, "list gcash earnings", err)
		return failFrom[[]EarningDTO](err)
	}

	out := ok(http.StatusOK, MsgListed, fromModels(res.Data), storeID)
	out.Pagination = &pagination.Info{
		Page:       res.Page,
		Limit:      res.Limit,
		Total:      res.Total,
		TotalPages: res.TotalPages,
	}
	return out
}

// owned reports whether id exists and belongs to storeID. Records of other
// stores are reported as missing.
func (s *Service) owned(ctx context.Context, id, storeID uuid.UUID) (Result[IDPayload], bool) {
	record, err := s.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return fail[IDPayload](pkgerrors.CodeNotFound, MsgNotFound), false
	case err != nil:
		s.logg.Error(ctx, "load gcash earning", err)
		return failFrom[IDPayload](err), false
	case record.StoreID != storeID:
		return fail[IDPayload](pkgerrors.CodeNotFound, MsgNotFound), false
	}
	return Result[IDPayload]{}, true
}
