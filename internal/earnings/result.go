package earnings

import (
	"net/http"

	"github.com/google/uuid"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/pagination"
)

// Result is the uniform outcome of a service call. StoreID names the store a
// successful mutation touched so the caller can invalidate its cache; it is
// never written to the response body.
type Result[T any] struct {
	Success    bool
	Status     int
	Message    string
	Code       pkgerrors.Code
	Data       T
	Pagination *pagination.Info
	StoreID    uuid.UUID
}

func ok[T any](status int, message string, data T, storeID uuid.UUID) Result[T] {
	return Result[T]{
		Success: true,
		Status:  status,
		Message: message,
		Data:    data,
		StoreID: storeID,
	}
}

func fail[T any](code pkgerrors.Code, message string) Result[T] {
	return Result[T]{
		Status:  pkgerrors.MetadataFor(code).HTTPStatus,
		Message: message,
		Code:    code,
	}
}

// failFrom keeps the status and message of a typed error; anything else is a
// 500 carrying the raw error text.
func failFrom[T any](err error) Result[T] {
	if typed := pkgerrors.As(err); typed != nil {
		return Result[T]{
			Status:  typed.Status(),
			Message: typed.Message(),
			Code:    typed.Code(),
		}
	}
	return Result[T]{
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
		Code:    pkgerrors.CodeInternal,
	}
}
