package earnings

import (
	"time"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/pkg/db/models"
	"github.com/sarisari/backoffice/pkg/pagination"
	"github.com/shopspring/decimal"
)

// EarningDTO is the API view of a record.
type EarningDTO struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModel maps the persisted row onto the API view.
func FromModel(m models.GCashEarning) EarningDTO {
	return EarningDTO{
		ID:        m.ID,
		StoreID:   m.StoreID,
		Amount:    m.Amount.InexactFloat64(),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func fromModels(rows []models.GCashEarning) []EarningDTO {
	out := make([]EarningDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}

// ListPage is one page of a store's records; it is also the cached value.
type ListPage struct {
	Data       []EarningDTO    `json:"data"`
	Pagination pagination.Info `json:"pagination"`
}

// CreateInput carries a validated create request.
type CreateInput struct {
	Amount decimal.Decimal
	Date   *time.Time
}

// UpdateInput carries a validated partial update.
type UpdateInput struct {
	ID     uuid.UUID
	Amount *decimal.Decimal
	Date   *time.Time
}

// IDPayload is the data block returned by mutations.
type IDPayload struct {
	ID uuid.UUID `json:"id"`
}
