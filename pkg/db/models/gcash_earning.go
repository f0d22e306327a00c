package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GCashEarning is one store's e-wallet fee revenue for a calendar day.
// CreatedAt is the day the amount applies to, not the insert time.
type GCashEarning struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index:idx_gcash_earnings_store_created,priority:1"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;not null;index:idx_gcash_earnings_store_created,priority:2,sort:desc"`
	UpdatedAt time.Time       `gorm:"column:updated_at;not null"`
}

func (GCashEarning) TableName() string {
	return "gcash_earnings"
}
