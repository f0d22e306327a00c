package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a back-office operator. CurrentStoreID is the store their session
// acts on; nil until onboarding creates one.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email          string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash   string     `gorm:"column:password_hash;not null"`
	FirstName      string     `gorm:"column:first_name;not null"`
	LastName       string     `gorm:"column:last_name;not null"`
	IsActive       bool       `gorm:"column:is_active;not null"`
	LastLoginAt    *time.Time `gorm:"column:last_login_at"`
	CurrentStoreID *uuid.UUID `gorm:"column:current_store_id;type:uuid"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
