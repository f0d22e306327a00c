package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a single sari-sari shop; every earning record belongs to one.
type Store struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name           string     `gorm:"column:name;not null"`
	OwnerID        uuid.UUID  `gorm:"column:owner;type:uuid;not null"`
	LastLoggedInAt *time.Time `gorm:"column:last_logged_in_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
