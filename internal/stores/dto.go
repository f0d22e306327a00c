package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/sarisari/backoffice/pkg/db/models"
)

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	OwnerID        uuid.UUID  `json:"owner"`
	LastLoggedInAt *time.Time `json:"last_logged_in_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateStoreDTO holds creation-time data for a new store.
type CreateStoreDTO struct {
	Name    string
	OwnerID uuid.UUID
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}

	return &StoreDTO{
		ID:             m.ID,
		Name:           m.Name,
		OwnerID:        m.OwnerID,
		LastLoggedInAt: m.LastLoggedInAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ToModel prepares the GORM model with a fresh id.
func (c CreateStoreDTO) ToModel() *models.Store {
	return &models.Store{
		ID:      uuid.New(),
		Name:    c.Name,
		OwnerID: c.OwnerID,
	}
}
