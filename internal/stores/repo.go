package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/internal/repo"
	"github.com/sarisari/backoffice/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles store persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to conn, which may be a transaction.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error) {
	store := dto.ToModel()
	if err := r.DB(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads a store by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.DB(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwner returns all stores owned by ownerID.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Store, error) {
	var stores []models.Store
	if err := r.DB(ctx).Where("owner = ?", ownerID).Order("created_at").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// Update saves the provided store.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.DB(ctx).Save(store).Error
}

// UpdateLastLoggedInAt stamps the store as the one a user just switched to.
func (r *Repository) UpdateLastLoggedInAt(ctx context.Context, storeID uuid.UUID) error {
	return r.DB(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		UpdateColumn("last_logged_in_at", time.Now().UTC()).Error
}
