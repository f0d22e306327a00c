package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/internal/repo"
	"github.com/sarisari/backoffice/pkg/db/models"
	"github.com/sarisari/backoffice/pkg/enums"
	"gorm.io/gorm"
)

const withStoreColumns = "store_memberships.*, stores.name AS store_name"

// Repository exposes membership persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to conn, which may be a transaction.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// ListUserStores returns the active stores a user belongs to, by store name.
func (r *Repository) ListUserStores(ctx context.Context, userID uuid.UUID) ([]MembershipWithStore, error) {
	var rows []membershipWithStoreRow

	err := r.DB(ctx).
		Model(&models.StoreMembership{}).
		Select(withStoreColumns).
		Joins("JOIN stores ON stores.id = store_memberships.store_id").
		Where("store_memberships.user_id = ? AND store_memberships.status = ?", userID, enums.MembershipStatusActive).
		Order("stores.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return membershipRowsToDTO(rows), nil
}

// GetMembership retrieves a membership by user and store.
func (r *Repository) GetMembership(ctx context.Context, userID, storeID uuid.UUID) (*models.StoreMembership, error) {
	var membership models.StoreMembership
	err := r.DB(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record.
func (r *Repository) CreateMembership(ctx context.Context, storeID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.StoreMembership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid membership status %q", status)
	}

	membership := &models.StoreMembership{
		ID:              uuid.New(),
		StoreID:         storeID,
		UserID:          userID,
		Role:            role,
		Status:          status,
		InvitedByUserID: invitedBy,
	}

	if err := r.DB(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// UserHasRole reports whether the user holds one of roles in the store
// through an active membership.
func (r *Repository) UserHasRole(ctx context.Context, userID, storeID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	var count int64
	err := r.DB(ctx).
		Model(&models.StoreMembership{}).
		Where("user_id = ? AND store_id = ? AND status = ? AND role IN ?", userID, storeID, enums.MembershipStatusActive, roles).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetMembershipWithStore returns one membership joined with its store.
// gorm.ErrRecordNotFound is returned when the pair has no membership.
func (r *Repository) GetMembershipWithStore(ctx context.Context, userID, storeID uuid.UUID) (*MembershipWithStore, error) {
	var rows []membershipWithStoreRow
	err := r.DB(ctx).
		Model(&models.StoreMembership{}).
		Select(withStoreColumns).
		Joins("JOIN stores ON stores.id = store_memberships.store_id").
		Where("store_memberships.user_id = ? AND store_memberships.store_id = ?", userID, storeID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	dto := membershipWithStoreFromRow(rows[0])
	return &dto, nil
}
