package earnings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/pkg/db"
	"github.com/sarisari/backoffice/pkg/db/models"
	"github.com/sarisari/backoffice/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists GCash earning records and enforces one record per
// store per calendar day of the reference timezone.
type Repository struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// UpdateFields lists the mutable columns; nil fields are left unchanged.
type UpdateFields struct {
	Amount *decimal.Decimal
	Day    *time.Time
}

// PageResult is one page of records plus the totals needed to page further.
type PageResult struct {
	Data       []models.GCashEarning
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// NewRepository binds the repository to conn; day windows are computed in loc.
func NewRepository(conn *gorm.DB, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &Repository{db: conn, loc: loc, now: time.Now}
}

// Create inserts a record dated day (or now) unless the store already has
// one in that day window.
func (r *Repository) Create(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal, day *time.Time) (*models.GCashEarning, error) {
	now := r.now().UTC()
	occurredAt := now
	if day != nil {
		occurredAt = day.UTC()
	}

	record := &models.GCashEarning{
		ID:        uuid.New(),
		StoreID:   storeID,
		Amount:    amount,
		CreatedAt: occurredAt,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := r.dayTaken(tx, storeID, occurredAt, nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateDay
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	return record, nil
}

// Update applies a partial update. When Day is set, the new day must not
// hold another record of the same store.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*models.GCashEarning, error) {
	var updated models.GCashEarning
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findByID(tx, id)
		if err != nil {
			return err
		}

		changes := map[string]any{"updated_at": r.now().UTC()}
		if fields.Amount != nil {
			changes["amount"] = *fields.Amount
		}
		if fields.Day != nil {
			day := fields.Day.UTC()
			taken, err := r.dayTaken(tx, current.StoreID, day, &id)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateDay
			}
			changes["created_at"] = day
		}

		if err := tx.Model(&models.GCashEarning{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}
		reloaded, err := findByID(tx, id)
		if err != nil {
			return err
		}
		updated = *reloaded
		return nil
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	return &updated, nil
}

// Delete hard-deletes the record and returns the row as it was.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*models.GCashEarning, error) {
	var snapshot models.GCashEarning
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findByID(tx, id)
		if err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.GCashEarning{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		snapshot = *current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// FindByID loads one record.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GCashEarning, error) {
	return findByID(r.db.WithContext(ctx), id)
}

// ListByStore returns every record of the store, newest day first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.GCashEarning, error) {
	var rows []models.GCashEarning
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByStorePage returns page (1-indexed) of the store's records, newest day first.
func (r *Repository) ListByStorePage(ctx context.Context, storeID uuid.UUID, page, limit int) (*PageResult, error) {
	params := pagination.Params{Page: page, Limit: limit}.Normalize()
	base := r.db.WithContext(ctx).Model(&models.GCashEarning{}).Where("store_id = ?", storeID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	rows := []models.GCashEarning{}
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Order("id DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return &PageResult{
		Data:       rows,
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: pagination.TotalPages(total, params.Limit),
	}, nil
}

func (r *Repository) dayTaken(tx *gorm.DB, storeID uuid.UUID, day time.Time, exclude *uuid.UUID) (bool, error) {
	start, end := DayWindow(day, r.loc)
	q := tx.Model(&models.GCashEarning{}).
		Where("store_id = ?", storeID).
		Where("created_at >= ? AND created_at <= ?", start, end)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}

	var ids []uuid.UUID
	if err := q.Limit(1).Pluck("id", &ids).Error; err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func findByID(tx *gorm.DB, id uuid.UUID) (*models.GCashEarning, error) {
	var row models.GCashEarning
	if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// mapWriteError folds a unique-index hit into ErrDuplicateDay; that is how a
// concurrent create for the same day surfaces.
func mapWriteError(err error) error {
	if db.IsUniqueViolation(err, "") {
		return ErrDuplicateDay
	}
	return err
}
