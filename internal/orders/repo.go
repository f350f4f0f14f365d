package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByCRMLeadID(ctx context.Context, leadID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("crm_lead_id = ?", leadID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByDate(ctx context.Context, deliveryDate time.Time, filters ListFilters) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("delivery_date = ?", deliveryDate)

	if filters.IsPaid != nil {
		query = query.Where("is_paid = ?", *filters.IsPaid)
	}
	if filters.Exported != nil {
		query = query.Where("exported = ?", *filters.Exported)
	}
	if filters.TimeSlot != "" {
		query = query.Where("time_slot = ?", filters.TimeSlot)
	}
	if filters.Region != "" {
		query = query.Where("region = ?", filters.Region)
	}

	var orders []models.Order
	if err := query.Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListPage walks the full order history newest-first using a keyset cursor.
// Callers fetch limit+1 rows to detect whether another page exists.
func (r *repository) ListPage(ctx context.Context, cursor pagination.Cursor, limit int) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Preload("Assignments")

	if !cursor.IsZero() {
		query = query.Where(
			"(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID,
		)
	}

	var orders []models.Order
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) MarkExported(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN ?", ids).
		Where("exported = ?", false).
		Update("exported", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
