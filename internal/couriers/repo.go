package couriers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
)

// Repository is the persistence surface for couriers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, courier *models.Courier) (*models.Courier, error)
	Save(ctx context.Context, courier *models.Courier) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error)
	List(ctx context.Context, activeOnly bool) ([]models.Courier, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a couriers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, courier *models.Courier) (*models.Courier, error) {
	if err := r.db.WithContext(ctx).Create(courier).Error; err != nil {
		return nil, err
	}
	return courier, nil
}

func (r *repository) Save(ctx context.Context, courier *models.Courier) error {
	return r.db.WithContext(ctx).Save(courier).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Courier{}).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error) {
	var courier models.Courier
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&courier).Error
	if err != nil {
		return nil, err
	}
	return &courier, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Courier, error) {
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var couriers []models.Courier
	if err := query.Order("name ASC").Find(&couriers).Error; err != nil {
		return nil, err
	}
	return couriers, nil
}
