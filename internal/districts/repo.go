package districts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
)

// Repository is the persistence surface for districts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, district *models.District) (*models.District, error)
	Save(ctx context.Context, district *models.District) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.District, error)
	List(ctx context.Context, activeOnly bool) ([]models.District, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a districts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, district *models.District) (*models.District, error) {
	if err := r.db.WithContext(ctx).Create(district).Error; err != nil {
		return nil, err
	}
	return district, nil
}

func (r *repository) Save(ctx context.Context, district *models.District) error {
	return r.db.WithContext(ctx).Save(district).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.District, error) {
	var district models.District
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&district).Error
	if err != nil {
		return nil, err
	}
	return &district, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.District, error) {
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var districts []models.District
	if err := query.Order("name ASC").Find(&districts).Error; err != nil {
		return nil, err
	}
	return districts, nil
}
