package production

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
)

// Repository is the persistence surface for production sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, session *models.ProductionSession) (*models.ProductionSession, error)
	Save(ctx context.Context, session *models.ProductionSession) error
	FindByDateAndSlot(ctx context.Context, date time.Time, timeSlot string) (*models.ProductionSession, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.ProductionSession, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a production repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, session *models.ProductionSession) (*models.ProductionSession, error) {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *repository) Save(ctx context.Context, session *models.ProductionSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *repository) FindByDateAndSlot(ctx context.Context, date time.Time, timeSlot string) (*models.ProductionSession, error) {
	var session models.ProductionSession
	err := r.db.WithContext(ctx).
		Where("date = ? AND time_slot = ?", date, timeSlot).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) ListByDate(ctx context.Context, date time.Time) ([]models.ProductionSession, error) {
	var sessions []models.ProductionSession
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("time_slot ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
