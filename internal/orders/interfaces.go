package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/pagination"
)

// ListFilters narrows the date-scoped order list.
type ListFilters struct {
	IsPaid   *bool
	Exported *bool
	TimeSlot string
	Region   string
}

// Repository is the persistence surface for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByCRMLeadID(ctx context.Context, leadID int64) (*models.Order, error)
	ListByDate(ctx context.Context, deliveryDate time.Time, filters ListFilters) ([]models.Order, error)
	ListPage(ctx context.Context, cursor pagination.Cursor, limit int) ([]models.Order, error)
	MarkExported(ctx context.Context, ids []uuid.UUID) (int64, error)
}
