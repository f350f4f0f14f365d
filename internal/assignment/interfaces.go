package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
)

// Repository is the persistence surface for truck assignments and the order
// reads the assignment flow needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, assignment *models.TruckAssignment) (*models.TruckAssignment, error)
	Save(ctx context.Context, assignment *models.TruckAssignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.TruckAssignment, error)
	FindLive(ctx context.Context, orderID uuid.UUID, deliveryDate time.Time) (*models.TruckAssignment, error)
	ListByDate(ctx context.Context, deliveryDate time.Time) ([]models.TruckAssignment, error)
	ListForDriver(ctx context.Context, driverID uuid.UUID, deliveryDate time.Time) ([]models.TruckAssignment, error)
	ListUnassignedOrders(ctx context.Context, deliveryDate time.Time) ([]models.Order, error)
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}
