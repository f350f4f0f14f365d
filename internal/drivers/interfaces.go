package drivers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
)

// Repository is the persistence surface for drivers and their links to
// vehicles and districts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, driver *models.Driver) (*models.Driver, error)
	Save(ctx context.Context, driver *models.Driver) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	FindByPhone(ctx context.Context, phone string) (*models.Driver, error)
	List(ctx context.Context) ([]models.Driver, error)
	CountLiveAssignments(ctx context.Context, driverID uuid.UUID) (int64, error)
	ReplaceVehicles(ctx context.Context, driverID uuid.UUID, links []models.DriverVehicle) error
	ReplaceDistricts(ctx context.Context, driverID uuid.UUID, links []models.DriverDistrict) error
}
