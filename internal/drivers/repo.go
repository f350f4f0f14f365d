package drivers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a drivers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	if err := r.db.WithContext(ctx).Create(driver).Error; err != nil {
		return nil, err
	}
	return driver, nil
}

func (r *repository) Save(ctx context.Context, driver *models.Driver) error {
	return r.db.WithContext(ctx).Save(driver).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Driver{}).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).
		Preload("Vehicles").
		Preload("Districts").
		Where("id = ?", id).
		First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *repository) List(ctx context.Context) ([]models.Driver, error) {
	var drivers []models.Driver
	err := r.db.WithContext(ctx).
		Preload("Vehicles").
		Preload("Districts").
		Order("name ASC").
		Find(&drivers).Error
	if err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *repository) CountLiveAssignments(ctx context.Context, driverID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TruckAssignment{}).
		Where("driver_id = ?", driverID).
		Where("status IN ?", []string{
			enums.AssignmentStatusActive.String(),
			enums.AssignmentStatusAccepted.String(),
		}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) ReplaceVehicles(ctx context.Context, driverID uuid.UUID, links []models.DriverVehicle) error {
	if err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Delete(&models.DriverVehicle{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *repository) ReplaceDistricts(ctx context.Context, driverID uuid.UUID, links []models.DriverDistrict) error {
	if err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Delete(&models.DriverDistrict{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&links).Error
}
