package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assignment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, assignment *models.TruckAssignment) (*models.TruckAssignment, error) {
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *repository) Save(ctx context.Context, assignment *models.TruckAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TruckAssignment, error) {
	var assignment models.TruckAssignment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) FindLive(ctx context.Context, orderID uuid.UUID, deliveryDate time.Time) (*models.TruckAssignment, error) {
	var assignment models.TruckAssignment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND delivery_date = ?", orderID, deliveryDate).
		Where("status IN ?", liveStatuses()).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) ListByDate(ctx context.Context, deliveryDate time.Time) ([]models.TruckAssignment, error) {
	var assignments []models.TruckAssignment
	err := r.db.WithContext(ctx).
		Where("delivery_date = ?", deliveryDate).
		Order("vehicle_name ASC, assigned_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *repository) ListForDriver(ctx context.Context, driverID uuid.UUID, deliveryDate time.Time) ([]models.TruckAssignment, error) {
	var assignments []models.TruckAssignment
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND delivery_date = ?", driverID, deliveryDate).
		Where("status IN ?", []string{
			enums.AssignmentStatusActive.String(),
			enums.AssignmentStatusAccepted.String(),
		}).
		Order("assigned_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListUnassignedOrders returns the date's orders that have no live assignment.
func (r *repository) ListUnassignedOrders(ctx context.Context, deliveryDate time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("delivery_date = ?", deliveryDate).
		Where("id NOT IN (?)", r.db.
			Model(&models.TruckAssignment{}).
			Select("order_id").
			Where("delivery_date = ?", deliveryDate).
			Where("status IN ?", liveStatuses())).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// DeleteStale removes cancelled assignments older than the cutoff. Live rows
// are never touched.
func (r *repository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ?", enums.AssignmentStatusCancelled.String()).
		Where("updated_at < ?", before).
		Delete(&models.TruckAssignment{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func liveStatuses() []string {
	return []string{
		enums.AssignmentStatusActive.String(),
		enums.AssignmentStatusAccepted.String(),
		enums.AssignmentStatusDelivered.String(),
	}
}
