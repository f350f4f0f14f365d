package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/istochnik/delivery-backend/pkg/enums"
)

// TruckAssignment links an order to a named vehicle for a given delivery date.
// At most one live assignment exists per (order, delivery date); the partial
// unique index in migrations enforces what the application logic assumes.
type TruckAssignment struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	DeliveryDate time.Time              `gorm:"column:delivery_date;type:date;not null;index"`
	VehicleName  string                 `gorm:"column:vehicle_name"`
	DriverID     *uuid.UUID             `gorm:"column:driver_id;type:uuid"`
	Status       enums.AssignmentStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Notes        string                 `gorm:"column:notes"`
	AssignedAt   time.Time              `gorm:"column:assigned_at;autoCreateTime"`
	AcceptedAt   *time.Time             `gorm:"column:accepted_at"`
	DeliveredAt  *time.Time             `gorm:"column:delivered_at"`
	CancelledAt  *time.Time             `gorm:"column:cancelled_at"`
	UpdatedAt    time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
