package models

import (
	"time"

	"github.com/google/uuid"
)

// DriverVehicle joins drivers to the vehicles they can operate.
type DriverVehicle struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DriverID   uuid.UUID `gorm:"column:driver_id;type:uuid;not null;uniqueIndex:idx_driver_vehicle"`
	VehicleID  uuid.UUID `gorm:"column:vehicle_id;type:uuid;not null;uniqueIndex:idx_driver_vehicle"`
	IsPrimary  bool      `gorm:"column:is_primary;not null;default:false"`
	AssignedAt time.Time `gorm:"column:assigned_at;autoCreateTime"`
}
