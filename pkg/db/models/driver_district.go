package models

import (
	"time"

	"github.com/google/uuid"
)

// DriverDistrict joins drivers to the districts they usually serve.
type DriverDistrict struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DriverID   uuid.UUID `gorm:"column:driver_id;type:uuid;not null;uniqueIndex:idx_driver_district"`
	DistrictID uuid.UUID `gorm:"column:district_id;type:uuid;not null;uniqueIndex:idx_driver_district"`
	IsPrimary  bool      `gorm:"column:is_primary;not null;default:false"`
	AssignedAt time.Time `gorm:"column:assigned_at;autoCreateTime"`
}
