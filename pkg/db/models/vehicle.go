package models

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a delivery truck. Vehicles are soft-deleted via the active flag
// because assignments reference them by name.
type Vehicle struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null;uniqueIndex"`
	Brand        string    `gorm:"column:brand"`
	LicensePlate string    `gorm:"column:license_plate"`
	Capacity     int       `gorm:"column:capacity;not null;default:0"`
	Active       bool      `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
