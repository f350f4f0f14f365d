package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/istochnik/delivery-backend/pkg/enums"
)

// Driver is a delivery driver with mobile-app access via phone + PIN.
type Driver struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string             `gorm:"column:name;not null"`
	Phone     string             `gorm:"column:phone;not null;uniqueIndex"`
	Login     string             `gorm:"column:login;not null;uniqueIndex"`
	PINHash   string             `gorm:"column:pin_hash;not null"`
	Status    enums.DriverStatus `gorm:"column:status;type:text;not null;default:'offline'"`
	Vehicles  []DriverVehicle    `gorm:"foreignKey:DriverID;constraint:OnDelete:CASCADE"`
	Districts []DriverDistrict   `gorm:"foreignKey:DriverID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
