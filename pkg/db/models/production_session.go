package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductionSession records bottled-water output per (date, time slot),
// plus the free-container inventory counted at the end of the slot.
type ProductionSession struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Date           time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_production_date_slot"`
	TimeSlot       string    `gorm:"column:time_slot;not null;uniqueIndex:idx_production_date_slot"`
	Bottles19L     int       `gorm:"column:bottles_19l;not null;default:0"`
	Bottles5L      int       `gorm:"column:bottles_5l;not null;default:0"`
	Bottles1500ML  int       `gorm:"column:bottles_1500ml;not null;default:0"`
	FreeContainers int       `gorm:"column:free_containers;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
