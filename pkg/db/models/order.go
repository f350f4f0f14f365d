package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/istochnik/delivery-backend/pkg/types"
)

// Order is a customer delivery request synced from the external CRM.
// Orders are created by the sync worker and never hard-deleted; the back
// office mutates assignment, payment and export state only.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CRMLeadID     int64             `gorm:"column:crm_lead_id;not null;uniqueIndex"`
	DeliveryDate  time.Time         `gorm:"column:delivery_date;type:date;not null;index"`
	TimeSlot      string            `gorm:"column:time_slot"`
	Items         types.LineItems   `gorm:"column:items;type:jsonb;serializer:json"`
	Region        string            `gorm:"column:region"`
	IsPaid        bool              `gorm:"column:is_paid;not null;default:false"`
	PaymentMethod string            `gorm:"column:payment_method"`
	Total         decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	Comment       string            `gorm:"column:comment"`
	Exported      bool              `gorm:"column:exported;not null;default:false"`
	Assignments   []TruckAssignment `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
