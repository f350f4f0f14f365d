package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/types"
)

// SyncInput carries one order as the CRM sync delivers it.
type SyncInput struct {
	CRMLeadID     int64
	DeliveryDate  time.Time
	TimeSlot      string
	Items         types.LineItems
	Region        string
	IsPaid        bool
	PaymentMethod string
	Total         decimal.Decimal
	Comment       string
}

// PatchInput applies a partial update; only non-nil fields change.
type PatchInput struct {
	IsPaid        *bool
	PaymentMethod *string
	Comment       *string
	TimeSlot      *string
}

// IsEmpty reports whether the patch changes anything at all.
func (p PatchInput) IsEmpty() bool {
	return p.IsPaid == nil && p.PaymentMethod == nil && p.Comment == nil && p.TimeSlot == nil
}

// View is the JSON shape controllers return for one order.
type View struct {
	ID            uuid.UUID       `json:"id"`
	CRMLeadID     int64           `json:"crm_lead_id"`
	DeliveryDate  string          `json:"delivery_date"`
	TimeSlot      string          `json:"time_slot,omitempty"`
	Items         types.LineItems `json:"items,omitempty"`
	Region        string          `json:"region,omitempty"`
	IsPaid        bool            `json:"is_paid"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Comment       string          `json:"comment,omitempty"`
	Exported      bool            `json:"exported"`
	VehicleName   string          `json:"vehicle_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewView converts a model row to its API representation. The vehicle name
// comes from the order's live assignment when one is preloaded.
func NewView(o *models.Order) View {
	view := View{
		ID:            o.ID,
		CRMLeadID:     o.CRMLeadID,
		DeliveryDate:  o.DeliveryDate.Format("2006-01-02"),
		TimeSlot:      o.TimeSlot,
		Items:         o.Items,
		Region:        o.Region,
		IsPaid:        o.IsPaid,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
		Comment:       o.Comment,
		Exported:      o.Exported,
		CreatedAt:     o.CreatedAt,
	}
	for i := range o.Assignments {
		if o.Assignments[i].Status.IsLive() {
			view.VehicleName = o.Assignments[i].VehicleName
			break
		}
	}
	return view
}

// NewViews converts a slice of rows.
func NewViews(rows []models.Order) []View {
	views := make([]View, 0, len(rows))
	for i := range rows {
		views = append(views, NewView(&rows[i]))
	}
	return views
}
