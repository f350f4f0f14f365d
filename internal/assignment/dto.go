package assignment

import (
	"time"

	"github.com/google/uuid"

	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/enums"
)

// UpsertInput carries a manual assignment request from the dispatcher board.
type UpsertInput struct {
	OrderID      uuid.UUID
	DeliveryDate time.Time
	VehicleName  string
	DriverID     *uuid.UUID
	Notes        string
}

// UpsertResult reports what the upsert did with the (order, date) slot.
type UpsertResult struct {
	Assignment *models.TruckAssignment
	Created    bool
	Skipped    bool
	SkipReason string
}

// AutoAssignResult summarizes one auto-assignment pass over a date.
type AutoAssignResult struct {
	Assigned  int `json:"assigned"`
	Skipped   int `json:"skipped"`
	NoRegion  int `json:"no_region"`
	Processed int `json:"processed"`
}

// View is the JSON shape controllers return for one assignment.
type View struct {
	ID           uuid.UUID              `json:"id"`
	OrderID      uuid.UUID              `json:"order_id"`
	DeliveryDate string                 `json:"delivery_date"`
	VehicleName  string                 `json:"vehicle_name"`
	DriverID     *uuid.UUID             `json:"driver_id,omitempty"`
	Status       enums.AssignmentStatus `json:"status"`
	Notes        string                 `json:"notes,omitempty"`
	AssignedAt   time.Time              `json:"assigned_at"`
	AcceptedAt   *time.Time             `json:"accepted_at,omitempty"`
	DeliveredAt  *time.Time             `json:"delivered_at,omitempty"`
}

// NewView converts a model row to its API representation.
func NewView(a *models.TruckAssignment) View {
	return View{
		ID:           a.ID,
		OrderID:      a.OrderID,
		DeliveryDate: a.DeliveryDate.Format("2006-01-02"),
		VehicleName:  a.VehicleName,
		DriverID:     a.DriverID,
		Status:       a.Status,
		Notes:        a.Notes,
		AssignedAt:   a.AssignedAt,
		AcceptedAt:   a.AcceptedAt,
		DeliveredAt:  a.DeliveredAt,
	}
}

// NewViews converts a slice of rows.
func NewViews(rows []models.TruckAssignment) []View {
	views := make([]View, 0, len(rows))
	for i := range rows {
		views = append(views, NewView(&rows[i]))
	}
	return views
}
