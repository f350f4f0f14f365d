package drivers

import (
	"time"

	"github.com/google/uuid"

	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/enums"
)

// CreateInput carries a new driver from the back office.
type CreateInput struct {
	Name        string
	Phone       string
	Login       string
	PIN         string
	VehicleIDs  []uuid.UUID
	DistrictIDs []uuid.UUID
}

// UpdateInput applies a partial update; only non-nil fields change.
type UpdateInput struct {
	Name        *string
	Phone       *string
	PIN         *string
	VehicleIDs  []uuid.UUID
	DistrictIDs []uuid.UUID
}

// LoginInput is the mobile-app credential pair.
type LoginInput struct {
	Phone string
	PIN   string
}

// LoginResult carries the minted token and the driver it belongs to.
type LoginResult struct {
	Token  string
	Driver *models.Driver
}

// View is the JSON shape controllers return for one driver. The PIN hash
// never leaves the service layer.
type View struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Phone       string             `json:"phone"`
	Login       string             `json:"login"`
	Status      enums.DriverStatus `json:"status"`
	VehicleIDs  []uuid.UUID        `json:"vehicle_ids"`
	DistrictIDs []uuid.UUID        `json:"district_ids"`
	CreatedAt   time.Time          `json:"created_at"`
}

// NewView converts a model row to its API representation.
func NewView(d *models.Driver) View {
	vehicleIDs := make([]uuid.UUID, 0, len(d.Vehicles))
	for _, link := range d.Vehicles {
		vehicleIDs = append(vehicleIDs, link.VehicleID)
	}
	districtIDs := make([]uuid.UUID, 0, len(d.Districts))
	for _, link := range d.Districts {
		districtIDs = append(districtIDs, link.DistrictID)
	}
	return View{
		ID:          d.ID,
		Name:        d.Name,
		Phone:       d.Phone,
		Login:       d.Login,
		Status:      d.Status,
		VehicleIDs:  vehicleIDs,
		DistrictIDs: districtIDs,
		CreatedAt:   d.CreatedAt,
	}
}

// NewViews converts a slice of rows.
func NewViews(rows []models.Driver) []View {
	views := make([]View, 0, len(rows))
	for i := range rows {
		views = append(views, NewView(&rows[i]))
	}
	return views
}
