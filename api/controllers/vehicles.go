package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/istochnik/delivery-backend/api/responses"
	"github.com/istochnik/delivery-backend/api/validators"
	"github.com/istochnik/delivery-backend/internal/vehicles"
	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/logger"
)

type vehicleView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand,omitempty"`
	LicensePlate string    `json:"license_plate,omitempty"`
	Capacity     int       `json:"capacity"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func newVehicleView(v *models.Vehicle) vehicleView {
	return vehicleView{
		ID:           v.ID,
		Name:         v.Name,
		Brand:        v.Brand,
		LicensePlate: v.LicensePlate,
		Capacity:     v.Capacity,
		Active:       v.Active,
		CreatedAt:    v.CreatedAt,
	}
}

func VehiclesList(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), activeOnly != nil && *activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]vehicleView, 0, len(rows))
		for i := range rows {
			views = append(views, newVehicleView(&rows[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

func VehicleGet(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicle, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newVehicleView(vehicle))
	}
}

type vehicleCreateRequest struct {
	Name         string `json:"name" validate:"required"`
	Brand        string `json:"brand,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`
	Capacity     int    `json:"capacity,omitempty"`
}

func VehicleCreate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req vehicleCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Create(r.Context(), vehicles.CreateInput{
			Name:         req.Name,
			Brand:        req.Brand,
			LicensePlate: req.LicensePlate,
			Capacity:     req.Capacity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newVehicleView(vehicle))
	}
}

type vehicleUpdateRequest struct {
	Name         *string `json:"name,omitempty"`
	Brand        *string `json:"brand,omitempty"`
	LicensePlate *string `json:"license_plate,omitempty"`
	Capacity     *int    `json:"capacity,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

func VehicleUpdate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req vehicleUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Update(r.Context(), id, vehicles.UpdateInput{
			Name:         req.Name,
			Brand:        req.Brand,
			LicensePlate: req.LicensePlate,
			Capacity:     req.Capacity,
			Active:       req.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newVehicleView(vehicle))
	}
}

// VehicleDeactivate soft-deletes: assignments reference vehicles by name, so
// rows stay put.
func VehicleDeactivate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
