package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/istochnik/delivery-backend/api/responses"
	"github.com/istochnik/delivery-backend/api/validators"
	"github.com/istochnik/delivery-backend/internal/drivers"
	"github.com/istochnik/delivery-backend/pkg/logger"
)

func DriversList(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, drivers.NewViews(rows))
	}
}

func DriverGet(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		driver, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, drivers.NewView(driver))
	}
}

type driverCreateRequest struct {
	Name        string      `json:"name" validate:"required"`
	Phone       string      `json:"phone" validate:"required"`
	Login       string      `json:"login,omitempty"`
	PIN         string      `json:"pin" validate:"required,len=4"`
	VehicleIDs  []uuid.UUID `json:"vehicle_ids,omitempty"`
	DistrictIDs []uuid.UUID `json:"district_ids,omitempty"`
}

func DriverCreate(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req driverCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		driver, err := svc.Create(r.Context(), drivers.CreateInput{
			Name:        req.Name,
			Phone:       req.Phone,
			Login:       req.Login,
			PIN:         req.PIN,
			VehicleIDs:  req.VehicleIDs,
			DistrictIDs: req.DistrictIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, drivers.NewView(driver))
	}
}

type driverUpdateRequest struct {
	Name        *string     `json:"name,omitempty"`
	Phone       *string     `json:"phone,omitempty"`
	PIN         *string     `json:"pin,omitempty" validate:"omitempty,len=4"`
	VehicleIDs  []uuid.UUID `json:"vehicle_ids,omitempty"`
	DistrictIDs []uuid.UUID `json:"district_ids,omitempty"`
}

func DriverUpdate(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req driverUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		driver, err := svc.Update(r.Context(), id, drivers.UpdateInput{
			Name:        req.Name,
			Phone:       req.Phone,
			PIN:         req.PIN,
			VehicleIDs:  req.VehicleIDs,
			DistrictIDs: req.DistrictIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, drivers.NewView(driver))
	}
}

// DriverDelete removes a driver unless open assignments still point at them.
func DriverDelete(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
