package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/istochnik/delivery-backend/api/middleware"
	"github.com/istochnik/delivery-backend/api/responses"
	"github.com/istochnik/delivery-backend/api/validators"
	"github.com/istochnik/delivery-backend/internal/assignment"
	"github.com/istochnik/delivery-backend/internal/drivers"
	"github.com/istochnik/delivery-backend/pkg/enums"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
	"github.com/istochnik/delivery-backend/pkg/logger"
)

type driverLoginRequest struct {
	Phone string `json:"phone" validate:"required"`
	PIN   string `json:"pin" validate:"required,len=4"`
}

// DriverLogin exchanges phone + PIN for a driver token.
func DriverLogin(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req driverLoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), drivers.LoginInput{
			Phone: req.Phone,
			PIN:   req.PIN,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"token":  result.Token,
			"driver": drivers.NewView(result.Driver),
		})
	}
}

// DriverTasks lists the authenticated driver's open assignments. Defaults to
// today when no date is passed.
func DriverTasks(svc assignment.Service, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		driverID := middleware.DriverIDFromContext(r.Context())
		date, err := validators.ParseQueryDate(r, "date", now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tasks, err := svc.TasksForDriver(r.Context(), driverID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment.NewViews(tasks))
	}
}

// DriverTaskAccept marks the assignment accepted by the authenticated driver.
func DriverTaskAccept(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accepted, err := svc.Accept(r.Context(), id, middleware.DriverIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment.NewView(accepted))
	}
}

// DriverTaskDeliver marks the assignment delivered.
func DriverTaskDeliver(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		delivered, err := svc.Deliver(r.Context(), id, middleware.DriverIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment.NewView(delivered))
	}
}

type driverStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// DriverStatus records the status the driver reported from the app.
func DriverStatus(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req driverStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseDriverStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		driver, err := svc.UpdateStatus(r.Context(), middleware.DriverIDFromContext(r.Context()), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, drivers.NewView(driver))
	}
}
