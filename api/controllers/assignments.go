package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/istochnik/delivery-backend/api/responses"
	"github.com/istochnik/delivery-backend/api/validators"
	"github.com/istochnik/delivery-backend/internal/assignment"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
	"github.com/istochnik/delivery-backend/pkg/logger"
)

// AssignmentsList returns the truck assignments for one delivery date.
func AssignmentsList(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := validators.ParseQueryDate(r, "date", time.Time{})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListByDate(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment.NewViews(rows))
	}
}

type assignmentUpsertRequest struct {
	OrderID      uuid.UUID  `json:"order_id" validate:"required"`
	DeliveryDate string     `json:"delivery_date" validate:"required"`
	VehicleName  string     `json:"vehicle_name"`
	DriverID     *uuid.UUID `json:"driver_id,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// AssignmentUpsert writes the (order, delivery date) slot from the dispatcher
// board. Assignments already in progress are reported as skipped, not errors.
func AssignmentUpsert(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assignmentUpsertRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "delivery_date must be YYYY-MM-DD"))
			return
		}

		result, err := svc.Upsert(r.Context(), assignment.UpsertInput{
			OrderID:      req.OrderID,
			DeliveryDate: date,
			VehicleName:  req.VehicleName,
			DriverID:     req.DriverID,
			Notes:        req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{
			"assignment": assignment.NewView(result.Assignment),
			"created":    result.Created,
			"skipped":    result.Skipped,
		}
		if result.SkipReason != "" {
			payload["skip_reason"] = result.SkipReason
		}
		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, payload)
	}
}

type autoAssignRequest struct {
	Date string `json:"date" validate:"required"`
}

// AssignmentsAuto runs the resolver over the date's unassigned orders.
func AssignmentsAuto(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req autoAssignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD"))
			return
		}

		result, err := svc.AutoAssign(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AssignmentCancel frees the assignment's (order, date) slot.
func AssignmentCancel(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cancelled, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment.NewView(cancelled))
	}
}
