package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/istochnik/delivery-backend/api/responses"
	"github.com/istochnik/delivery-backend/api/validators"
	"github.com/istochnik/delivery-backend/internal/orders"
	"github.com/istochnik/delivery-backend/pkg/logger"
	"github.com/istochnik/delivery-backend/pkg/pagination"
)

// OrdersList returns the orders for one delivery date, optionally filtered.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := validators.ParseQueryDate(r, "date", time.Time{})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		isPaid, err := validators.ParseQueryBool(r, "is_paid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		exported, err := validators.ParseQueryBool(r, "exported")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := orders.ListFilters{
			IsPaid:   isPaid,
			Exported: exported,
			TimeSlot: r.URL.Query().Get("time_slot"),
			Region:   r.URL.Query().Get("region"),
		}

		rows, err := svc.List(r.Context(), date, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.NewViews(rows))
	}
}

// OrdersHistory pages through the whole order archive newest-first.
func OrdersHistory(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.History(r.Context(), r.URL.Query().Get("cursor"), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pagination.Page[orders.View]{
			Items:      orders.NewViews(rows),
			NextCursor: next,
		})
	}
}

// OrderGet returns a single order with its assignments.
func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.NewView(order))
	}
}

type orderPatchRequest struct {
	IsPaid        *bool   `json:"is_paid,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	Comment       *string `json:"comment,omitempty"`
	TimeSlot      *string `json:"time_slot,omitempty"`
}

// OrderPatch applies a partial update to one order.
func OrderPatch(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req orderPatchRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Patch(r.Context(), id, orders.PatchInput{
			IsPaid:        req.IsPaid,
			PaymentMethod: req.PaymentMethod,
			Comment:       req.Comment,
			TimeSlot:      req.TimeSlot,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.NewView(order))
	}
}

type exportMarkRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" validate:"required,min=1"`
}

// OrdersExportMark flips the exported flag on a batch of orders.
func OrdersExportMark(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exportMarkRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		marked, err := svc.MarkExported(r.Context(), req.OrderIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"marked": marked})
	}
}
