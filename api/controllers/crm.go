package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/istochnik/delivery-backend/api/responses"
	"github.com/istochnik/delivery-backend/api/validators"
	"github.com/istochnik/delivery-backend/internal/orders"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
	"github.com/istochnik/delivery-backend/pkg/logger"
	"github.com/istochnik/delivery-backend/pkg/types"
)

type crmOrderPayload struct {
	CRMLeadID     int64           `json:"crm_lead_id" validate:"required"`
	DeliveryDate  string          `json:"delivery_date" validate:"required"`
	TimeSlot      string          `json:"time_slot,omitempty"`
	Items         types.LineItems `json:"items,omitempty"`
	Region        string          `json:"region,omitempty"`
	IsPaid        bool            `json:"is_paid,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Total         decimal.Decimal `json:"total,omitempty"`
	Comment       string          `json:"comment,omitempty"`
}

type crmSyncRequest struct {
	Orders []crmOrderPayload `json:"orders" validate:"required,min=1"`
}

// CRMOrdersSync ingests a batch of orders pushed by the CRM sync. Each order
// upserts by its lead id; a failure on one order aborts the whole batch so
// the CRM retries it intact.
func CRMOrdersSync(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req crmSyncRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var created, updated int
		for _, payload := range req.Orders {
			date, err := time.Parse("2006-01-02", payload.DeliveryDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "delivery_date must be YYYY-MM-DD").
						WithDetails(map[string]int64{"crm_lead_id": payload.CRMLeadID}))
				return
			}

			_, isNew, err := svc.SyncFromCRM(r.Context(), orders.SyncInput{
				CRMLeadID:     payload.CRMLeadID,
				DeliveryDate:  date,
				TimeSlot:      payload.TimeSlot,
				Items:         payload.Items,
				Region:        payload.Region,
				IsPaid:        payload.IsPaid,
				PaymentMethod: payload.PaymentMethod,
				Total:         payload.Total,
				Comment:       payload.Comment,
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if isNew {
				created++
			} else {
				updated++
			}
		}

		responses.WriteSuccess(w, map[string]int{
			"created": created,
			"updated": updated,
		})
	}
}
