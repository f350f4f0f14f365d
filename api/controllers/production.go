package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/istochnik/delivery-backend/api/responses"
	"github.com/istochnik/delivery-backend/api/validators"
	"github.com/istochnik/delivery-backend/internal/production"
	"github.com/istochnik/delivery-backend/pkg/db/models"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
	"github.com/istochnik/delivery-backend/pkg/logger"
)

type productionView struct {
	ID             uuid.UUID `json:"id"`
	Date           string    `json:"date"`
	TimeSlot       string    `json:"time_slot"`
	Bottles19L     int       `json:"bottles_19l"`
	Bottles5L      int       `json:"bottles_5l"`
	Bottles1500ML  int       `json:"bottles_1500ml"`
	FreeContainers int       `json:"free_containers"`
	CreatedAt      time.Time `json:"created_at"`
}

func newProductionView(s *models.ProductionSession) productionView {
	return productionView{
		ID:             s.ID,
		Date:           s.Date.Format("2006-01-02"),
		TimeSlot:       s.TimeSlot,
		Bottles19L:     s.Bottles19L,
		Bottles5L:      s.Bottles5L,
		Bottles1500ML:  s.Bottles1500ML,
		FreeContainers: s.FreeContainers,
		CreatedAt:      s.CreatedAt,
	}
}

// ProductionList returns the bottling sessions recorded for one date.
func ProductionList(svc production.Service, logg *logger.Logger) http.HandlerFunc {
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
		views := make([]productionView, 0, len(rows))
		for i := range rows {
			views = append(views, newProductionView(&rows[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

type productionRecordRequest struct {
	Date           string `json:"date" validate:"required"`
	TimeSlot       string `json:"time_slot" validate:"required"`
	Bottles19L     int    `json:"bottles_19l,omitempty"`
	Bottles5L      int    `json:"bottles_5l,omitempty"`
	Bottles1500ML  int    `json:"bottles_1500ml,omitempty"`
	FreeContainers int    `json:"free_containers,omitempty"`
}

// ProductionRecord upserts the counts for one (date, time slot).
func ProductionRecord(svc production.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productionRecordRequest
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

		session, err := svc.Record(r.Context(), production.RecordInput{
			Date:           date,
			TimeSlot:       req.TimeSlot,
			Bottles19L:     req.Bottles19L,
			Bottles5L:      req.Bottles5L,
			Bottles1500ML:  req.Bottles1500ML,
			FreeContainers: req.FreeContainers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductionView(session))
	}
}
