package production

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db"
	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/enums"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RecordInput carries bottling counts for one (date, time slot).
type RecordInput struct {
	Date           time.Time
	TimeSlot       string
	Bottles19L     int
	Bottles5L      int
	Bottles1500ML  int
	FreeContainers int
}

// Service records bottled-water output per shift. Re-submitting the same
// (date, slot) replaces the counts; the factory corrects tallies during the
// day.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.ProductionSession, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.ProductionSession, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the production service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("production repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.ProductionSession, error) {
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date required")
	}
	slot, err := enums.ParseTimeSlot(input.TimeSlot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid time slot")
	}
	if input.Bottles19L < 0 || input.Bottles5L < 0 || input.Bottles1500ML < 0 || input.FreeContainers < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counts cannot be negative")
	}

	var session *models.ProductionSession
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByDateAndSlot(ctx, input.Date, slot.String())
		switch {
		case err == nil:
			existing.Bottles19L = input.Bottles19L
			existing.Bottles5L = input.Bottles5L
			existing.Bottles1500ML = input.Bottles1500ML
			existing.FreeContainers = input.FreeContainers
			if err := repo.Save(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update production session")
			}
			session = existing
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			fresh := &models.ProductionSession{
				Date:           input.Date,
				TimeSlot:       slot.String(),
				Bottles19L:     input.Bottles19L,
				Bottles5L:      input.Bottles5L,
				Bottles1500ML:  input.Bottles1500ML,
				FreeContainers: input.FreeContainers,
			}
			if _, err := repo.Create(ctx, fresh); err != nil {
				if db.IsUniqueViolation(err) {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "session recorded concurrently")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create production session")
			}
			session = fresh
			return nil

		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load production session")
		}
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) ListByDate(ctx context.Context, date time.Time) ([]models.ProductionSession, error) {
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date required")
	}
	sessions, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list production sessions")
	}
	return sessions, nil
}
