package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db"
	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/enums"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
)

const cacheKeyPrefix = "assignments"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cacheInvalidator interface {
	InvalidateSubstring(substr string) int
}

// Service owns the assignment lifecycle: resolver-driven auto-assignment,
// manual upserts from the dispatcher board, and driver status transitions.
type Service interface {
	Upsert(ctx context.Context, input UpsertInput) (*UpsertResult, error)
	AutoAssign(ctx context.Context, deliveryDate time.Time) (*AutoAssignResult, error)
	ListByDate(ctx context.Context, deliveryDate time.Time) ([]models.TruckAssignment, error)
	TasksForDriver(ctx context.Context, driverID uuid.UUID, deliveryDate time.Time) ([]models.TruckAssignment, error)
	Accept(ctx context.Context, assignmentID, driverID uuid.UUID) (*models.TruckAssignment, error)
	Deliver(ctx context.Context, assignmentID, driverID uuid.UUID) (*models.TruckAssignment, error)
	Cancel(ctx context.Context, assignmentID uuid.UUID) (*models.TruckAssignment, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	resolver *Resolver
	cache    cacheInvalidator
	now      func() time.Time
}

// NewService builds the assignment service with its required dependencies.
func NewService(repo Repository, tx txRunner, resolver *Resolver, cache cacheInvalidator, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     repo,
		tx:       tx,
		resolver: resolver,
		cache:    cache,
		now:      now,
	}, nil
}

// Upsert writes the (order, delivery date) slot inside a transaction. An
// existing assignment is only overwritten when it still looks untouched:
// empty vehicle name and status active. Anything a dispatcher or driver has
// already worked on is left alone and reported as skipped.
func (s *service) Upsert(ctx context.Context, input UpsertInput) (*UpsertResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.DeliveryDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date required")
	}

	var result UpsertResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindLive(ctx, input.OrderID, input.DeliveryDate)
		switch {
		case err == nil:
			if existing.VehicleName != "" || existing.Status != enums.AssignmentStatusActive {
				result = UpsertResult{
					Assignment: existing,
					Skipped:    true,
					SkipReason: "assignment already in progress",
				}
				return nil
			}
			existing.VehicleName = input.VehicleName
			existing.DriverID = input.DriverID
			existing.Notes = input.Notes
			if err := repo.Save(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update assignment")
			}
			result = UpsertResult{Assignment: existing}
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			created := &models.TruckAssignment{
				OrderID:      input.OrderID,
				DeliveryDate: input.DeliveryDate,
				VehicleName:  input.VehicleName,
				DriverID:     input.DriverID,
				Status:       enums.AssignmentStatusActive,
				Notes:        input.Notes,
				AssignedAt:   s.now(),
			}
			if _, err := repo.Create(ctx, created); err != nil {
				if db.IsUniqueViolation(err) {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "assignment slot already taken")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
			}
			result = UpsertResult{Assignment: created, Created: true}
			return nil

		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
	})
	if err != nil {
		return nil, err
	}

	s.invalidate()
	return &result, nil
}

// AutoAssign runs the resolver over every unassigned order of the date.
// Orders without a region are counted and left untouched.
func (s *service) AutoAssign(ctx context.Context, deliveryDate time.Time) (*AutoAssignResult, error) {
	if deliveryDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date required")
	}

	orders, err := s.repo.ListUnassignedOrders(ctx, deliveryDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unassigned orders")
	}

	result := &AutoAssignResult{Processed: len(orders)}
	for i := range orders {
		order := &orders[i]
		vehicle, ok := s.resolver.Resolve(order.Region)
		if !ok {
			result.NoRegion++
			continue
		}

		upsert, err := s.Upsert(ctx, UpsertInput{
			OrderID:      order.ID,
			DeliveryDate: deliveryDate,
			VehicleName:  vehicle,
		})
		if err != nil {
			// A concurrent writer won the slot; nothing to back off from.
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
				result.Skipped++
				continue
			}
			return nil, err
		}
		if upsert.Skipped {
			result.Skipped++
			continue
		}
		result.Assigned++
	}

	s.invalidate()
	return result, nil
}

func (s *service) ListByDate(ctx context.Context, deliveryDate time.Time) ([]models.TruckAssignment, error) {
	if deliveryDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date required")
	}
	rows, err := s.repo.ListByDate(ctx, deliveryDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	return rows, nil
}

func (s *service) TasksForDriver(ctx context.Context, driverID uuid.UUID, deliveryDate time.Time) ([]models.TruckAssignment, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}
	rows, err := s.repo.ListForDriver(ctx, driverID, deliveryDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list driver tasks")
	}
	return rows, nil
}

// Accept moves an active assignment to accepted on behalf of its driver.
func (s *service) Accept(ctx context.Context, assignmentID, driverID uuid.UUID) (*models.TruckAssignment, error) {
	return s.transition(ctx, assignmentID, driverID,
		enums.AssignmentStatusActive, enums.AssignmentStatusAccepted,
		func(a *models.TruckAssignment, at time.Time) { a.AcceptedAt = &at })
}

// Deliver moves an accepted assignment to delivered.
func (s *service) Deliver(ctx context.Context, assignmentID, driverID uuid.UUID) (*models.TruckAssignment, error) {
	return s.transition(ctx, assignmentID, driverID,
		enums.AssignmentStatusAccepted, enums.AssignmentStatusDelivered,
		func(a *models.TruckAssignment, at time.Time) { a.DeliveredAt = &at })
}

// Cancel frees the (order, date) slot. Delivered assignments stay final.
func (s *service) Cancel(ctx context.Context, assignmentID uuid.UUID) (*models.TruckAssignment, error) {
	if assignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}

	var cancelled *models.TruckAssignment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assignment, err := repo.FindByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if assignment.Status == enums.AssignmentStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivered assignment cannot be cancelled")
		}
		if assignment.Status == enums.AssignmentStatusCancelled {
			cancelled = assignment
			return nil
		}

		at := s.now()
		assignment.Status = enums.AssignmentStatusCancelled
		assignment.CancelledAt = &at
		if err := repo.Save(ctx, assignment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel assignment")
		}
		cancelled = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate()
	return cancelled, nil
}

func (s *service) transition(
	ctx context.Context,
	assignmentID, driverID uuid.UUID,
	from, to enums.AssignmentStatus,
	stamp func(*models.TruckAssignment, time.Time),
) (*models.TruckAssignment, error) {
	if assignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}

	var updated *models.TruckAssignment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assignment, err := repo.FindByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if assignment.DriverID == nil || *assignment.DriverID != driverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "assignment belongs to another driver")
		}
		if assignment.Status != from {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move assignment from %s to %s", assignment.Status, to)).
				WithDetails(map[string]string{"current": assignment.Status.String(), "target": to.String()})
		}

		assignment.Status = to
		stamp(assignment, s.now())
		if err := repo.Save(ctx, assignment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save assignment")
		}
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate()
	return updated, nil
}

func (s *service) invalidate() {
	if s.cache != nil {
		s.cache.InvalidateSubstring(cacheKeyPrefix)
	}
}
