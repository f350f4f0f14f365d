package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db"
	"github.com/istochnik/delivery-backend/pkg/db/models"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
)

// CreateInput carries a new vehicle from the back office.
type CreateInput struct {
	Name         string
	Brand        string
	LicensePlate string
	Capacity     int
}

// UpdateInput applies a partial update; only non-nil fields change.
type UpdateInput struct {
	Name         *string
	Brand        *string
	LicensePlate *string
	Capacity     *int
	Active       *bool
}

// Service owns the vehicle fleet. Deletion is a soft deactivate because
// assignments reference vehicles by name.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Vehicle, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Vehicle, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, activeOnly bool) ([]models.Vehicle, error)
}

type service struct {
	repo Repository
}

// NewService builds the vehicles service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Vehicle, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle name required")
	}
	if input.Capacity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity cannot be negative")
	}

	vehicle := &models.Vehicle{
		Name:         name,
		Brand:        strings.TrimSpace(input.Brand),
		LicensePlate: strings.TrimSpace(input.LicensePlate),
		Capacity:     input.Capacity,
		Active:       true,
	}
	if _, err := s.repo.Create(ctx, vehicle); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "vehicle name already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return vehicle, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Vehicle, error) {
	vehicle, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		vehicle.Name = strings.TrimSpace(*input.Name)
	}
	if input.Brand != nil {
		vehicle.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.LicensePlate != nil {
		vehicle.LicensePlate = strings.TrimSpace(*input.LicensePlate)
	}
	if input.Capacity != nil {
		if *input.Capacity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity cannot be negative")
		}
		vehicle.Capacity = *input.Capacity
	}
	if input.Active != nil {
		vehicle.Active = *input.Active
	}

	if err := s.repo.Save(ctx, vehicle); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "vehicle name already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save vehicle")
	}
	return vehicle, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	vehicle, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !vehicle.Active {
		return nil
	}
	vehicle.Active = false
	if err := s.repo.Save(ctx, vehicle); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate vehicle")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Vehicle, error) {
	vehicles, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return vehicles, nil
}
