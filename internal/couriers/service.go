package couriers

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

// CreateInput carries a new courier from the back office.
type CreateInput struct {
	Name  string
	Phone string
}

// UpdateInput applies a partial update; only non-nil fields change.
type UpdateInput struct {
	Name   *string
	Phone  *string
	Active *bool
}

// Service owns the courier roster. Couriers carry no assignments of their
// own, so deletion is unconditional.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Courier, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Courier, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Courier, error)
	List(ctx context.Context, activeOnly bool) ([]models.Courier, error)
}

type service struct {
	repo Repository
}

// NewService builds the couriers service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("couriers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Courier, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and phone required")
	}

	courier := &models.Courier{Name: name, Phone: phone, Active: true}
	if _, err := s.repo.Create(ctx, courier); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create courier")
	}
	return courier, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Courier, error) {
	courier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		courier.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil && strings.TrimSpace(*input.Phone) != "" {
		courier.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Active != nil {
		courier.Active = *input.Active
	}

	if err := s.repo.Save(ctx, courier); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save courier")
	}
	return courier, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete courier")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Courier, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier id required")
	}
	courier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "courier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier")
	}
	return courier, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Courier, error) {
	couriers, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list couriers")
	}
	return couriers, nil
}
