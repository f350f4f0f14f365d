package districts

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
	"github.com/istochnik/delivery-backend/pkg/webhook"
)

// CreateInput carries a new district from the back office.
type CreateInput struct {
	Name        string
	Description string
}

// UpdateInput applies a partial update; only non-nil fields change.
type UpdateInput struct {
	Name        *string
	Description *string
	Active      *bool
}

type syncTrigger interface {
	TriggerSync(ctx context.Context, payload any) (*webhook.TriggerResponse, error)
}

// Service owns the district dictionary and the district-sync trigger. The
// sync itself runs in an external workflow-automation service; we only fire
// the webhook and relay its acknowledgment.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.District, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.District, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.District, error)
	List(ctx context.Context, activeOnly bool) ([]models.District, error)
	TriggerSync(ctx context.Context) (string, error)
}

type service struct {
	repo    Repository
	trigger syncTrigger
}

// NewService builds the districts service. The trigger is optional: without
// a configured webhook URL the sync endpoint reports a dependency error.
func NewService(repo Repository, trigger syncTrigger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("districts repository required")
	}
	return &service{repo: repo, trigger: trigger}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.District, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "district name required")
	}

	district := &models.District{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Active:      true,
	}
	if _, err := s.repo.Create(ctx, district); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "district name already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create district")
	}
	return district, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.District, error) {
	district, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		district.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		district.Description = strings.TrimSpace(*input.Description)
	}
	if input.Active != nil {
		district.Active = *input.Active
	}

	if err := s.repo.Save(ctx, district); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "district name already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save district")
	}
	return district, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	district, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !district.Active {
		return nil
	}
	district.Active = false
	if err := s.repo.Save(ctx, district); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate district")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.District, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "district id required")
	}
	district, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "district not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load district")
	}
	return district, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.District, error) {
	districts, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list districts")
	}
	return districts, nil
}

// TriggerSync fires the workflow-automation webhook and returns its ack
// message verbatim.
func (s *service) TriggerSync(ctx context.Context) (string, error) {
	if s.trigger == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "district sync webhook not configured")
	}
	ack, err := s.trigger.TriggerSync(ctx, map[string]string{"source": "back-office"})
	if err != nil {
		return "", err
	}
	return ack.Message, nil
}
