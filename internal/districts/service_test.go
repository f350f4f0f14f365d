package districts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
	"github.com/istochnik/delivery-backend/pkg/webhook"
)

type stubRepo struct {
	findByID func(ctx context.Context, id uuid.UUID) (*models.District, error)
	saved    *models.District
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, district *models.District) (*models.District, error) {
	if district.ID == uuid.Nil {
		district.ID = uuid.New()
	}
	return district, nil
}

func (s *stubRepo) Save(ctx context.Context, district *models.District) error {
	s.saved = district
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.District, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, activeOnly bool) ([]models.District, error) {
	return nil, nil
}

type stubTrigger struct {
	called bool
	resp   *webhook.TriggerResponse
	err    error
}

func (s *stubTrigger) TriggerSync(ctx context.Context, payload any) (*webhook.TriggerResponse, error) {
	s.called = true
	return s.resp, s.err
}

func TestCreateTrimsAndActivates(t *testing.T) {
	svc, err := NewService(&stubRepo{}, nil)
	require.NoError(t, err)

	district, err := svc.Create(context.Background(), CreateInput{Name: "  Ленинский  "})
	require.NoError(t, err)

	assert.Equal(t, "Ленинский", district.Name)
	assert.True(t, district.Active)
}

func TestDeactivateIsIdempotent(t *testing.T) {
	inactive := &models.District{ID: uuid.New(), Name: "Центральный", Active: false}
	repo := &stubRepo{
		findByID: func(ctx context.Context, id uuid.UUID) (*models.District, error) {
			return inactive, nil
		},
	}
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), inactive.ID))
	assert.Nil(t, repo.saved)
}

func TestTriggerSyncRelaysAck(t *testing.T) {
	trigger := &stubTrigger{resp: &webhook.TriggerResponse{Message: "Workflow was started"}}
	svc, err := NewService(&stubRepo{}, trigger)
	require.NoError(t, err)

	ack, err := svc.TriggerSync(context.Background())
	require.NoError(t, err)

	assert.True(t, trigger.called)
	assert.Equal(t, "Workflow was started", ack)
}

func TestTriggerSyncWithoutWebhook(t *testing.T) {
	svc, err := NewService(&stubRepo{}, nil)
	require.NoError(t, err)

	_, err = svc.TriggerSync(context.Background())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}
