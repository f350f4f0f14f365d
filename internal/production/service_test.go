package production

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	findByDateAndSlot func(ctx context.Context, date time.Time, slot string) (*models.ProductionSession, error)
	created           []*models.ProductionSession
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, session *models.ProductionSession) (*models.ProductionSession, error) {
	s.created = append(s.created, session)
	return session, nil
}

func (s *stubRepo) Save(ctx context.Context, session *models.ProductionSession) error { return nil }

func (s *stubRepo) FindByDateAndSlot(ctx context.Context, date time.Time, slot string) (*models.ProductionSession, error) {
	if s.findByDateAndSlot != nil {
		return s.findByDateAndSlot(ctx, date, slot)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ListByDate(ctx context.Context, date time.Time) ([]models.ProductionSession, error) {
	return nil, nil
}

func sessionDate() time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
}

func TestRecordCreatesSession(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	session, err := svc.Record(context.Background(), RecordInput{
		Date:       sessionDate(),
		TimeSlot:   " Утро ",
		Bottles19L: 120,
		Bottles5L:  40,
	})
	require.NoError(t, err)

	assert.Equal(t, "Утро", session.TimeSlot)
	assert.Equal(t, 120, session.Bottles19L)
	require.Len(t, repo.created, 1)
}

func TestRecordReplacesExistingCounts(t *testing.T) {
	existing := &models.ProductionSession{Date: sessionDate(), TimeSlot: "День", Bottles19L: 10}
	repo := &stubRepo{
		findByDateAndSlot: func(ctx context.Context, date time.Time, slot string) (*models.ProductionSession, error) {
			return existing, nil
		},
	}
	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	session, err := svc.Record(context.Background(), RecordInput{
		Date:       sessionDate(),
		TimeSlot:   "День",
		Bottles19L: 95,
	})
	require.NoError(t, err)

	assert.Equal(t, 95, session.Bottles19L)
	assert.Empty(t, repo.created)
}

func TestRecordRejectsUnknownSlot(t *testing.T) {
	svc, err := NewService(&stubRepo{}, stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), RecordInput{Date: sessionDate(), TimeSlot: "Ночь"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRecordRejectsNegativeCounts(t *testing.T) {
	svc, err := NewService(&stubRepo{}, stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), RecordInput{Date: sessionDate(), TimeSlot: "Утро", Bottles5L: -1})
	require.Error(t, err)
}
