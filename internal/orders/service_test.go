package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/cache"
	"github.com/istochnik/delivery-backend/pkg/db/models"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
	"github.com/istochnik/delivery-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	listByDate      func(ctx context.Context, date time.Time, filters ListFilters) ([]models.Order, error)
	findByID        func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	findByCRMLeadID func(ctx context.Context, leadID int64) (*models.Order, error)
	listPage        func(ctx context.Context, cursor pagination.Cursor, limit int) ([]models.Order, error)
	save            func(ctx context.Context, order *models.Order) error
	markExported    func(ctx context.Context, ids []uuid.UUID) (int64, error)
	listCalls       int
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return order, nil
}

func (s *stubRepo) Save(ctx context.Context, order *models.Order) error {
	if s.save != nil {
		return s.save(ctx, order)
	}
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByCRMLeadID(ctx context.Context, leadID int64) (*models.Order, error) {
	if s.findByCRMLeadID != nil {
		return s.findByCRMLeadID(ctx, leadID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ListByDate(ctx context.Context, date time.Time, filters ListFilters) ([]models.Order, error) {
	s.listCalls++
	if s.listByDate != nil {
		return s.listByDate(ctx, date, filters)
	}
	return nil, nil
}

func (s *stubRepo) ListPage(ctx context.Context, cursor pagination.Cursor, limit int) ([]models.Order, error) {
	if s.listPage != nil {
		return s.listPage(ctx, cursor, limit)
	}
	return nil, nil
}

func (s *stubRepo) MarkExported(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if s.markExported != nil {
		return s.markExported(ctx, ids)
	}
	return int64(len(ids)), nil
}

func testDate() time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
}

func TestListServesRepeatReadsFromCache(t *testing.T) {
	rows := []models.Order{{ID: uuid.New(), CRMLeadID: 42, DeliveryDate: testDate()}}
	repo := &stubRepo{
		listByDate: func(ctx context.Context, date time.Time, filters ListFilters) ([]models.Order, error) {
			return rows, nil
		},
	}
	svc, err := NewService(repo, stubTxRunner{}, cache.New())
	require.NoError(t, err)

	first, err := svc.List(context.Background(), testDate(), ListFilters{})
	require.NoError(t, err)
	second, err := svc.List(context.Background(), testDate(), ListFilters{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls)
}

func TestListCacheKeysDifferPerFilter(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo, stubTxRunner{}, cache.New())
	require.NoError(t, err)

	paid := true
	_, err = svc.List(context.Background(), testDate(), ListFilters{})
	require.NoError(t, err)
	_, err = svc.List(context.Background(), testDate(), ListFilters{IsPaid: &paid})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.listCalls)
}

func TestPatchTogglesPayment(t *testing.T) {
	order := &models.Order{ID: uuid.New(), CRMLeadID: 7, DeliveryDate: testDate()}
	repo := &stubRepo{
		findByID: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
	}
	c := cache.New()
	c.Set("orders:2026-09-01", []models.Order{}, 0)

	svc, err := NewService(repo, stubTxRunner{}, c)
	require.NoError(t, err)

	paid := true
	updated, err := svc.Patch(context.Background(), order.ID, PatchInput{IsPaid: &paid})
	require.NoError(t, err)

	assert.True(t, updated.IsPaid)
	_, stillCached := c.Get("orders:2026-09-01")
	assert.False(t, stillCached)
}

func TestPatchRejectsUnknownTimeSlot(t *testing.T) {
	svc, err := NewService(&stubRepo{}, stubTxRunner{}, nil)
	require.NoError(t, err)

	slot := "Ночь"
	_, err = svc.Patch(context.Background(), uuid.New(), PatchInput{TimeSlot: &slot})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestPatchRejectsEmptyPatch(t *testing.T) {
	svc, err := NewService(&stubRepo{}, stubTxRunner{}, nil)
	require.NoError(t, err)

	_, err = svc.Patch(context.Background(), uuid.New(), PatchInput{})
	require.Error(t, err)
}

func TestMarkExportedReportsChangedRows(t *testing.T) {
	repo := &stubRepo{
		markExported: func(ctx context.Context, ids []uuid.UUID) (int64, error) {
			return 2, nil
		},
	}
	svc, err := NewService(repo, stubTxRunner{}, nil)
	require.NoError(t, err)

	marked, err := svc.MarkExported(context.Background(), []uuid.UUID{uuid.New(), uuid.New(), uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)
}

func TestHistoryPagesWithCursor(t *testing.T) {
	base := testDate()
	rows := make([]models.Order, 3)
	for i := range rows {
		rows[i] = models.Order{
			ID:        uuid.New(),
			CRMLeadID: int64(i + 1),
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	repo := &stubRepo{
		listPage: func(ctx context.Context, cursor pagination.Cursor, limit int) ([]models.Order, error) {
			assert.Equal(t, 3, limit)
			return rows, nil
		},
	}
	svc, err := NewService(repo, stubTxRunner{}, nil)
	require.NoError(t, err)

	page, next, err := svc.History(context.Background(), "", 2)
	require.NoError(t, err)

	require.Len(t, page, 2)
	require.NotEmpty(t, next)

	cursor, err := pagination.Decode(next)
	require.NoError(t, err)
	assert.Equal(t, page[1].ID, cursor.ID)
}

func TestHistoryLastPageHasNoCursor(t *testing.T) {
	repo := &stubRepo{
		listPage: func(ctx context.Context, cursor pagination.Cursor, limit int) ([]models.Order, error) {
			return []models.Order{{ID: uuid.New()}}, nil
		},
	}
	svc, err := NewService(repo, stubTxRunner{}, nil)
	require.NoError(t, err)

	page, next, err := svc.History(context.Background(), "", 50)
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.Empty(t, next)
}

func TestHistoryRejectsMalformedCursor(t *testing.T) {
	svc, err := NewService(&stubRepo{}, stubTxRunner{}, nil)
	require.NoError(t, err)

	_, _, err = svc.History(context.Background(), "not-base64!!", 10)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSyncFromCRMCreatesNewOrder(t *testing.T) {
	svc, err := NewService(&stubRepo{}, stubTxRunner{}, nil)
	require.NoError(t, err)

	order, created, err := svc.SyncFromCRM(context.Background(), SyncInput{
		CRMLeadID:    555,
		DeliveryDate: testDate(),
		Region:       "Центральный",
	})
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, int64(555), order.CRMLeadID)
}

func TestSyncFromCRMUpdatesExistingLead(t *testing.T) {
	existing := &models.Order{ID: uuid.New(), CRMLeadID: 555, DeliveryDate: testDate(), Comment: "старый"}
	repo := &stubRepo{
		findByCRMLeadID: func(ctx context.Context, leadID int64) (*models.Order, error) {
			return existing, nil
		},
	}
	svc, err := NewService(repo, stubTxRunner{}, nil)
	require.NoError(t, err)

	order, created, err := svc.SyncFromCRM(context.Background(), SyncInput{
		CRMLeadID:    555,
		DeliveryDate: testDate(),
		Comment:      "новый",
	})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, existing.ID, order.ID)
	assert.Equal(t, "новый", order.Comment)
}
