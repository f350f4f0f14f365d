package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/enums"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	findLive             func(ctx context.Context, orderID uuid.UUID, date time.Time) (*models.TruckAssignment, error)
	findByID             func(ctx context.Context, id uuid.UUID) (*models.TruckAssignment, error)
	create               func(ctx context.Context, a *models.TruckAssignment) (*models.TruckAssignment, error)
	save                 func(ctx context.Context, a *models.TruckAssignment) error
	listUnassignedOrders func(ctx context.Context, date time.Time) ([]models.Order, error)
	listByDate           func(ctx context.Context, date time.Time) ([]models.TruckAssignment, error)
	listForDriver        func(ctx context.Context, driverID uuid.UUID, date time.Time) ([]models.TruckAssignment, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, a *models.TruckAssignment) (*models.TruckAssignment, error) {
	if s.create != nil {
		return s.create(ctx, a)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return a, nil
}

func (s *stubRepo) Save(ctx context.Context, a *models.TruckAssignment) error {
	if s.save != nil {
		return s.save(ctx, a)
	}
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.TruckAssignment, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindLive(ctx context.Context, orderID uuid.UUID, date time.Time) (*models.TruckAssignment, error) {
	if s.findLive != nil {
		return s.findLive(ctx, orderID, date)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ListByDate(ctx context.Context, date time.Time) ([]models.TruckAssignment, error) {
	if s.listByDate != nil {
		return s.listByDate(ctx, date)
	}
	return nil, nil
}

func (s *stubRepo) ListForDriver(ctx context.Context, driverID uuid.UUID, date time.Time) ([]models.TruckAssignment, error) {
	if s.listForDriver != nil {
		return s.listForDriver(ctx, driverID, date)
	}
	return nil, nil
}

func (s *stubRepo) ListUnassignedOrders(ctx context.Context, date time.Time) ([]models.Order, error) {
	if s.listUnassignedOrders != nil {
		return s.listUnassignedOrders(ctx, date)
	}
	return nil, nil
}

func (s *stubRepo) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type recordingCache struct {
	substrings []string
}

func (c *recordingCache) InvalidateSubstring(substr string) int {
	c.substrings = append(c.substrings, substr)
	return 1
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, repo Repository, cache cacheInvalidator) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, NewResolver(), cache, fixedNow)
	require.NoError(t, err)
	return svc
}

func deliveryDate() time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
}

func TestUpsertCreatesWhenSlotEmpty(t *testing.T) {
	repo := &stubRepo{}
	cache := &recordingCache{}
	svc := newTestService(t, repo, cache)

	orderID := uuid.New()
	result, err := svc.Upsert(context.Background(), UpsertInput{
		OrderID:      orderID,
		DeliveryDate: deliveryDate(),
		VehicleName:  "Машина 2",
	})
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.False(t, result.Skipped)
	assert.Equal(t, orderID, result.Assignment.OrderID)
	assert.Equal(t, "Машина 2", result.Assignment.VehicleName)
	assert.Equal(t, enums.AssignmentStatusActive, result.Assignment.Status)
	assert.Equal(t, fixedNow(), result.Assignment.AssignedAt)
	assert.Contains(t, cache.substrings, "assignments")
}

func TestUpsertOverwritesUntouchedAssignment(t *testing.T) {
	existing := &models.TruckAssignment{
		ID:           uuid.New(),
		OrderID:      uuid.New(),
		DeliveryDate: deliveryDate(),
		Status:       enums.AssignmentStatusActive,
	}
	repo := &stubRepo{
		findLive: func(ctx context.Context, orderID uuid.UUID, date time.Time) (*models.TruckAssignment, error) {
			return existing, nil
		},
	}
	svc := newTestService(t, repo, &recordingCache{})

	result, err := svc.Upsert(context.Background(), UpsertInput{
		OrderID:      existing.OrderID,
		DeliveryDate: deliveryDate(),
		VehicleName:  "Машина 1",
		Notes:        "срочно",
	})
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.False(t, result.Skipped)
	assert.Equal(t, "Машина 1", result.Assignment.VehicleName)
	assert.Equal(t, "срочно", result.Assignment.Notes)
}

func TestUpsertSkipsAssignmentWithVehicle(t *testing.T) {
	existing := &models.TruckAssignment{
		ID:          uuid.New(),
		OrderID:     uuid.New(),
		VehicleName: "Машина 3",
		Status:      enums.AssignmentStatusActive,
	}
	repo := &stubRepo{
		findLive: func(ctx context.Context, orderID uuid.UUID, date time.Time) (*models.TruckAssignment, error) {
			return existing, nil
		},
		save: func(ctx context.Context, a *models.TruckAssignment) error {
			t.Fatal("skipped assignment must not be saved")
			return nil
		},
	}
	svc := newTestService(t, repo, &recordingCache{})

	result, err := svc.Upsert(context.Background(), UpsertInput{
		OrderID:      existing.OrderID,
		DeliveryDate: deliveryDate(),
		VehicleName:  "Машина 1",
	})
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Equal(t, "Машина 3", result.Assignment.VehicleName)
}

func TestUpsertSkipsAcceptedAssignment(t *testing.T) {
	existing := &models.TruckAssignment{
		ID:      uuid.New(),
		OrderID: uuid.New(),
		Status:  enums.AssignmentStatusAccepted,
	}
	repo := &stubRepo{
		findLive: func(ctx context.Context, orderID uuid.UUID, date time.Time) (*models.TruckAssignment, error) {
			return existing, nil
		},
	}
	svc := newTestService(t, repo, &recordingCache{})

	result, err := svc.Upsert(context.Background(), UpsertInput{
		OrderID:      existing.OrderID,
		DeliveryDate: deliveryDate(),
		VehicleName:  "Машина 1",
	})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
}

func TestUpsertRequiresOrderID(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &recordingCache{})

	_, err := svc.Upsert(context.Background(), UpsertInput{DeliveryDate: deliveryDate()})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestAutoAssignResolvesRegions(t *testing.T) {
	orders := []models.Order{
		{ID: uuid.New(), Region: "Вокзальный п/з", DeliveryDate: deliveryDate()},
		{ID: uuid.New(), Region: "какая-то новь", DeliveryDate: deliveryDate()},
		{ID: uuid.New(), Region: "", DeliveryDate: deliveryDate()},
	}
	var created []models.TruckAssignment
	repo := &stubRepo{
		listUnassignedOrders: func(ctx context.Context, date time.Time) ([]models.Order, error) {
			return orders, nil
		},
		create: func(ctx context.Context, a *models.TruckAssignment) (*models.TruckAssignment, error) {
			a.ID = uuid.New()
			created = append(created, *a)
			return a, nil
		},
	}
	svc := newTestService(t, repo, &recordingCache{})

	result, err := svc.AutoAssign(context.Background(), deliveryDate())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Assigned)
	assert.Equal(t, 1, result.NoRegion)
	assert.Equal(t, 0, result.Skipped)

	require.Len(t, created, 2)
	assert.Equal(t, "Машина 4", created[0].VehicleName)
	assert.Equal(t, FallbackVehicle, created[1].VehicleName)
}

func TestAcceptTransitionsActiveAssignment(t *testing.T) {
	driverID := uuid.New()
	assignment := &models.TruckAssignment{
		ID:       uuid.New(),
		DriverID: &driverID,
		Status:   enums.AssignmentStatusActive,
	}
	repo := &stubRepo{
		findByID: func(ctx context.Context, id uuid.UUID) (*models.TruckAssignment, error) {
			return assignment, nil
		},
	}
	svc := newTestService(t, repo, &recordingCache{})

	updated, err := svc.Accept(context.Background(), assignment.ID, driverID)
	require.NoError(t, err)

	assert.Equal(t, enums.AssignmentStatusAccepted, updated.Status)
	require.NotNil(t, updated.AcceptedAt)
	assert.Equal(t, fixedNow(), *updated.AcceptedAt)
}

func TestDeliverRejectsActiveAssignment(t *testing.T) {
	driverID := uuid.New()
	assignment := &models.TruckAssignment{
		ID:       uuid.New(),
		DriverID: &driverID,
		Status:   enums.AssignmentStatusActive,
	}
	repo := &stubRepo{
		findByID: func(ctx context.Context, id uuid.UUID) (*models.TruckAssignment, error) {
			return assignment, nil
		},
	}
	svc := newTestService(t, repo, &recordingCache{})

	_, err := svc.Deliver(context.Background(), assignment.ID, driverID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestTransitionRejectsForeignDriver(t *testing.T) {
	owner := uuid.New()
	assignment := &models.TruckAssignment{
		ID:       uuid.New(),
		DriverID: &owner,
		Status:   enums.AssignmentStatusActive,
	}
	repo := &stubRepo{
		findByID: func(ctx context.Context, id uuid.UUID) (*models.TruckAssignment, error) {
			return assignment, nil
		},
	}
	svc := newTestService(t, repo, &recordingCache{})

	_, err := svc.Accept(context.Background(), assignment.ID, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestCancelFreesSlot(t *testing.T) {
	assignment := &models.TruckAssignment{
		ID:     uuid.New(),
		Status: enums.AssignmentStatusActive,
	}
	repo := &stubRepo{
		findByID: func(ctx context.Context, id uuid.UUID) (*models.TruckAssignment, error) {
			return assignment, nil
		},
	}
	svc := newTestService(t, repo, &recordingCache{})

	cancelled, err := svc.Cancel(context.Background(), assignment.ID)
	require.NoError(t, err)

	assert.Equal(t, enums.AssignmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
}

func TestCancelRejectsDelivered(t *testing.T) {
	assignment := &models.TruckAssignment{
		ID:     uuid.New(),
		Status: enums.AssignmentStatusDelivered,
	}
	repo := &stubRepo{
		findByID: func(ctx context.Context, id uuid.UUID) (*models.TruckAssignment, error) {
			return assignment, nil
		},
	}
	svc := newTestService(t, repo, &recordingCache{})

	_, err := svc.Cancel(context.Background(), assignment.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}
