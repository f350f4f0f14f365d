package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/istochnik/delivery-backend/api/middleware"
	"github.com/istochnik/delivery-backend/internal/assignment"
	"github.com/istochnik/delivery-backend/internal/districts"
	"github.com/istochnik/delivery-backend/internal/drivers"
	"github.com/istochnik/delivery-backend/internal/orders"
	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/enums"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
)

type stubOrdersService struct {
	listFn func(ctx context.Context, date time.Time, filters orders.ListFilters) ([]models.Order, error)
	syncFn func(ctx context.Context, input orders.SyncInput) (*models.Order, bool, error)
}

func (s *stubOrdersService) List(ctx context.Context, date time.Time, filters orders.ListFilters) ([]models.Order, error) {
	return s.listFn(ctx, date, filters)
}

func (s *stubOrdersService) History(ctx context.Context, cursorToken string, limit int) ([]models.Order, string, error) {
	return nil, "", nil
}

func (s *stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubOrdersService) Patch(ctx context.Context, id uuid.UUID, patch orders.PatchInput) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubOrdersService) MarkExported(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return int64(len(ids)), nil
}

func (s *stubOrdersService) SyncFromCRM(ctx context.Context, input orders.SyncInput) (*models.Order, bool, error) {
	return s.syncFn(ctx, input)
}

type stubAssignmentService struct {
	upsertFn func(ctx context.Context, input assignment.UpsertInput) (*assignment.UpsertResult, error)
	autoFn   func(ctx context.Context, date time.Time) (*assignment.AutoAssignResult, error)
	tasksFn  func(ctx context.Context, driverID uuid.UUID, date time.Time) ([]models.TruckAssignment, error)
}

func (s *stubAssignmentService) Upsert(ctx context.Context, input assignment.UpsertInput) (*assignment.UpsertResult, error) {
	return s.upsertFn(ctx, input)
}

func (s *stubAssignmentService) AutoAssign(ctx context.Context, date time.Time) (*assignment.AutoAssignResult, error) {
	return s.autoFn(ctx, date)
}

func (s *stubAssignmentService) ListByDate(ctx context.Context, date time.Time) ([]models.TruckAssignment, error) {
	return nil, nil
}

func (s *stubAssignmentService) TasksForDriver(ctx context.Context, driverID uuid.UUID, date time.Time) ([]models.TruckAssignment, error) {
	return s.tasksFn(ctx, driverID, date)
}

func (s *stubAssignmentService) Accept(ctx context.Context, assignmentID, driverID uuid.UUID) (*models.TruckAssignment, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
}

func (s *stubAssignmentService) Deliver(ctx context.Context, assignmentID, driverID uuid.UUID) (*models.TruckAssignment, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
}

func (s *stubAssignmentService) Cancel(ctx context.Context, assignmentID uuid.UUID) (*models.TruckAssignment, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
}

type stubDriversService struct {
	loginFn  func(ctx context.Context, input drivers.LoginInput) (*drivers.LoginResult, error)
	statusFn func(ctx context.Context, id uuid.UUID, status enums.DriverStatus) (*models.Driver, error)
}

func (s *stubDriversService) Login(ctx context.Context, input drivers.LoginInput) (*drivers.LoginResult, error) {
	return s.loginFn(ctx, input)
}

func (s *stubDriversService) Create(ctx context.Context, input drivers.CreateInput) (*models.Driver, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not wired")
}

func (s *stubDriversService) Update(ctx context.Context, id uuid.UUID, input drivers.UpdateInput) (*models.Driver, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not wired")
}

func (s *stubDriversService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubDriversService) Get(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
}

func (s *stubDriversService) List(ctx context.Context) ([]models.Driver, error) {
	return nil, nil
}

func (s *stubDriversService) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DriverStatus) (*models.Driver, error) {
	return s.statusFn(ctx, id, status)
}

type stubDistrictsService struct {
	syncFn func(ctx context.Context) (string, error)
}

func (s *stubDistrictsService) Create(ctx context.Context, input districts.CreateInput) (*models.District, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not wired")
}

func (s *stubDistrictsService) Update(ctx context.Context, id uuid.UUID, input districts.UpdateInput) (*models.District, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not wired")
}

func (s *stubDistrictsService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubDistrictsService) Get(ctx context.Context, id uuid.UUID) (*models.District, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "district not found")
}

func (s *stubDistrictsService) List(ctx context.Context, activeOnly bool) ([]models.District, error) {
	return nil, nil
}

func (s *stubDistrictsService) TriggerSync(ctx context.Context) (string, error) {
	return s.syncFn(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestOrdersListRequiresDate(t *testing.T) {
	handler := OrdersList(&stubOrdersService{
		listFn: func(ctx context.Context, date time.Time, filters orders.ListFilters) ([]models.Order, error) {
			t.Fatal("service should not be called without a date")
			return nil, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersListPassesFilters(t *testing.T) {
	var gotFilters orders.ListFilters
	handler := OrdersList(&stubOrdersService{
		listFn: func(ctx context.Context, date time.Time, filters orders.ListFilters) ([]models.Order, error) {
			gotFilters = filters
			return []models.Order{}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?date=2026-08-31&is_paid=true&region=Ленинский", nil)
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotFilters.IsPaid)
	assert.True(t, *gotFilters.IsPaid)
	assert.Nil(t, gotFilters.Exported)
	assert.Equal(t, "Ленинский", gotFilters.Region)
}

func TestAssignmentUpsertCreated(t *testing.T) {
	orderID := uuid.New()
	handler := AssignmentUpsert(&stubAssignmentService{
		upsertFn: func(ctx context.Context, input assignment.UpsertInput) (*assignment.UpsertResult, error) {
			assert.Equal(t, orderID, input.OrderID)
			assert.Equal(t, "Машина 2", input.VehicleName)
			return &assignment.UpsertResult{
				Assignment: &models.TruckAssignment{
					ID:          uuid.New(),
					OrderID:     input.OrderID,
					VehicleName: input.VehicleName,
					Status:      enums.AssignmentStatusActive,
				},
				Created: true,
			}, nil
		},
	}, nil)

	payload, err := json.Marshal(map[string]any{
		"order_id":      orderID,
		"delivery_date": "2026-08-31",
		"vehicle_name":  "Машина 2",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPut, "/api/v1/assignments", bytes.NewReader(payload)))

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["created"])
	assert.Equal(t, false, data["skipped"])
}

func TestAssignmentUpsertSkipped(t *testing.T) {
	handler := AssignmentUpsert(&stubAssignmentService{
		upsertFn: func(ctx context.Context, input assignment.UpsertInput) (*assignment.UpsertResult, error) {
			return &assignment.UpsertResult{
				Assignment: &models.TruckAssignment{
					ID:      uuid.New(),
					OrderID: input.OrderID,
					Status:  enums.AssignmentStatusAccepted,
				},
				Skipped:    true,
				SkipReason: "assignment already in progress",
			}, nil
		},
	}, nil)

	payload, err := json.Marshal(map[string]any{
		"order_id":      uuid.New(),
		"delivery_date": "2026-08-31",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPut, "/api/v1/assignments", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["skipped"])
	assert.Equal(t, "assignment already in progress", data["skip_reason"])
}

func TestAssignmentUpsertRejectsBadDate(t *testing.T) {
	handler := AssignmentUpsert(&stubAssignmentService{
		upsertFn: func(ctx context.Context, input assignment.UpsertInput) (*assignment.UpsertResult, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	payload, err := json.Marshal(map[string]any{
		"order_id":      uuid.New(),
		"delivery_date": "31.08.2026",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPut, "/api/v1/assignments", bytes.NewReader(payload)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignmentsAutoReturnsCounts(t *testing.T) {
	handler := AssignmentsAuto(&stubAssignmentService{
		autoFn: func(ctx context.Context, date time.Time) (*assignment.AutoAssignResult, error) {
			assert.Equal(t, "2026-08-31", date.Format("2006-01-02"))
			return &assignment.AutoAssignResult{Assigned: 5, Skipped: 1, NoRegion: 2, Processed: 8}, nil
		},
	}, nil)

	payload := []byte(`{"date":"2026-08-31"}`)
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/assignments/auto", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(5), data["assigned"])
	assert.Equal(t, float64(2), data["no_region"])
	assert.Equal(t, float64(8), data["processed"])
}

func TestDriverLoginReturnsToken(t *testing.T) {
	handler := DriverLogin(&stubDriversService{
		loginFn: func(ctx context.Context, input drivers.LoginInput) (*drivers.LoginResult, error) {
			assert.Equal(t, "+79061234455", input.Phone)
			assert.Equal(t, "1234", input.PIN)
			return &drivers.LoginResult{
				Token:  "signed-token",
				Driver: &models.Driver{ID: uuid.New(), Name: "Сергей", Phone: input.Phone},
			}, nil
		},
	}, nil)

	payload := []byte(`{"phone":"+79061234455","pin":"1234"}`)
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/driver/login", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "signed-token", data["token"])
}

func TestDriverLoginRejectsShortPIN(t *testing.T) {
	handler := DriverLogin(&stubDriversService{
		loginFn: func(ctx context.Context, input drivers.LoginInput) (*drivers.LoginResult, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	payload := []byte(`{"phone":"+79061234455","pin":"12"}`)
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/driver/login", bytes.NewReader(payload)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDriverTasksUsesContextIdentity(t *testing.T) {
	driverID := uuid.New()
	fixedNow := func() time.Time {
		return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	}

	var gotDriver uuid.UUID
	var gotDate time.Time
	handler := DriverTasks(&stubAssignmentService{
		tasksFn: func(ctx context.Context, id uuid.UUID, date time.Time) ([]models.TruckAssignment, error) {
			gotDriver = id
			gotDate = date
			return []models.TruckAssignment{}, nil
		},
	}, fixedNow, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/driver/tasks", nil)
	req = req.WithContext(middleware.WithDriver(req.Context(), driverID, "Сергей"))

	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, driverID, gotDriver)
	assert.Equal(t, "2026-08-31", gotDate.Format("2006-01-02"))
}

func TestDriverStatusRejectsUnknownValue(t *testing.T) {
	handler := DriverStatus(&stubDriversService{
		statusFn: func(ctx context.Context, id uuid.UUID, status enums.DriverStatus) (*models.Driver, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	payload := []byte(`{"status":"sleeping"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/driver/status", bytes.NewReader(payload))
	req = req.WithContext(middleware.WithDriver(req.Context(), uuid.New(), "Сергей"))

	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistrictsSyncRelaysAck(t *testing.T) {
	handler := DistrictsSync(&stubDistrictsService{
		syncFn: func(ctx context.Context) (string, error) {
			return "Workflow was started", nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/districts/sync", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Workflow was started", data["message"])
}

func TestDistrictsSyncNotConfigured(t *testing.T) {
	handler := DistrictsSync(&stubDistrictsService{
		syncFn: func(ctx context.Context) (string, error) {
			return "", pkgerrors.New(pkgerrors.CodeDependency, "district sync webhook not configured")
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/districts/sync", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCRMOrdersSyncCountsCreatedAndUpdated(t *testing.T) {
	calls := 0
	handler := CRMOrdersSync(&stubOrdersService{
		syncFn: func(ctx context.Context, input orders.SyncInput) (*models.Order, bool, error) {
			calls++
			return &models.Order{ID: uuid.New(), CRMLeadID: input.CRMLeadID}, calls == 1, nil
		},
	}, nil)

	payload := []byte(`{"orders":[
		{"crm_lead_id":101,"delivery_date":"2026-08-31","region":"Центральный"},
		{"crm_lead_id":102,"delivery_date":"2026-08-31","region":"Заводской"}
	]}`)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/crm/orders/sync", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["created"])
	assert.Equal(t, float64(1), data["updated"])
}

func TestAssignmentCancelParsesID(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/assignments/{id}", AssignmentCancel(&stubAssignmentService{}, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/assignments/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
