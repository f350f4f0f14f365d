package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/enums"
)

func setupAssignmentTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  crm_lead_id INTEGER NOT NULL UNIQUE,
  delivery_date DATETIME NOT NULL,
  time_slot TEXT,
  items TEXT,
  region TEXT,
  is_paid INTEGER NOT NULL DEFAULT 0,
  payment_method TEXT,
  total TEXT NOT NULL DEFAULT '0',
  comment TEXT,
  exported INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	assignments := `
CREATE TABLE IF NOT EXISTS truck_assignments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  delivery_date DATETIME NOT NULL,
  vehicle_name TEXT,
  driver_id TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  notes TEXT,
  assigned_at DATETIME,
  accepted_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(assignments).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, leadID int64, date time.Time, region string) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:           uuid.New(),
		CRMLeadID:    leadID,
		DeliveryDate: date,
		Region:       region,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func seedAssignment(t *testing.T, db *gorm.DB, orderID uuid.UUID, date time.Time, status enums.AssignmentStatus) *models.TruckAssignment {
	t.Helper()
	a := &models.TruckAssignment{
		ID:           uuid.New(),
		OrderID:      orderID,
		DeliveryDate: date,
		Status:       status,
		AssignedAt:   date,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func TestFindLiveIgnoresCancelled(t *testing.T) {
	db := setupAssignmentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	order := seedOrder(t, db, 1001, date, "Центральный")
	seedAssignment(t, db, order.ID, date, enums.AssignmentStatusCancelled)

	_, err := repo.FindLive(ctx, order.ID, date)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	live := seedAssignment(t, db, order.ID, date, enums.AssignmentStatusAccepted)
	found, err := repo.FindLive(ctx, order.ID, date)
	require.NoError(t, err)
	assert.Equal(t, live.ID, found.ID)
}

func TestListUnassignedOrdersExcludesLiveSlots(t *testing.T) {
	db := setupAssignmentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	assigned := seedOrder(t, db, 2001, date, "Ленинский")
	unassigned := seedOrder(t, db, 2002, date, "Заводской")
	freed := seedOrder(t, db, 2003, date, "Северный")
	otherDay := seedOrder(t, db, 2004, date.AddDate(0, 0, 1), "Центральный")

	seedAssignment(t, db, assigned.ID, date, enums.AssignmentStatusActive)
	seedAssignment(t, db, freed.ID, date, enums.AssignmentStatusCancelled)

	orders, err := repo.ListUnassignedOrders(ctx, date)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	assert.Contains(t, ids, unassigned.ID)
	assert.Contains(t, ids, freed.ID)
	assert.NotContains(t, ids, assigned.ID)
	assert.NotContains(t, ids, otherDay.ID)
}

func TestListForDriverReturnsOpenTasksOnly(t *testing.T) {
	db := setupAssignmentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	driverID := uuid.New()

	order := seedOrder(t, db, 3001, date, "Центральный")
	active := seedAssignment(t, db, order.ID, date, enums.AssignmentStatusActive)
	active.DriverID = &driverID
	require.NoError(t, db.Save(active).Error)

	delivered := seedAssignment(t, db, seedOrder(t, db, 3002, date, "Южный").ID, date, enums.AssignmentStatusDelivered)
	delivered.DriverID = &driverID
	require.NoError(t, db.Save(delivered).Error)

	tasks, err := repo.ListForDriver(ctx, driverID, date)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, active.ID, tasks[0].ID)
}

func TestDeleteStaleRemovesOldCancelledOnly(t *testing.T) {
	db := setupAssignmentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	oldCancelled := seedAssignment(t, db, uuid.New(), date, enums.AssignmentStatusCancelled)
	require.NoError(t, db.Model(oldCancelled).Update("updated_at", date).Error)

	liveOld := seedAssignment(t, db, uuid.New(), date, enums.AssignmentStatusActive)
	require.NoError(t, db.Model(liveOld).Update("updated_at", date).Error)

	freshCancelled := seedAssignment(t, db, uuid.New(), date, enums.AssignmentStatusCancelled)
	require.NoError(t, db.Model(freshCancelled).Update("updated_at", time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)).Error)

	removed, err := repo.DeleteStale(ctx, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var remaining int64
	require.NoError(t, db.Model(&models.TruckAssignment{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)
}
