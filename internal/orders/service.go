package orders

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
	"github.com/istochnik/delivery-backend/pkg/pagination"
)

const cacheKeyPrefix = "orders"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type listCache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	InvalidateSubstring(substr string) int
}

// Service owns order reads and the narrow mutations the back office makes:
// payment toggles, comments, slot changes, export marking, and the CRM sync
// upsert.
type Service interface {
	List(ctx context.Context, deliveryDate time.Time, filters ListFilters) ([]models.Order, error)
	History(ctx context.Context, cursorToken string, limit int) ([]models.Order, string, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Patch(ctx context.Context, id uuid.UUID, patch PatchInput) (*models.Order, error)
	MarkExported(ctx context.Context, ids []uuid.UUID) (int64, error)
	SyncFromCRM(ctx context.Context, input SyncInput) (*models.Order, bool, error)
}

type service struct {
	repo  Repository
	tx    txRunner
	cache listCache
}

// NewService builds the orders service.
func NewService(repo Repository, tx txRunner, cache listCache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, cache: cache}, nil
}

// List returns the date's orders, serving repeat reads from the TTL cache.
// The dispatcher board polls this endpoint every few seconds.
func (s *service) List(ctx context.Context, deliveryDate time.Time, filters ListFilters) ([]models.Order, error) {
	if deliveryDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date required")
	}

	key := listKey(deliveryDate, filters)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if rows, ok := cached.([]models.Order); ok {
				return rows, nil
			}
		}
	}

	rows, err := s.repo.ListByDate(ctx, deliveryDate, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	if s.cache != nil {
		s.cache.Set(key, rows, 0)
	}
	return rows, nil
}

// History pages through all orders newest-first. The returned token points
// at the next page and is empty on the last one. History bypasses the list
// cache: it is an archive view, not a polling target.
func (s *service) History(ctx context.Context, cursorToken string, limit int) ([]models.Order, string, error) {
	cursor, err := pagination.Decode(cursorToken)
	if err != nil {
		return nil, "", err
	}
	limit = pagination.ClampLimit(limit)

	rows, err := s.repo.ListPage(ctx, cursor, limit+1)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order history")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return rows, next, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// Patch applies a partial update. TimeSlot values are validated against the
// known slot labels.
func (s *service) Patch(ctx context.Context, id uuid.UUID, patch PatchInput) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if patch.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "patch contains no fields")
	}
	if patch.TimeSlot != nil && *patch.TimeSlot != "" {
		if _, err := enums.ParseTimeSlot(*patch.TimeSlot); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid time slot")
		}
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if patch.IsPaid != nil {
			order.IsPaid = *patch.IsPaid
		}
		if patch.PaymentMethod != nil {
			order.PaymentMethod = *patch.PaymentMethod
		}
		if patch.Comment != nil {
			order.Comment = *patch.Comment
		}
		if patch.TimeSlot != nil {
			order.TimeSlot = *patch.TimeSlot
		}

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate()
	return updated, nil
}

// MarkExported flips the exported flag on the given orders and reports how
// many rows actually changed. Already-exported orders are not counted.
func (s *service) MarkExported(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order ids required")
	}
	marked, err := s.repo.MarkExported(ctx, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark orders exported")
	}
	s.invalidate()
	return marked, nil
}

// SyncFromCRM upserts an order by its CRM lead id. The second return is true
// when a new row was created.
func (s *service) SyncFromCRM(ctx context.Context, input SyncInput) (*models.Order, bool, error) {
	if input.CRMLeadID <= 0 {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "crm lead id required")
	}
	if input.DeliveryDate.IsZero() {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "delivery date required")
	}

	var (
		order   *models.Order
		created bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByCRMLeadID(ctx, input.CRMLeadID)
		switch {
		case err == nil:
			existing.DeliveryDate = input.DeliveryDate
			existing.TimeSlot = input.TimeSlot
			existing.Items = input.Items
			existing.Region = input.Region
			existing.IsPaid = input.IsPaid
			existing.PaymentMethod = input.PaymentMethod
			existing.Total = input.Total
			existing.Comment = input.Comment
			if err := repo.Save(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update synced order")
			}
			order = existing
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			fresh := &models.Order{
				CRMLeadID:     input.CRMLeadID,
				DeliveryDate:  input.DeliveryDate,
				TimeSlot:      input.TimeSlot,
				Items:         input.Items,
				Region:        input.Region,
				IsPaid:        input.IsPaid,
				PaymentMethod: input.PaymentMethod,
				Total:         input.Total,
				Comment:       input.Comment,
			}
			if _, err := repo.Create(ctx, fresh); err != nil {
				if db.IsUniqueViolation(err) {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "lead synced concurrently")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create synced order")
			}
			order = fresh
			created = true
			return nil

		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by lead")
		}
	})
	if err != nil {
		return nil, false, err
	}

	s.invalidate()
	return order, created, nil
}

func (s *service) invalidate() {
	if s.cache != nil {
		s.cache.InvalidateSubstring(cacheKeyPrefix)
	}
}

func listKey(deliveryDate time.Time, filters ListFilters) string {
	key := fmt.Sprintf("%s:%s", cacheKeyPrefix, deliveryDate.Format("2006-01-02"))
	if filters.IsPaid != nil {
		key += fmt.Sprintf(":paid=%t", *filters.IsPaid)
	}
	if filters.Exported != nil {
		key += fmt.Sprintf(":exported=%t", *filters.Exported)
	}
	if filters.TimeSlot != "" {
		key += ":slot=" + filters.TimeSlot
	}
	if filters.Region != "" {
		key += ":region=" + filters.Region
	}
	return key
}
