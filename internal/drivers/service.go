package drivers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/istochnik/delivery-backend/pkg/auth"
	"github.com/istochnik/delivery-backend/pkg/config"
	"github.com/istochnik/delivery-backend/pkg/db"
	"github.com/istochnik/delivery-backend/pkg/db/models"
	"github.com/istochnik/delivery-backend/pkg/enums"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
	"github.com/istochnik/delivery-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns driver management and the mobile-app login.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Create(ctx context.Context, input CreateInput) (*models.Driver, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Driver, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	List(ctx context.Context) ([]models.Driver, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DriverStatus) (*models.Driver, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	jwtCfg config.JWTConfig
	pinCfg config.PINConfig
	now    func() time.Time
}

// NewService builds the drivers service.
func NewService(repo Repository, tx txRunner, jwtCfg config.JWTConfig, pinCfg config.PINConfig, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("drivers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, tx: tx, jwtCfg: jwtCfg, pinCfg: pinCfg, now: now}, nil
}

// Login checks phone + PIN and mints a driver JWT. Unknown phones and wrong
// PINs return the same error so the endpoint leaks nothing about which part
// failed.
func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	phone := strings.TrimSpace(input.Phone)
	if phone == "" || input.PIN == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone and pin required")
	}

	driver, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}

	ok, err := security.VerifyPIN(input.PIN, driver.PINHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify pin")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := auth.MintDriverToken(s.jwtCfg, s.now(), auth.DriverTokenPayload{
		DriverID: driver.ID,
		Name:     driver.Name,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint driver token")
	}

	return &LoginResult{Token: token, Driver: driver}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Driver, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and phone required")
	}
	if input.PIN == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pin required")
	}
	login := strings.TrimSpace(input.Login)
	if login == "" {
		login = phone
	}

	hash, err := security.HashPIN(input.PIN, s.pinCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash pin")
	}

	var created *models.Driver
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		driver := &models.Driver{
			Name:    name,
			Phone:   phone,
			Login:   login,
			PINHash: hash,
			Status:  enums.DriverStatusOffline,
		}
		if _, err := repo.Create(ctx, driver); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "phone or login already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create driver")
		}
		if err := s.replaceLinks(ctx, repo, driver.ID, input.VehicleIDs, input.DistrictIDs); err != nil {
			return err
		}
		created = driver
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Driver, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}

	var updated *models.Driver
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		driver, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
		}

		if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
			driver.Name = strings.TrimSpace(*input.Name)
		}
		if input.Phone != nil && strings.TrimSpace(*input.Phone) != "" {
			driver.Phone = strings.TrimSpace(*input.Phone)
		}
		if input.PIN != nil && *input.PIN != "" {
			hash, err := security.HashPIN(*input.PIN, s.pinCfg)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash pin")
			}
			driver.PINHash = hash
		}

		if err := repo.Save(ctx, driver); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "phone already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save driver")
		}
		if err := s.replaceLinks(ctx, repo, driver.ID, input.VehicleIDs, input.DistrictIDs); err != nil {
			return err
		}
		updated = driver
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a driver. Drivers with open assignments cannot be deleted;
// the dispatcher reassigns or cancels those first.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
		}

		open, err := repo.CountLiveAssignments(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count driver assignments")
		}
		if open > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "driver has open assignments").
				WithDetails(map[string]int64{"open_assignments": open})
		}

		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete driver")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}
	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	return driver, nil
}

func (s *service) List(ctx context.Context) ([]models.Driver, error) {
	drivers, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drivers")
	}
	return drivers, nil
}

// UpdateStatus records the status the driver reported from the mobile app.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DriverStatus) (*models.Driver, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown driver status %q", status))
	}

	var updated *models.Driver
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		driver, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
		}
		driver.Status = status
		if err := repo.Save(ctx, driver); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save driver")
		}
		updated = driver
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) replaceLinks(ctx context.Context, repo Repository, driverID uuid.UUID, vehicleIDs, districtIDs []uuid.UUID) error {
	if vehicleIDs != nil {
		links := make([]models.DriverVehicle, 0, len(vehicleIDs))
		for i, vehicleID := range vehicleIDs {
			links = append(links, models.DriverVehicle{
				DriverID:   driverID,
				VehicleID:  vehicleID,
				IsPrimary:  i == 0,
				AssignedAt: s.now(),
			})
		}
		if err := repo.ReplaceVehicles(ctx, driverID, links); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace driver vehicles")
		}
	}
	if districtIDs != nil {
		links := make([]models.DriverDistrict, 0, len(districtIDs))
		for i, districtID := range districtIDs {
			links = append(links, models.DriverDistrict{
				DriverID:   driverID,
				DistrictID: districtID,
				IsPrimary:  i == 0,
				AssignedAt: s.now(),
			})
		}
		if err := repo.ReplaceDistricts(ctx, driverID, links); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace driver districts")
		}
	}
	return nil
}
