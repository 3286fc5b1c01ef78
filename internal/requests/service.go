package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/pkg/db"
	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

const openRequestConstraint = "mcr_one_open_request_per_car"

// Actor is the authenticated principal performing a request operation.
type Actor struct {
	UserID int64
	Role   enums.UserRole
}

type carsRepository interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Car, error)
	FindByID(ctx context.Context, id int64) (*models.Car, error)
}

type mechanicsRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Mechanic, error)
}

type requestsRepository interface {
	Create(ctx context.Context, request *models.MechanicCarRequest) (*models.MechanicCarRequest, error)
	FindByID(ctx context.Context, id int64) (*models.MechanicCarRequest, error)
	HasOpenRequest(ctx context.Context, carID int64) (bool, error)
	ListByCarOwner(ctx context.Context, ownerID int64, params pagination.Params) ([]models.MechanicCarRequest, error)
	ListByMechanicOwner(ctx context.Context, ownerID int64, params pagination.Params) ([]models.MechanicCarRequest, error)
	Update(ctx context.Context, request *models.MechanicCarRequest) error
	Delete(ctx context.Context, id int64) error
	WithTx(tx *gorm.DB) *Repository
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// statusNotifier tells the car owner about a status change. Delivery is fire
// and forget; the transition never fails on a lost text.
type statusNotifier interface {
	NotifyStatusChange(ctx context.Context, carID int64, status enums.RequestStatus)
}

// Service orchestrates the mechanic car request lifecycle.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*Request, error)
	UpdateByUser(ctx context.Context, actor Actor, requestID int64, patch OwnerPatch) (*Request, error)
	UpdateByMechanic(ctx context.Context, actor Actor, requestID int64, patch MechanicPatch) (*Request, error)
	List(ctx context.Context, actor Actor, params ListParams) ([]Request, error)
	Delete(ctx context.Context, actor Actor, requestID int64) error
}

type service struct {
	repo      requestsRepository
	cars      carsRepository
	mechanics mechanicsRepository
	notifier  statusNotifier
	tx        txRunner
}

// NewService builds a request lifecycle service backed by the provided
// repositories. The notifier may be nil when SMS delivery is not wired.
func NewService(repo requestsRepository, cars carsRepository, mechanics mechanicsRepository, notifier statusNotifier, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("request repository required")
	}
	if cars == nil {
		return nil, fmt.Errorf("car repository required")
	}
	if mechanics == nil {
		return nil, fmt.Errorf("mechanic repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		cars:      cars,
		mechanics: mechanics,
		notifier:  notifier,
		tx:        tx,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*Request, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if !actor.Role.OneOf(enums.UserRoleUser) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only car owners can open requests")
	}
	if input.CarID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car_id is required")
	}
	if input.MechanicID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mechanic_id is required")
	}
	if !input.Issue.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid issue category")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}

	car, err := s.cars.FindByIDAndOwner(ctx, input.CarID, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "car not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup car")
	}

	mechanic, err := s.mechanics.FindByID(ctx, input.MechanicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "mechanic not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup mechanic")
	}
	if mechanic.UserID == actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cannot open a request against your own workshop")
	}

	row := &models.MechanicCarRequest{
		Status:      enums.RequestStatusPending,
		Issue:       input.Issue,
		Description: strings.TrimSpace(input.Description),
		CarID:       car.ID,
		MechanicID:  mechanic.ID,
	}

	// The open-request check and the insert run in one transaction. The
	// partial unique index backs the check, so a concurrent create loses
	// at commit instead of slipping through.
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		open, err := txRepo.HasOpenRequest(ctx, car.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open requests")
		}
		if open {
			return pkgerrors.New(pkgerrors.CodeConflict, "car already has an open request")
		}

		if _, err := txRepo.Create(ctx, row); err != nil {
			if db.IsUniqueViolation(err, openRequestConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "car already has an open request")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return toRequest(row), nil
}

func (s *service) UpdateByUser(ctx context.Context, actor Actor, requestID int64, patch OwnerPatch) (*Request, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if requestID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	if patch.Issue == nil && patch.Description == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	if patch.Issue != nil && !patch.Issue.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid issue category")
	}

	row, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// Owner mismatch reads as not-found so request existence does not leak.
	if _, err := s.cars.FindByIDAndOwner(ctx, row.CarID, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup car")
	}

	if row.Status != enums.RequestStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "request can only be edited while pending")
	}

	if patch.Issue != nil {
		row.Issue = *patch.Issue
	}
	if patch.Description != nil {
		trimmed := strings.TrimSpace(*patch.Description)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description cannot be empty")
		}
		row.Description = trimmed
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update request")
	}
	return toRequest(row), nil
}

func (s *service) UpdateByMechanic(ctx context.Context, actor Actor, requestID int64, patch MechanicPatch) (*Request, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if requestID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	if !patch.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	row, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	mechanic, err := s.mechanics.FindByID(ctx, row.MechanicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "mechanic not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup mechanic")
	}
	if mechanic.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request is assigned to another workshop")
	}

	if err := ValidateTransition(row.Status, patch.Status); err != nil {
		return nil, err
	}

	row.Status = patch.Status
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update request status")
	}

	if s.notifier != nil {
		s.notifier.NotifyStatusChange(ctx, row.CarID, row.Status)
	}
	return toRequest(row), nil
}

func (s *service) List(ctx context.Context, actor Actor, params ListParams) ([]Request, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}

	paging := params.Pagination.Normalize()

	var (
		rows []models.MechanicCarRequest
		err  error
	)
	switch {
	case actor.Role.OneOf(enums.UserRoleUser):
		rows, err = s.repo.ListByCarOwner(ctx, actor.UserID, paging)
	case actor.Role.OneOf(enums.UserRoleMechanic):
		rows, err = s.repo.ListByMechanicOwner(ctx, actor.UserID, paging)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list requests")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}

	return toRequests(rows), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, requestID int64) error {
	if actor.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if requestID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}

	row, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}

	switch {
	case actor.Role.OneOf(enums.UserRoleUser):
		if _, err := s.cars.FindByIDAndOwner(ctx, row.CarID, actor.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup car")
		}
	case actor.Role.OneOf(enums.UserRoleMechanic):
		mechanic, err := s.mechanics.FindByID(ctx, row.MechanicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "mechanic not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup mechanic")
		}
		// Deletion masks ownership mismatches on both sides.
		if mechanic.UserID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot delete requests")
	}

	if err := s.repo.Delete(ctx, row.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete request")
	}
	return nil
}

func (s *service) loadRequest(ctx context.Context, id int64) (*models.MechanicCarRequest, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup request")
	}
	return row, nil
}
