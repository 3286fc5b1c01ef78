package mechanics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/internal/permissions"
	"github.com/mechanix-app/mechanix-backend/internal/users"
	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
)

// Actor is the authenticated principal performing a mechanic operation.
type Actor struct {
	UserID int64
	Role   enums.UserRole
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes workshop profile admission and maintenance. Admission
// redeems a single-use permission key and promotes the account to the
// mechanic role inside one transaction.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*Mechanic, error)
	Get(ctx context.Context, mechanicID int64) (*Mechanic, error)
	List(ctx context.Context, params ListParams) ([]Mechanic, error)
	Update(ctx context.Context, actor Actor, input UpdateInput) (*Mechanic, error)
	Delete(ctx context.Context, actor Actor, mechanicID int64) error
}

type service struct {
	repo        *Repository
	permissions *permissions.Repository
	users       *users.Repository
	tx          txRunner
	now         func() time.Time
}

// NewService builds a mechanic service. The permission and user repositories
// are concrete because admission spans all three tables in one transaction.
func NewService(repo *Repository, perms *permissions.Repository, userRepo *users.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("mechanic repository required")
	}
	if perms == nil {
		return nil, fmt.Errorf("permission repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		permissions: perms,
		users:       userRepo,
		tx:          tx,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*Mechanic, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if !actor.Role.OneOf(enums.UserRoleUser) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account cannot open a workshop profile")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.PermissionKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "permission_key is required")
	}

	if _, err := s.repo.FindByUserID(ctx, actor.UserID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "workshop profile already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup mechanic")
	}

	perm, err := s.permissions.FindByKey(ctx, strings.TrimSpace(input.PermissionKey))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidKeyError()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup permission key")
	}

	// One message for every rejection so callers cannot probe key state.
	now := s.now()
	if perm.UserID != actor.UserID || perm.IsUsed {
		return nil, invalidKeyError()
	}
	if perm.ExpiresAt != nil && !perm.ExpiresAt.After(now) {
		return nil, invalidKeyError()
	}

	row := &models.Mechanic{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Location:    input.Location,
		UserID:      actor.UserID,
	}

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.permissions.WithTx(tx).MarkUsed(ctx, perm.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem permission key")
		}
		if _, err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create mechanic")
		}
		if err := s.users.WithTx(tx).UpdateRole(ctx, actor.UserID, enums.UserRoleMechanic); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote user role")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return toMechanic(row), nil
}

func (s *service) Get(ctx context.Context, mechanicID int64) (*Mechanic, error) {
	if mechanicID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mechanic id is required")
	}

	row, err := s.repo.FindByID(ctx, mechanicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "mechanic not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup mechanic")
	}
	return toMechanic(row), nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]Mechanic, error) {
	rows, err := s.repo.List(ctx, params.Pagination.Normalize())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list mechanics")
	}
	return toMechanics(rows), nil
}

func (s *service) Update(ctx context.Context, actor Actor, input UpdateInput) (*Mechanic, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}

	row, err := s.repo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "mechanic not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup mechanic")
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		row.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		row.Description = input.Description
	}
	if input.Location != nil {
		row.Location = input.Location
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update mechanic")
	}
	return toMechanic(row), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, mechanicID int64) error {
	if actor.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if mechanicID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "mechanic id is required")
	}

	row, err := s.repo.FindByID(ctx, mechanicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "mechanic not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup mechanic")
	}

	if row.UserID != actor.UserID && !actor.Role.OneOf(enums.UserRoleAdmin) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "mechanic not found")
	}

	// Closing the workshop demotes the owner back to a plain account.
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, row.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete mechanic")
		}
		if err := s.users.WithTx(tx).UpdateRole(ctx, row.UserID, enums.UserRoleUser); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "demote user role")
		}
		return nil
	})
}

func invalidKeyError() error {
	return pkgerrors.New(pkgerrors.CodeForbidden, "invalid permission key")
}
