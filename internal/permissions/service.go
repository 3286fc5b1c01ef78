package permissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
	"github.com/mechanix-app/mechanix-backend/pkg/security"
)

// Actor is the authenticated principal performing a permission operation.
type Actor struct {
	UserID int64
	Role   enums.UserRole
}

type permissionsRepository interface {
	Create(ctx context.Context, permission *models.MechanicPermission) (*models.MechanicPermission, error)
	FindByKey(ctx context.Context, key string) (*models.MechanicPermission, error)
	ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]models.MechanicPermission, error)
}

type usersRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Service exposes admission key issuance for admins.
type Service interface {
	Issue(ctx context.Context, actor Actor, input IssueInput) (*Permission, error)
	GetByKey(ctx context.Context, actor Actor, key string) (*Permission, error)
	ListByUser(ctx context.Context, actor Actor, params ListParams) ([]Permission, error)
}

type service struct {
	repo  permissionsRepository
	users usersRepository
	now   func() time.Time
}

// NewService builds a permission service backed by the provided repositories.
func NewService(repo permissionsRepository, users usersRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("permission repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{
		repo:  repo,
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Issue(ctx context.Context, actor Actor, input IssueInput) (*Permission, error) {
	if !actor.Role.OneOf(enums.UserRoleAdmin) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can issue permission keys")
	}
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id is required")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expires_at must be in the future")
	}

	target, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if target.Role == enums.UserRoleMechanic {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has mechanic role")
	}

	key, err := security.GeneratePermissionKey()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate permission key")
	}

	row := &models.MechanicPermission{
		Key:       key,
		UserID:    target.ID,
		ExpiresAt: input.ExpiresAt,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create permission key")
	}

	// The raw key is only shown once, at issuance.
	return toPermission(created, true), nil
}

func (s *service) GetByKey(ctx context.Context, actor Actor, key string) (*Permission, error) {
	if !actor.Role.OneOf(enums.UserRoleAdmin) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can inspect permission keys")
	}
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "key is required")
	}

	row, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "permission key not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup permission key")
	}
	return toPermission(row, true), nil
}

func (s *service) ListByUser(ctx context.Context, actor Actor, params ListParams) ([]Permission, error) {
	if !actor.Role.OneOf(enums.UserRoleAdmin) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can list permission keys")
	}
	if params.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id is required")
	}

	rows, err := s.repo.ListByUser(ctx, params.UserID, params.Pagination.Normalize())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list permission keys")
	}
	return toPermissions(rows), nil
}
