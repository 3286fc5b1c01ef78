package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

const (
	minRate = 1
	maxRate = 5
)

// Actor is the authenticated principal performing a comment operation.
type Actor struct {
	UserID int64
	Role   enums.UserRole
}

type commentsRepository interface {
	Create(ctx context.Context, comment *models.MechanicComment) (*models.MechanicComment, error)
	FindByID(ctx context.Context, id int64) (*models.MechanicComment, error)
	ListByRequest(ctx context.Context, requestID int64, params pagination.Params) ([]models.MechanicComment, error)
	ListByMechanic(ctx context.Context, mechanicID int64, params pagination.Params) ([]models.MechanicComment, error)
	AverageRating(ctx context.Context, mechanicID int64) (float64, bool, error)
	Delete(ctx context.Context, id int64) error
}

type requestsRepository interface {
	FindByID(ctx context.Context, id int64) (*models.MechanicCarRequest, error)
}

type carsRepository interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Car, error)
}

// Service exposes feedback on delivered requests and the derived workshop
// rating.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*Comment, error)
	ListByRequest(ctx context.Context, requestID int64, params ListParams) ([]Comment, error)
	ListByMechanic(ctx context.Context, mechanicID int64, params ListParams) ([]Comment, error)
	Rating(ctx context.Context, mechanicID int64) (*MechanicRating, error)
	Delete(ctx context.Context, actor Actor, commentID int64) error
}

type service struct {
	repo     commentsRepository
	requests requestsRepository
	cars     carsRepository
}

// NewService builds a comment service backed by the provided repositories.
func NewService(repo commentsRepository, requests requestsRepository, cars carsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("comment repository required")
	}
	if requests == nil {
		return nil, fmt.Errorf("request repository required")
	}
	if cars == nil {
		return nil, fmt.Errorf("car repository required")
	}
	return &service{repo: repo, requests: requests, cars: cars}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*Comment, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if input.RequestID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request_id is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body is required")
	}
	if input.Rate < minRate || input.Rate > maxRate {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be between 1 and 5")
	}

	request, err := s.requests.FindByID(ctx, input.RequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup request")
	}

	// Only the car owner may comment, and only once the repair cycle ended.
	if _, err := s.cars.FindByIDAndOwner(ctx, request.CarID, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup car")
	}
	if request.Status != enums.RequestStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "feedback is only accepted after delivery")
	}

	if input.ParentID != nil {
		parent, err := s.repo.FindByID(ctx, *input.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parent comment not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup parent comment")
		}
		if parent.RequestID != request.ID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent comment belongs to another request")
		}
	}

	row := &models.MechanicComment{
		Body:      strings.TrimSpace(input.Body),
		Rate:      input.Rate,
		Anonymous: input.Anonymous,
		UserID:    actor.UserID,
		RequestID: request.ID,
		ParentID:  input.ParentID,
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
	}
	return toComment(created), nil
}

func (s *service) ListByRequest(ctx context.Context, requestID int64, params ListParams) ([]Comment, error) {
	if requestID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}

	rows, err := s.repo.ListByRequest(ctx, requestID, params.Pagination.Normalize())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	return toComments(rows), nil
}

func (s *service) ListByMechanic(ctx context.Context, mechanicID int64, params ListParams) ([]Comment, error) {
	if mechanicID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mechanic id is required")
	}

	rows, err := s.repo.ListByMechanic(ctx, mechanicID, params.Pagination.Normalize())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	return toComments(rows), nil
}

func (s *service) Rating(ctx context.Context, mechanicID int64) (*MechanicRating, error) {
	if mechanicID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mechanic id is required")
	}

	avg, ok, err := s.repo.AverageRating(ctx, mechanicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "average rating")
	}

	rating := &MechanicRating{MechanicID: mechanicID, HasRatings: ok}
	if ok {
		rating.AverageRating = decimal.NewFromFloat(avg).Round(2)
	}
	return rating, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, commentID int64) error {
	if actor.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if commentID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment id is required")
	}

	row, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup comment")
	}

	if row.UserID != actor.UserID && !actor.Role.OneOf(enums.UserRoleAdmin) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
	}

	if err := s.repo.Delete(ctx, row.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete comment")
	}
	return nil
}
