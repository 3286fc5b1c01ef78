package cars

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"

	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
)

const maxLicensePlateLen = 8

type carsRepository interface {
	Create(ctx context.Context, car *models.Car) (*models.Car, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Car, error)
	FindByIDAndOwnerWithRequests(ctx context.Context, id, ownerID int64) (*models.Car, error)
	ListByOwner(ctx context.Context, ownerID int64, params pagination.Params) ([]models.Car, error)
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, id int64) error
}

// Service exposes car registration and maintenance for vehicle owners.
type Service interface {
	Create(ctx context.Context, ownerID int64, input CreateInput) (*Car, error)
	Get(ctx context.Context, ownerID, carID int64) (*Car, error)
	List(ctx context.Context, ownerID int64, params ListParams) ([]Car, error)
	Update(ctx context.Context, ownerID, carID int64, input UpdateInput) (*Car, error)
	Delete(ctx context.Context, ownerID, carID int64) error
}

type service struct {
	repo carsRepository
}

// NewService builds a car service backed by the provided repository.
func NewService(repo carsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("car repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, ownerID int64, input CreateInput) (*Car, error) {
	if ownerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if strings.TrimSpace(input.Trim) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trim is required")
	}
	if input.ModelDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model_date is required")
	}
	plate := strings.TrimSpace(input.LicensePlate)
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license_plate is required")
	}
	if len(plate) > maxLicensePlateLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license_plate too long")
	}

	row := &models.Car{
		Title:        strings.TrimSpace(input.Title),
		Category:     strings.TrimSpace(input.Category),
		Color:        input.Color,
		Trim:         strings.TrimSpace(input.Trim),
		ModelDate:    input.ModelDate,
		Description:  input.Description,
		LicensePlate: plate,
		UserID:       ownerID,
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create car")
	}
	return toCar(created), nil
}

func (s *service) Get(ctx context.Context, ownerID, carID int64) (*Car, error) {
	if ownerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if carID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car id is required")
	}

	row, err := s.repo.FindByIDAndOwnerWithRequests(ctx, carID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "car not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup car")
	}
	return toCar(row), nil
}

func (s *service) List(ctx context.Context, ownerID int64, params ListParams) ([]Car, error) {
	if ownerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}

	rows, err := s.repo.ListByOwner(ctx, ownerID, params.Pagination.Normalize())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cars")
	}
	return toCars(rows), nil
}

func (s *service) Update(ctx context.Context, ownerID, carID int64, input UpdateInput) (*Car, error) {
	row, err := s.loadOwned(ctx, ownerID, carID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		row.Title = strings.TrimSpace(*input.Title)
	}
	if input.Category != nil {
		if strings.TrimSpace(*input.Category) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		row.Category = strings.TrimSpace(*input.Category)
	}
	if input.Color != nil {
		row.Color = input.Color
	}
	if input.Trim != nil {
		if strings.TrimSpace(*input.Trim) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "trim cannot be empty")
		}
		row.Trim = strings.TrimSpace(*input.Trim)
	}
	if input.ModelDate != nil {
		if input.ModelDate.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "model_date cannot be empty")
		}
		row.ModelDate = *input.ModelDate
	}
	if input.Description != nil {
		row.Description = input.Description
	}
	if input.LicensePlate != nil {
		plate := strings.TrimSpace(*input.LicensePlate)
		if plate == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "license_plate cannot be empty")
		}
		if len(plate) > maxLicensePlateLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "license_plate too long")
		}
		row.LicensePlate = plate
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update car")
	}
	return toCar(row), nil
}

func (s *service) Delete(ctx context.Context, ownerID, carID int64) error {
	row, err := s.loadOwned(ctx, ownerID, carID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, row.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete car")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, ownerID, carID int64) (*models.Car, error) {
	if ownerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if carID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car id is required")
	}

	row, err := s.repo.FindByIDAndOwner(ctx, carID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "car not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup car")
	}
	return row, nil
}
