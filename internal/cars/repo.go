package cars

import (
	"context"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

// Repository exposes car persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a car repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new car row.
func (r *Repository) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	if err := r.db.WithContext(ctx).Create(car).Error; err != nil {
		return nil, err
	}
	return car, nil
}

// FindByID returns the car with the given id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Car, error) {
	var row models.Car
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByIDAndOwner returns the car only when it belongs to the owner.
func (r *Repository) FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Car, error) {
	var row models.Car
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByIDAndOwnerWithRequests loads the owned car together with its
// undelivered requests.
func (r *Repository) FindByIDAndOwnerWithRequests(ctx context.Context, id, ownerID int64) (*models.Car, error) {
	var row models.Car
	err := r.db.WithContext(ctx).
		Preload("MechanicRequests", "status <> ?", enums.RequestStatusDelivered).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByOwner returns the owner's cars, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64, params pagination.Params) ([]models.Car, error) {
	var rows []models.Car
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the mutable fields of the car.
func (r *Repository) Update(ctx context.Context, car *models.Car) error {
	return r.db.WithContext(ctx).Save(car).Error
}

// Delete removes the car row; requests cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Car{}, "id = ?", id).Error
}
