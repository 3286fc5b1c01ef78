package requests

import (
	"context"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

// Repository exposes mechanic car request persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a request repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new request row.
func (r *Repository) Create(ctx context.Context, request *models.MechanicCarRequest) (*models.MechanicCarRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// FindByID returns the request with the given id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.MechanicCarRequest, error) {
	var row models.MechanicCarRequest
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// HasOpenRequest reports whether the car has a request that is not delivered.
func (r *Repository) HasOpenRequest(ctx context.Context, carID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MechanicCarRequest{}).
		Where("car_id = ? AND status <> ?", carID, enums.RequestStatusDelivered).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByCarOwner returns requests whose car belongs to the owner, newest first.
func (r *Repository) ListByCarOwner(ctx context.Context, ownerID int64, params pagination.Params) ([]models.MechanicCarRequest, error) {
	var rows []models.MechanicCarRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN cars ON cars.id = mechanic_car_requests.car_id").
		Where("cars.user_id = ?", ownerID).
		Order("mechanic_car_requests.created_at DESC").
		Order("mechanic_car_requests.id DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByMechanicOwner returns requests whose mechanic belongs to the owner, newest first.
func (r *Repository) ListByMechanicOwner(ctx context.Context, ownerID int64, params pagination.Params) ([]models.MechanicCarRequest, error) {
	var rows []models.MechanicCarRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN mechanics ON mechanics.id = mechanic_car_requests.mechanic_id").
		Where("mechanics.user_id = ?", ownerID).
		Order("mechanic_car_requests.created_at DESC").
		Order("mechanic_car_requests.id DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the mutable fields of the request.
func (r *Repository) Update(ctx context.Context, request *models.MechanicCarRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// Delete removes the request row; comments cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.MechanicCarRequest{}, "id = ?", id).Error
}
