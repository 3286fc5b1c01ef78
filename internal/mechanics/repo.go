package mechanics

import (
	"context"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

// Repository exposes mechanic persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a mechanic repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new mechanic row.
func (r *Repository) Create(ctx context.Context, mechanic *models.Mechanic) (*models.Mechanic, error) {
	if err := r.db.WithContext(ctx).Create(mechanic).Error; err != nil {
		return nil, err
	}
	return mechanic, nil
}

// FindByID returns the mechanic with the given id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Mechanic, error) {
	var row models.Mechanic
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByUserID returns the mechanic profile owned by the user.
func (r *Repository) FindByUserID(ctx context.Context, userID int64) (*models.Mechanic, error) {
	var row models.Mechanic
	if err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns mechanics, newest first.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Mechanic, error) {
	var rows []models.Mechanic
	err := r.db.WithContext(ctx).
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

// Update persists the mutable fields of the mechanic.
func (r *Repository) Update(ctx context.Context, mechanic *models.Mechanic) error {
	return r.db.WithContext(ctx).Save(mechanic).Error
}

// Delete removes the mechanic row; requests cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Mechanic{}, "id = ?", id).Error
}
