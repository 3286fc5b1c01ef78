package permissions

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

// Repository exposes mechanic permission key persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a permission repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new permission key row.
func (r *Repository) Create(ctx context.Context, permission *models.MechanicPermission) (*models.MechanicPermission, error) {
	if err := r.db.WithContext(ctx).Create(permission).Error; err != nil {
		return nil, err
	}
	return permission, nil
}

// FindByKey returns the permission row matching the raw key string.
func (r *Repository) FindByKey(ctx context.Context, key string) (*models.MechanicPermission, error) {
	var row models.MechanicPermission
	if err := r.db.WithContext(ctx).First(&row, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByUser returns the keys issued to the user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]models.MechanicPermission, error) {
	var rows []models.MechanicPermission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
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

// MarkUsed flags the key as redeemed.
func (r *Repository) MarkUsed(ctx context.Context, id int64, usedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.MechanicPermission{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_used": true, "used_at": usedAt}).Error
}
