package auth

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
)

// Repository tracks revoked refresh token ids.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a revocation repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Revoke records a refresh token jti as unusable.
func (r *Repository) Revoke(ctx context.Context, token *models.RevokedToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// IsRevoked reports whether the jti has been blacklisted.
func (r *Repository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeOlderThan removes revocation rows created before the cutoff. Rows past
// the refresh TTL can never validate again, so keeping them only grows the table.
func (r *Repository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}
