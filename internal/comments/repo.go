package comments

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

// Repository exposes mechanic comment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a comment repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new comment row.
func (r *Repository) Create(ctx context.Context, comment *models.MechanicComment) (*models.MechanicComment, error) {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// FindByID returns the comment with the given id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.MechanicComment, error) {
	var row models.MechanicComment
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByRequest returns the comments on a request, oldest first so threads
// read top down.
func (r *Repository) ListByRequest(ctx context.Context, requestID int64, params pagination.Params) ([]models.MechanicComment, error) {
	var rows []models.MechanicComment
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByMechanic returns top-level comments across all of a mechanic's
// requests, newest first.
func (r *Repository) ListByMechanic(ctx context.Context, mechanicID int64, params pagination.Params) ([]models.MechanicComment, error) {
	var rows []models.MechanicComment
	err := r.db.WithContext(ctx).
		Joins("JOIN mechanic_car_requests ON mechanic_car_requests.id = mechanic_comments.request_id").
		Where("mechanic_car_requests.mechanic_id = ? AND mechanic_comments.parent_id IS NULL", mechanicID).
		Order("mechanic_comments.created_at DESC").
		Order("mechanic_comments.id DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AverageRating returns the mean top-level rating across a mechanic's
// requests, or false when no ratings exist.
func (r *Repository) AverageRating(ctx context.Context, mechanicID int64) (float64, bool, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&models.MechanicComment{}).
		Select("AVG(mechanic_comments.rate)").
		Joins("JOIN mechanic_car_requests ON mechanic_car_requests.id = mechanic_comments.request_id").
		Where("mechanic_car_requests.mechanic_id = ? AND mechanic_comments.parent_id IS NULL", mechanicID).
		Scan(&avg).Error
	if err != nil {
		return 0, false, err
	}
	if !avg.Valid {
		return 0, false, nil
	}
	return avg.Float64, true, nil
}

// Delete removes the comment row; replies keep their rows with a nulled parent.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.MechanicComment{}, "id = ?", id).Error
}
