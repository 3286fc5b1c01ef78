package comments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

// CreateInput holds the fields supplied when leaving feedback on a
// delivered request.
type CreateInput struct {
	RequestID int64
	Body      string
	Rate      int
	Anonymous bool
	ParentID  *int64
}

// ListParams bounds the list window.
type ListParams struct {
	Pagination pagination.Params
}

// Comment is the wire representation of request feedback. The author id is
// withheld for anonymous comments.
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Rate      int       `json:"rate"`
	Anonymous bool      `json:"anonymous"`
	UserID    *int64    `json:"user_id,omitempty"`
	RequestID int64     `json:"request_id"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MechanicRating aggregates feedback for one workshop.
type MechanicRating struct {
	MechanicID    int64           `json:"mechanic_id"`
	AverageRating decimal.Decimal `json:"average_rating"`
	HasRatings    bool            `json:"has_ratings"`
}

func toComment(row *models.MechanicComment) *Comment {
	if row == nil {
		return nil
	}
	out := &Comment{
		ID:        row.ID,
		Body:      row.Body,
		Rate:      row.Rate,
		Anonymous: row.Anonymous,
		RequestID: row.RequestID,
		ParentID:  row.ParentID,
		CreatedAt: row.CreatedAt,
	}
	if !row.Anonymous {
		userID := row.UserID
		out.UserID = &userID
	}
	return out
}

func toComments(rows []models.MechanicComment) []Comment {
	out := make([]Comment, len(rows))
	for i := range rows {
		out[i] = *toComment(&rows[i])
	}
	return out
}
