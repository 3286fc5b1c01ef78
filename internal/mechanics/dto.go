package mechanics

import (
	"time"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
	"github.com/mechanix-app/mechanix-backend/pkg/types"
)

// CreateInput holds the fields supplied when opening a workshop profile.
type CreateInput struct {
	Name          string
	Description   *string
	Location      *types.GeographyPoint
	PermissionKey string
}

// UpdateInput is the partial edit surface for an existing mechanic profile.
type UpdateInput struct {
	Name        *string
	Description *string
	Location    *types.GeographyPoint
}

// ListParams bounds the list window.
type ListParams struct {
	Pagination pagination.Params
}

// Mechanic is the wire representation of a workshop profile.
type Mechanic struct {
	ID          int64                 `json:"id"`
	Name        string                `json:"name"`
	Description *string               `json:"description,omitempty"`
	Location    *types.GeographyPoint `json:"location,omitempty"`
	UserID      int64                 `json:"user_id"`
	CreatedAt   time.Time             `json:"created_at"`
}

func toMechanic(row *models.Mechanic) *Mechanic {
	if row == nil {
		return nil
	}
	return &Mechanic{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Location:    row.Location,
		UserID:      row.UserID,
		CreatedAt:   row.CreatedAt,
	}
}

func toMechanics(rows []models.Mechanic) []Mechanic {
	out := make([]Mechanic, len(rows))
	for i := range rows {
		out[i] = *toMechanic(&rows[i])
	}
	return out
}
