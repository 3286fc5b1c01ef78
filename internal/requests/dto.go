package requests

import (
	"time"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

// CreateInput holds the fields a car owner supplies when opening a request.
type CreateInput struct {
	CarID       int64
	MechanicID  int64
	Issue       enums.RequestIssue
	Description string
}

// OwnerPatch is the edit surface available to the car owner while the
// request is still pending.
type OwnerPatch struct {
	Issue       *enums.RequestIssue
	Description *string
}

// MechanicPatch is the edit surface available to the assigned mechanic.
type MechanicPatch struct {
	Status enums.RequestStatus
}

// ListParams bounds the list window for either actor role.
type ListParams struct {
	Pagination pagination.Params
}

// Request is the wire representation of a mechanic car request.
type Request struct {
	ID          int64               `json:"id"`
	Status      enums.RequestStatus `json:"status"`
	Issue       enums.RequestIssue  `json:"issue"`
	Description string              `json:"description"`
	CarID       int64               `json:"car_id"`
	MechanicID  int64               `json:"mechanic_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toRequest(row *models.MechanicCarRequest) *Request {
	if row == nil {
		return nil
	}
	return &Request{
		ID:          row.ID,
		Status:      row.Status,
		Issue:       row.Issue,
		Description: row.Description,
		CarID:       row.CarID,
		MechanicID:  row.MechanicID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toRequests(rows []models.MechanicCarRequest) []Request {
	out := make([]Request, len(rows))
	for i := range rows {
		out[i] = *toRequest(&rows[i])
	}
	return out
}
