package cars

import (
	"time"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

// CreateInput holds the fields supplied when registering a car.
type CreateInput struct {
	Title        string
	Category     string
	Color        *string
	Trim         string
	ModelDate    time.Time
	Description  *string
	LicensePlate string
}

// UpdateInput is the partial edit surface for an existing car.
type UpdateInput struct {
	Title        *string
	Category     *string
	Color        *string
	Trim         *string
	ModelDate    *time.Time
	Description  *string
	LicensePlate *string
}

// ListParams bounds the list window.
type ListParams struct {
	Pagination pagination.Params
}

// OpenRequest summarizes an undelivered repair request attached to a car.
type OpenRequest struct {
	ID         int64               `json:"id"`
	MechanicID int64               `json:"mechanic_id"`
	Status     enums.RequestStatus `json:"status"`
	Issue      enums.RequestIssue  `json:"issue"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Car is the wire representation of a registered vehicle. OpenRequests is
// populated on single-car reads only.
type Car struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Category     string        `json:"category"`
	Color        *string       `json:"color,omitempty"`
	Trim         string        `json:"trim"`
	ModelDate    time.Time     `json:"model_date"`
	Description  *string       `json:"description,omitempty"`
	LicensePlate string        `json:"license_plate"`
	UserID       int64         `json:"user_id"`
	OpenRequests []OpenRequest `json:"open_requests,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func toCar(row *models.Car) *Car {
	if row == nil {
		return nil
	}
	car := &Car{
		ID:           row.ID,
		Title:        row.Title,
		Category:     row.Category,
		Color:        row.Color,
		Trim:         row.Trim,
		ModelDate:    row.ModelDate,
		Description:  row.Description,
		LicensePlate: row.LicensePlate,
		UserID:       row.UserID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	for _, req := range row.MechanicRequests {
		car.OpenRequests = append(car.OpenRequests, OpenRequest{
			ID:         req.ID,
			MechanicID: req.MechanicID,
			Status:     req.Status,
			Issue:      req.Issue,
			CreatedAt:  req.CreatedAt,
		})
	}
	return car
}

func toCars(rows []models.Car) []Car {
	out := make([]Car, len(rows))
	for i := range rows {
		out[i] = *toCar(&rows[i])
	}
	return out
}
