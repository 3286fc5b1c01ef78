package controllers

import (
	"net/http"
	"time"

	"github.com/mechanix-app/mechanix-backend/api/responses"
	"github.com/mechanix-app/mechanix-backend/api/validators"
	"github.com/mechanix-app/mechanix-backend/internal/cars"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
)

// CarController exposes the vehicle registry endpoints.
type CarController struct {
	svc  cars.Service
	logg *logger.Logger
}

// NewCarController wires the car endpoints.
func NewCarController(svc cars.Service, logg *logger.Logger) *CarController {
	return &CarController{svc: svc, logg: logg}
}

const modelDateLayout = "2006-01-02"

type createCarRequest struct {
	Title        string  `json:"title" validate:"required,max=100"`
	Category     string  `json:"category" validate:"required,max=50"`
	Color        *string `json:"color,omitempty" validate:"omitempty,max=30"`
	Trim         string  `json:"trim" validate:"required,max=50"`
	ModelDate    string  `json:"model_date" validate:"required"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=500"`
	LicensePlate string  `json:"license_plate" validate:"required,max=8"`
}

func (c *CarController) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	var body createCarRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	modelDate, err := time.Parse(modelDateLayout, body.ModelDate)
	if err != nil {
		responses.Error(r.Context(), w, c.logg,
			pkgerrors.New(pkgerrors.CodeValidation, "model_date must be YYYY-MM-DD"))
		return
	}

	car, err := c.svc.Create(r.Context(), principal.UserID, cars.CreateInput{
		Title:        body.Title,
		Category:     body.Category,
		Color:        body.Color,
		Trim:         body.Trim,
		ModelDate:    modelDate,
		Description:  body.Description,
		LicensePlate: body.LicensePlate,
	})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusCreated, car)
}

func (c *CarController) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	carID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	car, err := c.svc.Get(r.Context(), principal.UserID, carID)
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, car)
}

func (c *CarController) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}
	params, ok := queryPagination(w, r, c.logg)
	if !ok {
		return
	}

	list, err := c.svc.List(r.Context(), principal.UserID, cars.ListParams{Pagination: params})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, list)
}

type updateCarRequest struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,max=100"`
	Category     *string `json:"category,omitempty" validate:"omitempty,max=50"`
	Color        *string `json:"color,omitempty" validate:"omitempty,max=30"`
	Trim         *string `json:"trim,omitempty" validate:"omitempty,max=50"`
	ModelDate    *string `json:"model_date,omitempty"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=500"`
	LicensePlate *string `json:"license_plate,omitempty" validate:"omitempty,max=8"`
}

func (c *CarController) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	carID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	var body updateCarRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	input := cars.UpdateInput{
		Title:        body.Title,
		Category:     body.Category,
		Color:        body.Color,
		Trim:         body.Trim,
		Description:  body.Description,
		LicensePlate: body.LicensePlate,
	}
	if body.ModelDate != nil {
		modelDate, err := time.Parse(modelDateLayout, *body.ModelDate)
		if err != nil {
			responses.Error(r.Context(), w, c.logg,
				pkgerrors.New(pkgerrors.CodeValidation, "model_date must be YYYY-MM-DD"))
			return
		}
		input.ModelDate = &modelDate
	}

	car, err := c.svc.Update(r.Context(), principal.UserID, carID, input)
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, car)
}

func (c *CarController) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	carID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	if err := c.svc.Delete(r.Context(), principal.UserID, carID); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.NoContent(w)
}
