package controllers

import (
	"net/http"

	"github.com/mechanix-app/mechanix-backend/api/responses"
	"github.com/mechanix-app/mechanix-backend/api/validators"
	"github.com/mechanix-app/mechanix-backend/internal/comments"
	"github.com/mechanix-app/mechanix-backend/internal/mechanics"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
	"github.com/mechanix-app/mechanix-backend/pkg/types"
)

// MechanicController exposes the workshop profile endpoints.
type MechanicController struct {
	svc      mechanics.Service
	comments comments.Service
	logg     *logger.Logger
}

// NewMechanicController wires the mechanic endpoints. The comment service
// backs the rating and feedback listings.
func NewMechanicController(svc mechanics.Service, commentsSvc comments.Service, logg *logger.Logger) *MechanicController {
	return &MechanicController{svc: svc, comments: commentsSvc, logg: logg}
}

type locationBody struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

type createMechanicRequest struct {
	Name          string        `json:"name" validate:"required,max=100"`
	Description   *string       `json:"description,omitempty" validate:"omitempty,max=500"`
	Location      *locationBody `json:"location,omitempty"`
	PermissionKey string        `json:"permission_key" validate:"required"`
}

func (c *MechanicController) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	var body createMechanicRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	input := mechanics.CreateInput{
		Name:          body.Name,
		Description:   body.Description,
		PermissionKey: body.PermissionKey,
	}
	if body.Location != nil {
		input.Location = &types.GeographyPoint{Lat: body.Location.Lat, Lng: body.Location.Lng}
	}

	mechanic, err := c.svc.Create(r.Context(), mechanics.Actor{UserID: principal.UserID, Role: principal.Role}, input)
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusCreated, mechanic)
}

func (c *MechanicController) Get(w http.ResponseWriter, r *http.Request) {
	mechanicID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	mechanic, err := c.svc.Get(r.Context(), mechanicID)
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, mechanic)
}

func (c *MechanicController) List(w http.ResponseWriter, r *http.Request) {
	params, ok := queryPagination(w, r, c.logg)
	if !ok {
		return
	}

	list, err := c.svc.List(r.Context(), mechanics.ListParams{Pagination: params})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, list)
}

type updateMechanicRequest struct {
	Name        *string       `json:"name,omitempty" validate:"omitempty,max=100"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=500"`
	Location    *locationBody `json:"location,omitempty"`
}

func (c *MechanicController) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	var body updateMechanicRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	input := mechanics.UpdateInput{
		Name:        body.Name,
		Description: body.Description,
	}
	if body.Location != nil {
		input.Location = &types.GeographyPoint{Lat: body.Location.Lat, Lng: body.Location.Lng}
	}

	mechanic, err := c.svc.Update(r.Context(), mechanics.Actor{UserID: principal.UserID, Role: principal.Role}, input)
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, mechanic)
}

func (c *MechanicController) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	mechanicID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	if err := c.svc.Delete(r.Context(), mechanics.Actor{UserID: principal.UserID, Role: principal.Role}, mechanicID); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.NoContent(w)
}

// Rating returns the aggregate feedback score for a workshop.
func (c *MechanicController) Rating(w http.ResponseWriter, r *http.Request) {
	mechanicID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	rating, err := c.comments.Rating(r.Context(), mechanicID)
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, rating)
}

// Comments lists top-level feedback across a workshop's delivered requests.
func (c *MechanicController) Comments(w http.ResponseWriter, r *http.Request) {
	mechanicID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	params, ok := queryPagination(w, r, c.logg)
	if !ok {
		return
	}

	list, err := c.comments.ListByMechanic(r.Context(), mechanicID, comments.ListParams{Pagination: params})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, list)
}
