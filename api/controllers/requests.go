package controllers

import (
	"net/http"

	"github.com/mechanix-app/mechanix-backend/api/responses"
	"github.com/mechanix-app/mechanix-backend/api/validators"
	"github.com/mechanix-app/mechanix-backend/internal/requests"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
)

// RequestController exposes the repair request lifecycle endpoints.
type RequestController struct {
	svc  requests.Service
	logg *logger.Logger
}

// NewRequestController wires the request endpoints.
func NewRequestController(svc requests.Service, logg *logger.Logger) *RequestController {
	return &RequestController{svc: svc, logg: logg}
}

type createRequestBody struct {
	CarID       int64  `json:"car_id" validate:"required,gt=0"`
	MechanicID  int64  `json:"mechanic_id" validate:"required,gt=0"`
	Issue       string `json:"issue" validate:"required"`
	Description string `json:"description" validate:"required,max=1000"`
}

func (c *RequestController) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	var body createRequestBody
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	issue, err := enums.ParseRequestIssue(body.Issue)
	if err != nil {
		responses.Error(r.Context(), w, c.logg,
			pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid issue"))
		return
	}

	request, err := c.svc.Create(r.Context(), requests.Actor{UserID: principal.UserID, Role: principal.Role}, requests.CreateInput{
		CarID:       body.CarID,
		MechanicID:  body.MechanicID,
		Issue:       issue,
		Description: body.Description,
	})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusCreated, request)
}

type ownerPatchBody struct {
	Issue       *string `json:"issue,omitempty"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

func (c *RequestController) UpdateByUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	requestID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	var body ownerPatchBody
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	patch := requests.OwnerPatch{Description: body.Description}
	if body.Issue != nil {
		issue, err := enums.ParseRequestIssue(*body.Issue)
		if err != nil {
			responses.Error(r.Context(), w, c.logg,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid issue"))
			return
		}
		patch.Issue = &issue
	}

	request, err := c.svc.UpdateByUser(r.Context(), requests.Actor{UserID: principal.UserID, Role: principal.Role}, requestID, patch)
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, request)
}

type mechanicPatchBody struct {
	Status string `json:"status" validate:"required"`
}

func (c *RequestController) UpdateByMechanic(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	requestID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	var body mechanicPatchBody
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	status, err := enums.ParseRequestStatus(body.Status)
	if err != nil {
		responses.Error(r.Context(), w, c.logg,
			pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
		return
	}

	request, err := c.svc.UpdateByMechanic(r.Context(), requests.Actor{UserID: principal.UserID, Role: principal.Role}, requestID, requests.MechanicPatch{
		Status: status,
	})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, request)
}

func (c *RequestController) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}
	params, ok := queryPagination(w, r, c.logg)
	if !ok {
		return
	}

	list, err := c.svc.List(r.Context(), requests.Actor{UserID: principal.UserID, Role: principal.Role}, requests.ListParams{Pagination: params})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, list)
}

func (c *RequestController) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	requestID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	if err := c.svc.Delete(r.Context(), requests.Actor{UserID: principal.UserID, Role: principal.Role}, requestID); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.NoContent(w)
}
