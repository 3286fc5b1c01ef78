package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mechanix-app/mechanix-backend/api/responses"
	"github.com/mechanix-app/mechanix-backend/api/validators"
	"github.com/mechanix-app/mechanix-backend/internal/permissions"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
)

// PermissionController exposes admin endpoints for mechanic admission keys.
type PermissionController struct {
	svc  permissions.Service
	logg *logger.Logger
}

// NewPermissionController wires the permission endpoints.
func NewPermissionController(svc permissions.Service, logg *logger.Logger) *PermissionController {
	return &PermissionController{svc: svc, logg: logg}
}

type issuePermissionRequest struct {
	UserID    int64      `json:"user_id" validate:"required,gt=0"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (c *PermissionController) Issue(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	var body issuePermissionRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	permission, err := c.svc.Issue(r.Context(), permissions.Actor{UserID: principal.UserID, Role: principal.Role}, permissions.IssueInput{
		UserID:    body.UserID,
		ExpiresAt: body.ExpiresAt,
	})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusCreated, permission)
}

// GetByKey resolves a raw key back to its issuance record.
func (c *PermissionController) GetByKey(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	permission, err := c.svc.GetByKey(r.Context(), permissions.Actor{UserID: principal.UserID, Role: principal.Role}, chi.URLParam(r, "key"))
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, permission)
}

// ListByUser returns the keys issued to one user, raw key withheld.
func (c *PermissionController) ListByUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	userID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	params, ok := queryPagination(w, r, c.logg)
	if !ok {
		return
	}

	list, err := c.svc.ListByUser(r.Context(), permissions.Actor{UserID: principal.UserID, Role: principal.Role}, permissions.ListParams{
		UserID:     userID,
		Pagination: params,
	})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, list)
}
