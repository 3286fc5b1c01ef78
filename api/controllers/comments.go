package controllers

import (
	"net/http"

	"github.com/mechanix-app/mechanix-backend/api/responses"
	"github.com/mechanix-app/mechanix-backend/api/validators"
	"github.com/mechanix-app/mechanix-backend/internal/comments"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
)

// CommentController exposes request feedback endpoints.
type CommentController struct {
	svc  comments.Service
	logg *logger.Logger
}

// NewCommentController wires the comment endpoints.
func NewCommentController(svc comments.Service, logg *logger.Logger) *CommentController {
	return &CommentController{svc: svc, logg: logg}
}

type createCommentRequest struct {
	RequestID int64  `json:"request_id" validate:"required,gt=0"`
	Body      string `json:"body" validate:"required,max=1000"`
	Rate      int    `json:"rate" validate:"required,min=1,max=5"`
	Anonymous bool   `json:"anonymous"`
	ParentID  *int64 `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
}

func (c *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	var body createCommentRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	comment, err := c.svc.Create(r.Context(), comments.Actor{UserID: principal.UserID, Role: principal.Role}, comments.CreateInput{
		RequestID: body.RequestID,
		Body:      body.Body,
		Rate:      body.Rate,
		Anonymous: body.Anonymous,
		ParentID:  body.ParentID,
	})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusCreated, comment)
}

// ListByRequest returns a request's comment thread, oldest first.
func (c *CommentController) ListByRequest(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r, c.logg); !ok {
		return
	}

	requestID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	params, ok := queryPagination(w, r, c.logg)
	if !ok {
		return
	}

	list, err := c.svc.ListByRequest(r.Context(), requestID, comments.ListParams{Pagination: params})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, list)
}

func (c *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	commentID, err := validators.URLParamInt64(r, "id")
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	if err := c.svc.Delete(r.Context(), comments.Actor{UserID: principal.UserID, Role: principal.Role}, commentID); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.NoContent(w)
}
