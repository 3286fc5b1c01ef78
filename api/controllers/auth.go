package controllers

import (
	"net/http"

	"github.com/mechanix-app/mechanix-backend/api/responses"
	"github.com/mechanix-app/mechanix-backend/api/validators"
	"github.com/mechanix-app/mechanix-backend/internal/auth"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
)

// AuthController exposes the account lifecycle endpoints.
type AuthController struct {
	svc  auth.Service
	logg *logger.Logger
}

// NewAuthController wires the auth endpoints.
func NewAuthController(svc auth.Service, logg *logger.Logger) *AuthController {
	return &AuthController{svc: svc, logg: logg}
}

type signupRequest struct {
	PhoneNumber string  `json:"phone_number" validate:"required,e164"`
	Password    string  `json:"password" validate:"required,min=8"`
	FirstName   string  `json:"first_name" validate:"required,max=100"`
	LastName    string  `json:"last_name" validate:"required,max=100"`
	Avatar      *string `json:"avatar,omitempty" validate:"omitempty,max=200"`
}

func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var body signupRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	profile, err := c.svc.Signup(r.Context(), auth.SignupInput{
		PhoneNumber: body.PhoneNumber,
		Password:    body.Password,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Avatar:      body.Avatar,
	})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusCreated, profile)
}

type verifySignupRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Code        string `json:"code" validate:"required,len=6"`
}

func (c *AuthController) VerifySignup(w http.ResponseWriter, r *http.Request) {
	var body verifySignupRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	pair, err := c.svc.VerifySignup(r.Context(), auth.VerifySignupInput{
		PhoneNumber: body.PhoneNumber,
		Code:        body.Code,
	})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, pair)
}

type loginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Password    string `json:"password" validate:"required"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	pair, err := c.svc.Login(r.Context(), auth.LoginInput{
		PhoneNumber: body.PhoneNumber,
		Password:    body.Password,
	})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var body refreshRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	pair, err := c.svc.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, pair)
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	var body refreshRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	if err := c.svc.Logout(r.Context(), body.RefreshToken); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.NoContent(w)
}

type passwordResetRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
}

func (c *AuthController) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var body passwordResetRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	if err := c.svc.RequestPasswordReset(r.Context(), auth.PasswordResetRequestInput{
		PhoneNumber: body.PhoneNumber,
	}); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.NoContent(w)
}

type passwordResetConfirm struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (c *AuthController) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var body passwordResetConfirm
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	if err := c.svc.ConfirmPasswordReset(r.Context(), auth.PasswordResetConfirmInput{
		PhoneNumber: body.PhoneNumber,
		Code:        body.Code,
		NewPassword: body.NewPassword,
	}); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.NoContent(w)
}

func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	profile, err := c.svc.Profile(r.Context(), principal.UserID)
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,max=200"`
}

func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	var body updateProfileRequest
	if err := validators.DecodeJSON(r, &body); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}

	profile, err := c.svc.UpdateProfile(r.Context(), principal.UserID, auth.UpdateProfileInput{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Avatar:    body.Avatar,
	})
	if err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.Success(w, http.StatusOK, profile)
}

func (c *AuthController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, c.logg)
	if !ok {
		return
	}

	if err := c.svc.DeleteAccount(r.Context(), principal.UserID); err != nil {
		responses.Error(r.Context(), w, c.logg, err)
		return
	}
	responses.NoContent(w)
}
