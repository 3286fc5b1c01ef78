package auth

import (
	"time"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
)

// SignupInput holds the registration payload.
type SignupInput struct {
	PhoneNumber string
	Password    string
	FirstName   string
	LastName    string
	Avatar      *string
}

// VerifySignupInput redeems the signup one-time code.
type VerifySignupInput struct {
	PhoneNumber string
	Code        string
}

// LoginInput holds the credential payload.
type LoginInput struct {
	PhoneNumber string
	Password    string
}

// PasswordResetRequestInput starts the reset flow for a phone number.
type PasswordResetRequestInput struct {
	PhoneNumber string
}

// PasswordResetConfirmInput redeems the reset code and sets a new password.
type PasswordResetConfirmInput struct {
	PhoneNumber string
	Code        string
	NewPassword string
}

// UpdateProfileInput patches the mutable profile fields. Nil means unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Avatar    *string
}

// TokenPair carries a freshly minted access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Profile is the wire representation of the authenticated account.
type Profile struct {
	ID          int64          `json:"id"`
	PhoneNumber string         `json:"phone_number"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Avatar      *string        `json:"avatar,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toProfile(row *models.User) *Profile {
	if row == nil {
		return nil
	}
	return &Profile{
		ID:          row.ID,
		PhoneNumber: row.PhoneNumber,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		Avatar:      row.Avatar,
		Role:        row.Role,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
	}
}
