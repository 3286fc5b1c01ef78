package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/mechanix-app/mechanix-backend/pkg/enums"
)

// TokenPayload captures the data available when minting a JWT.
type TokenPayload struct {
	UserID    int64
	Role      enums.UserRole
	TokenType enums.TokenType
	JTI       string
}

// Claims represents the typed JWT issued to clients. TokenType distinguishes
// access tokens from refresh tokens so one cannot stand in for the other.
type Claims struct {
	UserID    int64           `json:"user_id"`
	Role      enums.UserRole  `json:"role"`
	TokenType enums.TokenType `json:"token_type"`
	jwt.RegisteredClaims
}
