package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/mechanix-app/mechanix-backend/pkg/config"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:               "secret",
		Issuer:               "mechanix",
		AccessExpiryMinutes:  30,
		RefreshExpiryMinutes: 43200,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	payload := TokenPayload{
		UserID:    42,
		Role:      enums.UserRoleMechanic,
		TokenType: enums.TokenTypeAccess,
	}

	token, err := MintToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseToken(cfg, token, enums.TokenTypeAccess)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if claims.UserID != 42 {
		t.Fatalf("expected user_id 42, got %d", claims.UserID)
	}
	if claims.Role != enums.UserRoleMechanic {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.TokenType != enums.TokenTypeAccess {
		t.Fatalf("unexpected token type %s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(cfg.AccessTTL())
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestMintRefreshTokenUsesRefreshTTL(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintToken(cfg, now, TokenPayload{
		UserID:    7,
		Role:      enums.UserRoleUser,
		TokenType: enums.TokenTypeRefresh,
		JTI:       "fixed-jti",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseToken(cfg, token, enums.TokenTypeRefresh)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.ID != "fixed-jti" {
		t.Fatalf("expected supplied jti, got %s", claims.ID)
	}

	exp := now.Add(cfg.RefreshTTL())
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp.UTC(), claims.ExpiresAt.UTC())
	}
}

func TestParseTokenRejectsWrongType(t *testing.T) {
	cfg := testJWTConfig()

	token, err := MintToken(cfg, time.Now(), TokenPayload{
		UserID:    7,
		Role:      enums.UserRoleUser,
		TokenType: enums.TokenTypeRefresh,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	if _, err := ParseToken(cfg, token, enums.TokenTypeAccess); err == nil {
		t.Fatal("expected token type mismatch error")
	}
}

func TestParseTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig()

	token, err := MintToken(cfg, time.Now(), TokenPayload{
		UserID:    7,
		Role:      enums.UserRoleAdmin,
		TokenType: enums.TokenTypeAccess,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	if _, err := ParseToken(cfg, token+"x", enums.TokenTypeAccess); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().Add(-2 * time.Hour)

	token, err := MintToken(cfg, now, TokenPayload{
		UserID:    7,
		Role:      enums.UserRoleUser,
		TokenType: enums.TokenTypeAccess,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	_, err = ParseToken(cfg, token, enums.TokenTypeAccess)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintTokenInvalidRole(t *testing.T) {
	cfg := testJWTConfig()

	if _, err := MintToken(cfg, time.Now(), TokenPayload{
		UserID:    7,
		Role:      "",
		TokenType: enums.TokenTypeAccess,
	}); err == nil {
		t.Fatal("expected invalid role error")
	}
}
