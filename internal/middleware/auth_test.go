package middleware

import (
	"testing"

	"agorot/internal/models"
)

func TestGenerateRefreshToken_Unique(t *testing.T) {
	user := &models.User{Email: "refresh@test.com"}
	user.ID = 1

	// Back-to-back mints land in the same second; rotation depends on
	// every issued token hashing differently.
	first, err := GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first == second {
		t.Fatal("expected consecutive refresh tokens to differ")
	}
	if HashToken(first) == HashToken(second) {
		t.Error("expected consecutive refresh tokens to hash differently")
	}
}

func TestGenerateRefreshToken_Claims(t *testing.T) {
	user := &models.User{Email: "claims@test.com"}
	user.ID = 42

	token, err := GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("expected token type refresh, got %q", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("expected a token id on refresh claims")
	}
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	user := &models.User{Email: "access@test.com"}
	user.ID = 7

	token, err := GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := ValidateRefreshToken(token); err == nil {
		t.Error("expected access token to be rejected as a refresh token")
	}
}
