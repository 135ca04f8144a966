package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/config"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "csu-biolab-test",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: userID,
		Email:  "student@example.edu",
		Role:   enums.RoleStudent,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected a compact JWT, got %q", token)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "student@example.edu" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Role != enums.RoleStudent {
		t.Fatalf("unexpected role %q", claims.Role)
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "student@example.edu",
		Role:   enums.RoleStudent,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail validation")
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "admin@example.edu",
		Role:   enums.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	other := cfg
	other.Secret = "some-other-secret"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}

func TestMintAccessTokenValidatesPayload(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.RoleAdmin}); err == nil {
		t.Fatal("expected missing user id to fail")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: "superuser"}); err == nil {
		t.Fatal("expected invalid role to fail")
	}
}
