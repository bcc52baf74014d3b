package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/pkg/config"
	"github.com/outstocked/outstocked-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "outstocked-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	payload := AccessTokenPayload{
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		Role:           enums.UserRoleAdmin,
	}

	token, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("expected user %s got %s", payload.UserID, claims.UserID)
	}
	if claims.OrganizationID != payload.OrganizationID {
		t.Fatalf("expected org %s got %s", payload.OrganizationID, claims.OrganizationID)
	}
	if claims.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role, got %s", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintRejectsInvalidPayload(t *testing.T) {
	cfg := testJWTConfig()
	base := AccessTokenPayload{
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		Role:           enums.UserRoleUser,
	}

	cases := []struct {
		name   string
		mutate func(*config.JWTConfig, *AccessTokenPayload)
	}{
		{"missing secret", func(c *config.JWTConfig, _ *AccessTokenPayload) { c.Secret = "" }},
		{"missing issuer", func(c *config.JWTConfig, _ *AccessTokenPayload) { c.Issuer = "" }},
		{"zero expiry", func(c *config.JWTConfig, _ *AccessTokenPayload) { c.ExpirationMinutes = 0 }},
		{"nil user", func(_ *config.JWTConfig, p *AccessTokenPayload) { p.UserID = uuid.Nil }},
		{"nil org", func(_ *config.JWTConfig, p *AccessTokenPayload) { p.OrganizationID = uuid.Nil }},
		{"bad role", func(_ *config.JWTConfig, p *AccessTokenPayload) { p.Role = "owner" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, p := cfg, base
			tc.mutate(&c, &p)
			if _, err := MintAccessToken(c, time.Now(), p); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	payload := AccessTokenPayload{
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		Role:           enums.UserRoleUser,
	}

	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		Role:           enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
	if err != nil && !strings.Contains(token, ".") {
		t.Fatal("token should be a JWT")
	}
}
