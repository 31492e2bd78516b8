package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hinglish-snaps/config"
)

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	manager, err := NewJWTManager(config.AuthConfig{})
	if err == nil {
		t.Fatalf("expected error when secret is empty")
	}
	if manager != nil {
		t.Fatalf("expected nil manager when config is invalid")
	}
}

func TestNewJWTManagerUsesDefaultTTL(t *testing.T) {
	manager, err := NewJWTManager(config.AuthConfig{JWTSecret: "test-secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manager.ttl != 30*24*time.Hour {
		t.Fatalf("expected default ttl 30d, got %s", manager.ttl)
	}
}

func TestJWTManagerSignAndParseRoundTrip(t *testing.T) {
	manager, err := NewJWTManager(config.AuthConfig{JWTSecret: "test-secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := manager.Sign("65f0c0ffee", "asha@example.com", true)
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if claims.UserID != "65f0c0ffee" || claims.Email != "asha@example.com" || !claims.IsAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatalf("expected iat and exp to be set")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 30*24*time.Hour {
		t.Fatalf("expected 30d lifetime, got %s", got)
	}
}

func TestJWTManagerParseRejectsInvalidSignature(t *testing.T) {
	manager := &JWTManager{secret: []byte("service-secret"), ttl: time.Hour, now: time.Now}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u1",
		"email":  "a@example.com",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := forged.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}

	if _, err := manager.Parse(tokenString); err == nil {
		t.Fatalf("expected signature error")
	} else if !strings.Contains(err.Error(), "signature") {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestJWTManagerParseRejectsExpiredToken(t *testing.T) {
	manager, err := NewJWTManager(config.AuthConfig{JWTSecret: "s", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	issued := time.Now().Add(-2 * time.Hour)
	manager.now = func() time.Time { return issued }
	token, err := manager.Sign("u1", "a@example.com", false)
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}

	manager.now = time.Now
	if _, err := manager.Parse(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestJWTManagerParseRejectsMissingExpiry(t *testing.T) {
	manager := &JWTManager{secret: []byte("s"), ttl: time.Hour, now: time.Now}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": "u1", "email": "a@example.com"})
	tokenString, _ := tok.SignedString([]byte("s"))
	if _, err := manager.Parse(tokenString); err == nil {
		t.Fatalf("expected token without exp to be rejected")
	}
}
