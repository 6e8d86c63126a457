package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Sign(42)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user 42, got %d", claims.UserID)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(token); err == nil {
			t.Errorf("expected error for %q", token)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-one", time.Hour).Sign(1)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := NewTokenService("secret-two", time.Hour).Verify(token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestVerifyRejectsForeignSigningMethod(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign HS512: %v", err)
	}

	if _, err := svc.Verify(token); err == nil {
		t.Error("expected error for token signed with a different method")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	token, err := NewTokenService("test-secret", -time.Minute).Sign(1)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := NewTokenService("test-secret", -time.Minute).Verify(token); err == nil {
		t.Error("expected error for expired token")
	}
}
