package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-only-secret"))
	if err != nil {
		t.Fatalf("sign token err: %v", err)
	}

	return token
}

func TestParseClaimsReadsOwner(t *testing.T) {
	token := signToken(t, Claims{
		Username: "farrukh@example.tj",
		UserID:   42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ParseClaims(token)
	if err != nil {
		t.Fatalf("parse claims err: %v", err)
	}

	if claims.OwnerID() != 42 || claims.Username != "farrukh@example.tj" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if claims.ExpiresWithin(time.Now(), time.Minute) {
		t.Fatalf("token should not expire within a minute")
	}
}

func TestParseClaimsFallsBackToSubject(t *testing.T) {
	token := signToken(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}})

	claims, err := ParseClaims(token)
	if err != nil {
		t.Fatalf("parse claims err: %v", err)
	}

	if claims.OwnerID() != 7 {
		t.Fatalf("expected 7 got %d", claims.OwnerID())
	}
}

func TestParseClaimsRejectsGarbage(t *testing.T) {
	if _, err := ParseClaims("invalid.token"); err == nil {
		t.Fatalf("expected error for invalid token")
	}

	if _, err := ParseClaims(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
