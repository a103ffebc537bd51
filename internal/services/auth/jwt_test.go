package auth

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", 15*time.Minute)
	userID := uuid.New()

	raw, expiresAt, err := m.GenerateAccessToken(userID, "sid-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry not in the future: %v", expiresAt)
	}

	claims, err := m.ParseAccessToken(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID || claims.SID != "sid-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseAccessTokenRejectsMissingExpiry(t *testing.T) {
	m := NewJWTManager("test-secret", 15*time.Minute)

	// correctly signed but minted without exp
	claims := tokenClaims{
		SID: "sid-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  uuid.New().String(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.ParseAccessToken(raw); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for token without expiry, got %v", err)
	}
}

func TestParseAccessTokenRejectsWrongAlgorithm(t *testing.T) {
	m := NewJWTManager("test-secret", 15*time.Minute)

	claims := tokenClaims{
		SID: "sid-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.ParseAccessToken(raw); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for alg=none token, got %v", err)
	}
}
