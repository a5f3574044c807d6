package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims SessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestSessionClaims(t *testing.T) {
	t.Run("ParseSessionClaims", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		token := signToken(t, SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(exp)},
			Email:            "ana@example.com",
			Role:             "admin",
		})

		claims, err := ParseSessionClaims(token)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		u := claims.User()
		if u.ID != "u1" || !u.IsAdmin() {
			t.Errorf("unexpected user %+v", u)
		}
		if !claims.ExpiresAt.Time.Equal(exp) {
			t.Errorf("expected expiry %v, got %v", exp, claims.ExpiresAt.Time)
		}
	})

	t.Run("opaque token", func(t *testing.T) {
		if _, err := ParseSessionClaims("s%3Aopaque-cookie"); err == nil {
			t.Error("expected error for non-JWT token")
		}
		if expired("s%3Aopaque-cookie", time.Now()) {
			t.Error("opaque tokens are never known to be expired")
		}
	})

	t.Run("expired", func(t *testing.T) {
		token := signToken(t, SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		})
		if !expired(token, time.Now()) {
			t.Error("expected token to be expired")
		}
	})

	t.Run("NewSessionFromToken", func(t *testing.T) {
		token := signToken(t, SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			UserID:           "u9",
			IsAdmin:          true,
		})

		session := NewSessionFromToken(token, "google", nil)
		if !session.Authenticated() {
			t.Error("expected authenticated session")
		}
		if session.UserID() != "u9" || !session.User().IsAdmin() {
			t.Errorf("unexpected identity %+v", session.User())
		}
		if session.ExpiresAt() == nil {
			t.Error("expected expiry from claims")
		}

		opaque := NewSessionFromToken("opaque", "password", nil)
		if opaque.ExpiresAt() != nil || !opaque.Authenticated() {
			t.Error("opaque token session should have no expiry and be authenticated")
		}
	})
}
