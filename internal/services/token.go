package services

import (
	"fmt"
	"time"

	"github.com/desertthunder/chalet/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims the backend puts in its session token.
//
// The client cannot verify the signature (the secret lives on the backend); claims are
// only used to display identity and to skip requests with an obviously expired token.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID  string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"isAdmin"`
}

// ParseSessionClaims decodes the claims of a JWT without verifying its signature.
func ParseSessionClaims(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	return claims, nil
}

// User returns the identity carried by the claims.
func (c *SessionClaims) User() models.User {
	id := c.UserID
	if id == "" {
		id = c.Subject
	}
	role := c.Role
	if role == "" && c.IsAdmin {
		role = string(models.RoleAdmin)
	}
	return models.User{ID: id, Email: c.Email, Name: c.Name, Role: models.ParseRole(role)}
}

// NewSessionFromToken builds a [models.Session] for token. When the token is a JWT the
// identity and expiry are filled from its claims; opaque tokens produce a session without expiry.
func NewSessionFromToken(token, provider string, user *models.User) *models.Session {
	session := models.NewSession(0, token, provider)

	if claims, err := ParseSessionClaims(token); err == nil {
		session.SetUser(claims.User())
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			session.SetExpiresAt(&exp)
		}
	}

	if user != nil && user.ID != "" {
		session.SetUser(*user)
	}
	return session
}

// expired reports whether a JWT session token carries an expiry in the past.
func expired(token string, now time.Time) bool {
	claims, err := ParseSessionClaims(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
