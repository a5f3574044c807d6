package models

import (
	"fmt"
	"time"
)

// Session is a stored backend session. The token is the value of the backend's session cookie.
type Session struct {
	id        string
	sequence  int
	token     string
	userID    string
	email     string
	name      string
	role      Role
	provider  string
	expiresAt *time.Time
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSession creates a [Session] for token obtained through provider ("password" or "google").
func NewSession(sequence int, token, provider string) *Session {
	now := time.Now()
	return &Session{
		sequence:  sequence,
		token:     token,
		provider:  provider,
		role:      RoleUser,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string            { return s.id }
func (s *Session) Sequence() int         { return s.sequence }
func (s *Session) Token() string         { return s.token }
func (s *Session) UserID() string        { return s.userID }
func (s *Session) Email() string         { return s.email }
func (s *Session) Name() string          { return s.name }
func (s *Session) Role() Role            { return s.role }
func (s *Session) Provider() string      { return s.provider }
func (s *Session) ExpiresAt() *time.Time { return s.expiresAt }
func (s *Session) CreatedAt() time.Time  { return s.createdAt }
func (s *Session) UpdatedAt() time.Time  { return s.updatedAt }
func (s *Session) DeletedAt() *time.Time { return s.deletedAt }

func (s *Session) SetID(id string)           { s.id = id }
func (s *Session) SetSequence(seq int)       { s.sequence = seq }
func (s *Session) SetToken(token string)     { s.token = token }
func (s *Session) SetRole(role Role)         { s.role = role }
func (s *Session) SetExpiresAt(t *time.Time) { s.expiresAt = t }
func (s *Session) SetCreatedAt(t time.Time)  { s.createdAt = t }
func (s *Session) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *Session) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// SetUser copies the identity fields of u onto the session.
func (s *Session) SetUser(u User) {
	s.userID = u.ID
	s.email = u.Email
	s.name = u.Name
	s.role = ParseRole(string(u.Role))
}

// User returns the identity stored on the session.
func (s *Session) User() User {
	return User{ID: s.userID, Email: s.email, Name: s.name, Role: s.role}
}

// Authenticated reports whether the session holds a token that has not expired.
func (s *Session) Authenticated() bool {
	if s == nil || s.token == "" || s.deletedAt != nil {
		return false
	}
	return s.expiresAt == nil || time.Now().Before(*s.expiresAt)
}

// Validate checks required fields.
func (s *Session) Validate() error {
	if s.token == "" {
		return fmt.Errorf("session token is required")
	}
	if s.provider == "" {
		return fmt.Errorf("session provider is required")
	}
	return nil
}
