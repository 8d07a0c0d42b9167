// Package session models the authenticated identity as an explicitly
// passed, read-only capability. Orchestrator operations take a Session
// argument instead of consulting ambient mutable storage, so they stay
// pure given their inputs.
package session

import "github.com/swapwear/marketplace/internal/core/domain/entity"

// Role distinguishes ordinary users from administrators.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Session identifies the current caller. The zero value is anonymous.
type Session struct {
	UserID   entity.ID
	UserRole Role
}

// Anonymous is the unauthenticated session.
var Anonymous = Session{}

// New builds a session for an authenticated user.
func New(userID entity.ID, role Role) Session {
	return Session{UserID: userID, UserRole: role}
}

// CurrentUserID returns the authenticated identity, zero if anonymous.
func (s Session) CurrentUserID() entity.ID { return s.UserID }

// IsAuthenticated reports whether a user identity is present.
func (s Session) IsAuthenticated() bool { return s.UserID.Valid() }

// IsAdmin reports whether the caller holds the administrator role.
func (s Session) IsAdmin() bool { return s.UserRole == RoleAdmin }

// Role returns the caller's role, defaulting to an ordinary user.
func (s Session) Role() Role {
	if s.UserRole == "" {
		return RoleUser
	}
	return s.UserRole
}
