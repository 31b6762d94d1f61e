package domain

import (
	"errors"
	"fmt"
)

// Principal is the opaque caller identity issued by the identity provider
// (the JWT "sub" claim).
type Principal string

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// ParseRole accepts exactly the three known roles.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleUser, RoleGuest:
		return Role(s), true
	}
	return "", false
}

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	}
	return 0
}

// Satisfies reports whether r grants at least the access of required.
func (r Role) Satisfies(required Role) bool {
	return r.rank() >= required.rank()
}

type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionAuthenticating  SessionState = "authenticating"
	SessionAuthenticated   SessionState = "authenticated"
)

var ErrInvalidTransition = errors.New("invalid session transition")

// Session tracks one caller through
// Unauthenticated -> Authenticating -> Authenticated{role}.
// Role is the value resolved at login; admin surfaces never trust it and
// resolve again through the gate.
type Session struct {
	State     SessionState `json:"state"`
	Principal Principal    `json:"principal,omitempty"`
	Email     string       `json:"email,omitempty"`
	Role      Role         `json:"role,omitempty"`
}

func NewSession() *Session {
	return &Session{State: SessionUnauthenticated}
}

// BeginAuthentication is triggered when the caller presents a credential.
func (s *Session) BeginAuthentication() error {
	if s.State != SessionUnauthenticated {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, SessionAuthenticating)
	}
	s.State = SessionAuthenticating
	return nil
}

// Complete finishes authentication once the identity provider returned a principal.
func (s *Session) Complete(principal Principal, email string, role Role) error {
	if s.State != SessionAuthenticating {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, SessionAuthenticated)
	}
	if principal == "" {
		return fmt.Errorf("%w: empty principal", ErrInvalidTransition)
	}
	if _, ok := ParseRole(string(role)); !ok {
		role = RoleGuest
	}
	s.State = SessionAuthenticated
	s.Principal = principal
	s.Email = email
	s.Role = role
	return nil
}

// Fail drops the session back to Unauthenticated after a rejected credential.
func (s *Session) Fail() {
	s.State = SessionUnauthenticated
	s.Principal = ""
	s.Email = ""
	s.Role = ""
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.State == SessionAuthenticated && s.Principal != ""
}
