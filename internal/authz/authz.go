// Package authz evaluates permissions and region scope for an authenticated session.
// Evaluation is pure: no I/O, and a nil or empty session is denied everything.
package authz

import (
	"errors"

	"github.com/google/uuid"
)

var ErrForbidden = errors.New("you do not have permission to perform this action")

// Session is the acting identity, resolved once at login.
type Session struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	RegionIDs   []string  `json:"region_ids"`

	perms map[string]struct{}
}

func NewSession(userID uuid.UUID, username, name string, roles, permissions, regionIDs []string) *Session {
	s := &Session{
		UserID:      userID,
		Username:    username,
		Name:        name,
		Roles:       nonNil(roles),
		Permissions: nonNil(permissions),
		RegionIDs:   nonNil(regionIDs),
		perms:       make(map[string]struct{}, len(permissions)),
	}
	for _, p := range permissions {
		s.perms[p] = struct{}{}
	}
	return s
}

// HasPermission reports whether the session grants name.
func HasPermission(s *Session, name string) bool {
	if s == nil || name == "" {
		return false
	}
	if s.perms == nil {
		for _, p := range s.Permissions {
			if p == name {
				return true
			}
		}
		return false
	}
	_, ok := s.perms[name]
	return ok
}

// HasAny reports whether the session grants at least one of names.
func HasAny(s *Session, names ...string) bool {
	for _, n := range names {
		if HasPermission(s, n) {
			return true
		}
	}
	return false
}

// Require returns ErrForbidden unless the session grants name.
func Require(s *Session, name string) error {
	if !HasPermission(s, name) {
		return ErrForbidden
	}
	return nil
}

// RequireAny returns ErrForbidden unless the session grants one of names.
func RequireAny(s *Session, names ...string) error {
	if !HasAny(s, names...) {
		return ErrForbidden
	}
	return nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
