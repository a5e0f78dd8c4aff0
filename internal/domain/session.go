package domain

import (
	"time"
)

// Role is a coarse-grained identity category carried in the session token.
// The backend issues a small fixed set; ROLE_BLOCKED marks accounts that
// must not use the web console.
type Role string

const (
	RoleAdmin      Role = "ROLE_ADMIN"
	RoleRH         Role = "ROLE_RH"
	RoleSupervisor Role = "ROLE_SUPERVISOR"
	RoleChecktime  Role = "ROLE_CHECKTIME"
	RoleBlocked    Role = "ROLE_BLOCKED"
)

// Permission is a fine-grained capability string of the form "domain:action"
type Permission string

// ClaimSet is the decoded payload of a session token. Only the claims on the
// allow-list below ever leave the codec; everything else in the payload is
// dropped at decode time.
type ClaimSet struct {
	Subject   string
	Name      string
	Email     string
	TenantID  string
	IssuedAt  int64 // seconds since epoch
	ExpiresAt int64 // seconds since epoch
	Roles     []Role
}

// Expired reports whether the claim set is expired at the given instant.
// A missing expiry counts as expired.
func (c *ClaimSet) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == 0 {
		return true
	}
	return c.ExpiresAt <= now.Unix()
}

// SessionRecord is the sanitized subset of claims the console keeps
// client-side alongside the opaque token. It never carries signature
// material or claims outside the allow-list.
type SessionRecord struct {
	Subject   string `json:"subject"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Tenant    string `json:"tenant,omitempty"`
	Roles     []Role `json:"roles"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// NewSessionRecord builds a session record from a decoded claim set.
func NewSessionRecord(claims *ClaimSet) *SessionRecord {
	return &SessionRecord{
		Subject:   claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		Tenant:    claims.TenantID,
		Roles:     claims.Roles,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}
}

// Session is the evaluated authorization state for one navigation or API
// request. It is constructed once per request by the session evaluator and
// handed to the gatekeeper and guards, which never re-read ambient storage.
type Session struct {
	Token         string
	Authenticated bool
	Record        *SessionRecord
	Permissions   map[Permission]struct{}
}

// Roles returns the session's normalized role list, never nil.
func (s *Session) Roles() []Role {
	if s == nil || s.Record == nil {
		return []Role{}
	}
	return s.Record.Roles
}

// HasRole reports whether the session carries the given role.
func (s *Session) HasRole(role Role) bool {
	for _, r := range s.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the session's permission set contains p.
func (s *Session) HasPermission(p Permission) bool {
	if s == nil || s.Permissions == nil {
		return false
	}
	_, ok := s.Permissions[p]
	return ok
}
