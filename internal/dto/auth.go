// Package dto defines the request and response shapes of the console API.
package dto

import "github.com/DesarrolloRWD/adp-rh-console/internal/domain"

// LoginRequest carries the credentials forwarded to the attendance backend.
// Field names follow the backend's own contract.
type LoginRequest struct {
	Usuario     string `json:"usuario" binding:"required"`
	Pswd        string `json:"pswd" binding:"required"`
	CallbackURL string `json:"callbackUrl"`
}

// LoginResponse is returned after a successful login. RedirectTo is where the
// browser should navigate next.
type LoginResponse struct {
	User       SessionUser `json:"user"`
	RedirectTo string      `json:"redirectTo"`
}

// SessionUser is the sanitized identity exposed to the browser.
type SessionUser struct {
	Subject     string   `json:"subject"`
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	ExpiresAt   int64    `json:"expiresAt"`
}

// NewSessionUser maps a session onto the browser-facing shape.
func NewSessionUser(sess *domain.Session) SessionUser {
	roles := make([]string, 0, len(sess.Roles()))
	for _, r := range sess.Roles() {
		roles = append(roles, string(r))
	}
	perms := make([]string, 0, len(sess.Permissions))
	for p := range sess.Permissions {
		perms = append(perms, string(p))
	}

	user := SessionUser{Roles: roles, Permissions: perms}
	if sess.Record != nil {
		user.Subject = sess.Record.Subject
		user.Name = sess.Record.Name
		user.Email = sess.Record.Email
		user.ExpiresAt = sess.Record.ExpiresAt
	}
	return user
}
