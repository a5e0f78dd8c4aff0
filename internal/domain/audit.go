package domain

import "time"

// AccessState classifies the gatekeeper's view of one navigation.
type AccessState string

const (
	AccessPublicUnauthenticated AccessState = "public_unauthenticated"
	AccessPublicAuthenticated   AccessState = "public_authenticated"
	AccessNoToken               AccessState = "protected_no_token"
	AccessUnauthorizedRole      AccessState = "protected_unauthorized_role"
	AccessAuthorized            AccessState = "protected_authorized"
	AccessWebBlocked            AccessState = "web_access_blocked"
)

// AuditEntry records one gatekeeper decision for the authorization audit log.
type AuditEntry struct {
	ID         string
	OccurredAt time.Time
	Subject    string
	Path       string
	Roles      []Role
	State      AccessState
	RedirectTo string
	RequestID  string
}
