package authz

import (
	"sort"
	"strings"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
)

// RouteRule maps a URL path prefix to the roles allowed to enter it and,
// optionally, permissions that must all be present.
type RouteRule struct {
	Prefix      string
	Roles       []domain.Role
	Permissions []domain.Permission
}

// RouteTable holds the console's navigation rules. Matching is prefix-based
// with longest-prefix-wins when several rules cover a path.
type RouteTable struct {
	rules []RouteRule

	LoginPath   string
	LandingPath string
	DeniedPath  string
	BlockedPath string
}

// NewRouteTable builds a table from rules, ordering them so that the most
// specific prefix is tried first.
func NewRouteTable(rules []RouteRule) *RouteTable {
	sorted := make([]RouteRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &RouteTable{
		rules:       sorted,
		LoginPath:   "/login",
		LandingPath: "/dashboard",
		DeniedPath:  "/access-denied",
		BlockedPath: "/blocked",
	}
}

// DefaultRouteTable returns the console's route rules: the dashboard is open
// to every web-capable role, user administration to HR staff, and the admin
// area to administrators only, with the role management screen additionally
// demanding the settings-edit permission.
func DefaultRouteTable() *RouteTable {
	return NewRouteTable([]RouteRule{
		{
			Prefix: "/dashboard",
			Roles:  []domain.Role{domain.RoleAdmin, domain.RoleRH, domain.RoleSupervisor, domain.RoleChecktime},
		},
		{
			Prefix:      "/user",
			Roles:       []domain.Role{domain.RoleAdmin, domain.RoleRH},
			Permissions: []domain.Permission{PermUsersView},
		},
		{
			Prefix:      "/reports",
			Roles:       []domain.Role{domain.RoleAdmin, domain.RoleRH, domain.RoleSupervisor},
			Permissions: []domain.Permission{PermReportsView},
		},
		{
			Prefix: "/admin",
			Roles:  []domain.Role{domain.RoleAdmin},
		},
		{
			Prefix:      "/admin/roles",
			Roles:       []domain.Role{domain.RoleAdmin},
			Permissions: []domain.Permission{PermSettingsEdit},
		},
	})
}

// Match returns the most specific rule covering the path, or nil when the
// path is not protected.
func (t *RouteTable) Match(path string) *RouteRule {
	for i := range t.rules {
		if matchPrefix(path, t.rules[i].Prefix) {
			return &t.rules[i]
		}
	}
	return nil
}

// IsProtected reports whether the path falls under any protected prefix.
func (t *RouteTable) IsProtected(path string) bool {
	return t.Match(path) != nil
}

// IsPublicOnly reports whether the path is reserved for unauthenticated
// visitors (the login screen).
func (t *RouteTable) IsPublicOnly(path string) bool {
	return matchPrefix(path, t.LoginPath)
}

// RoleAllowed reports whether any of the roles satisfies the rule's role
// list. A rule without roles admits every authenticated session.
func (r *RouteRule) RoleAllowed(roles []domain.Role) bool {
	if len(r.Roles) == 0 {
		return true
	}
	for _, have := range roles {
		for _, want := range r.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// matchPrefix matches on path-segment boundaries so that /user does not
// capture /users-export.
func matchPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// LandingFor returns the path an authenticated, role-permitted session is
// sent to from public-only pages.
func (t *RouteTable) LandingFor(roles []domain.Role) string {
	if rule := t.Match(t.LandingPath); rule != nil && !rule.RoleAllowed(roles) {
		return t.DeniedPath
	}
	return t.LandingPath
}
