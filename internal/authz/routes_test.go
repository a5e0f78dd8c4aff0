package authz

import (
	"testing"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
)

func TestRouteTable_LongestPrefixWins(t *testing.T) {
	table := DefaultRouteTable()

	rule := table.Match("/admin/roles")
	if rule == nil {
		t.Fatal("expected a rule for /admin/roles")
	}
	if len(rule.Permissions) != 1 || rule.Permissions[0] != PermSettingsEdit {
		t.Errorf("/admin/roles matched %+v, want the settings-edit rule", rule)
	}

	rule = table.Match("/admin/other")
	if rule == nil {
		t.Fatal("expected a rule for /admin/other")
	}
	if len(rule.Permissions) != 0 {
		t.Errorf("/admin/other should match the bare /admin rule, got %+v", rule)
	}
}

func TestRouteTable_SegmentBoundaries(t *testing.T) {
	table := DefaultRouteTable()

	if table.Match("/user/42") == nil {
		t.Error("/user/42 should fall under /user")
	}
	if table.Match("/users-export") != nil {
		t.Error("/users-export must not match the /user prefix")
	}
	if table.Match("/profile") != nil {
		t.Error("/profile is not protected")
	}
}

func TestRouteTable_RoleAllowed(t *testing.T) {
	table := DefaultRouteTable()

	userRule := table.Match("/user")
	if userRule.RoleAllowed([]domain.Role{domain.RoleChecktime}) {
		t.Error("CHECKTIME must not enter /user")
	}
	if !userRule.RoleAllowed([]domain.Role{domain.RoleChecktime, domain.RoleRH}) {
		t.Error("any matching role should admit the session")
	}

	open := RouteRule{Prefix: "/anything"}
	if !open.RoleAllowed([]domain.Role{}) {
		t.Error("a rule without roles admits everyone")
	}
}

func TestRouteTable_LandingFor(t *testing.T) {
	table := DefaultRouteTable()

	if got := table.LandingFor([]domain.Role{domain.RoleRH}); got != "/dashboard" {
		t.Errorf("LandingFor(RH) = %q, want /dashboard", got)
	}
	// A session with no web-capable role has nowhere to land.
	if got := table.LandingFor([]domain.Role{"ROLE_MYSTERY"}); got != "/access-denied" {
		t.Errorf("LandingFor(unknown) = %q, want /access-denied", got)
	}
}

func TestRouteTable_PublicOnly(t *testing.T) {
	table := DefaultRouteTable()

	if !table.IsPublicOnly("/login") {
		t.Error("/login is public-only")
	}
	if table.IsPublicOnly("/dashboard") {
		t.Error("/dashboard is not public-only")
	}
}
