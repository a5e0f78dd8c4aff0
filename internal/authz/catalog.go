// Package authz holds the permission catalog and the route rules the
// gatekeeper enforces.
package authz

import (
	"sync"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
)

// Permissions, grouped by functional domain. Every permission belongs to
// exactly one domain.
const (
	PermUsersView         domain.Permission = "users:view"
	PermUsersCreate       domain.Permission = "users:create"
	PermUsersEdit         domain.Permission = "users:edit"
	PermUsersDelete       domain.Permission = "users:delete"
	PermUsersManageStatus domain.Permission = "users:manage-status"
	PermUsersViewAdmins   domain.Permission = "users:view-admins"

	PermAttendanceView        domain.Permission = "attendance:view"
	PermAttendanceViewDetails domain.Permission = "attendance:view-details"
	PermAttendanceExport      domain.Permission = "attendance:export"
	PermAttendanceEdit        domain.Permission = "attendance:edit"

	PermSettingsView domain.Permission = "settings:view"
	PermSettingsEdit domain.Permission = "settings:edit"

	PermReportsView     domain.Permission = "reports:view"
	PermReportsGenerate domain.Permission = "reports:generate"

	PermSystemLogin       domain.Permission = "system:login"
	PermSystemAccess      domain.Permission = "system:access"
	PermSystemWebLogin    domain.Permission = "system:web-login"
	PermSystemMobileLogin domain.Permission = "system:mobile-login"
)

// defaultRolePermissions is the hardcoded catalog. View-type permissions
// follow a strict hierarchy (ADMIN ⊇ RH ⊇ SUPERVISOR ⊇ CHECKTIME);
// destructive and administrative permissions, including the web/mobile
// login channel grants, belong to ADMIN alone. ROLE_BLOCKED maps to the
// empty set: such accounts cannot do anything.
func defaultRolePermissions() map[domain.Role][]domain.Permission {
	return map[domain.Role][]domain.Permission{
		domain.RoleAdmin: {
			PermSystemLogin, PermSystemAccess, PermSystemWebLogin, PermSystemMobileLogin,
			PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete,
			PermUsersManageStatus, PermUsersViewAdmins,
			PermAttendanceView, PermAttendanceViewDetails, PermAttendanceExport, PermAttendanceEdit,
			PermSettingsView, PermSettingsEdit,
			PermReportsView, PermReportsGenerate,
		},
		domain.RoleRH: {
			PermSystemLogin, PermSystemAccess,
			PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersManageStatus,
			PermAttendanceView, PermAttendanceViewDetails, PermAttendanceExport, PermAttendanceEdit,
			PermSettingsView,
			PermReportsView, PermReportsGenerate,
		},
		domain.RoleSupervisor: {
			PermSystemLogin, PermSystemAccess,
			PermUsersView,
			PermAttendanceView, PermAttendanceViewDetails,
			PermReportsView,
		},
		domain.RoleChecktime: {
			PermSystemLogin, PermSystemAccess,
			PermAttendanceView,
		},
		domain.RoleBlocked: {},
	}
}

// Catalog maps roles to permission sets. The hardcoded defaults can be
// replaced per role-entry by a persisted override table edited by
// administrators; an override entry replaces the default for that role, it
// does not merge with it.
type Catalog struct {
	mu    sync.RWMutex
	table map[domain.Role]map[domain.Permission]struct{}
}

// NewCatalog returns a catalog populated with the hardcoded defaults.
func NewCatalog() *Catalog {
	c := &Catalog{table: make(map[domain.Role]map[domain.Permission]struct{})}
	for role, perms := range defaultRolePermissions() {
		c.table[role] = toSet(perms)
	}
	return c
}

// ApplyOverride replaces catalog entries with the persisted override table.
// Only structural shape is validated; the caller is trusted to have loaded
// the table from the admin-edited store.
func (c *Catalog) ApplyOverride(override map[domain.Role][]domain.Permission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for role, perms := range override {
		c.table[role] = toSet(perms)
	}
}

// PermissionsFor unions the permission sets of every role present in the
// catalog. Roles absent from the catalog contribute nothing.
func (c *Catalog) PermissionsFor(roles []domain.Role) map[domain.Permission]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	union := make(map[domain.Permission]struct{})
	for _, role := range roles {
		for perm := range c.table[role] {
			union[perm] = struct{}{}
		}
	}
	return union
}

// HasPermission reports whether at least one of the roles carries the
// permission.
func (c *Catalog) HasPermission(roles []domain.Role, permission domain.Permission) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, role := range roles {
		if _, ok := c.table[role][permission]; ok {
			return true
		}
	}
	return false
}

// Entries returns a copy of the current role→permissions table, with
// permissions in unspecified order.
func (c *Catalog) Entries() map[domain.Role][]domain.Permission {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[domain.Role][]domain.Permission, len(c.table))
	for role, set := range c.table {
		perms := make([]domain.Permission, 0, len(set))
		for perm := range set {
			perms = append(perms, perm)
		}
		out[role] = perms
	}
	return out
}

func toSet(perms []domain.Permission) map[domain.Permission]struct{} {
	set := make(map[domain.Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}
