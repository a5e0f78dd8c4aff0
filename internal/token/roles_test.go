package token

import (
	"reflect"
	"testing"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
)

func TestNormalizeRoles_Shapes(t *testing.T) {
	cases := []struct {
		name  string
		claim interface{}
		want  []domain.Role
	}{
		{
			name: "array of objects with nombre",
			claim: []interface{}{
				map[string]interface{}{"nombre": "ROLE_ADMIN"},
				map[string]interface{}{"nombre": "ROLE_RH"},
			},
			want: []domain.Role{domain.RoleAdmin, domain.RoleRH},
		},
		{
			name: "array of objects with authority",
			claim: []interface{}{
				map[string]interface{}{"authority": "ROLE_SUPERVISOR"},
			},
			want: []domain.Role{domain.RoleSupervisor},
		},
		{
			name:  "array of strings",
			claim: []interface{}{"ROLE_RH", "ROLE_SUPERVISOR"},
			want:  []domain.Role{domain.RoleRH, domain.RoleSupervisor},
		},
		{
			name:  "single string",
			claim: "ROLE_CHECKTIME",
			want:  []domain.Role{domain.RoleChecktime},
		},
		{
			name:  "comma separated string",
			claim: "ROLE_ADMIN,ROLE_RH",
			want:  []domain.Role{domain.RoleAdmin, domain.RoleRH},
		},
		{
			name:  "space separated string",
			claim: "ROLE_ADMIN ROLE_RH",
			want:  []domain.Role{domain.RoleAdmin, domain.RoleRH},
		},
		{
			name:  "whitespace around entries",
			claim: " ROLE_ADMIN , ROLE_RH ",
			want:  []domain.Role{domain.RoleAdmin, domain.RoleRH},
		},
		{
			name:  "duplicates collapsed",
			claim: []interface{}{"ROLE_RH", "ROLE_RH"},
			want:  []domain.Role{domain.RoleRH},
		},
		{
			name:  "unrecognized shape",
			claim: 42.0,
			want:  []domain.Role{},
		},
		{
			name:  "empty string",
			claim: "",
			want:  []domain.Role{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeRoles(tc.claim)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("NormalizeRoles(%v) = %v, want %v", tc.claim, got, tc.want)
			}
		})
	}
}

func TestExtractRoles_KeyProbing(t *testing.T) {
	// "roles" wins over later keys even when both are present.
	raw := map[string]interface{}{
		"roles": []interface{}{"ROLE_RH"},
		"scope": "ROLE_ADMIN",
	}
	got := extractRoles(raw)
	if len(got) != 1 || got[0] != domain.RoleRH {
		t.Errorf("extractRoles = %v, want [ROLE_RH]", got)
	}

	// An empty candidate under an earlier key falls through to the next.
	raw = map[string]interface{}{
		"roles":       []interface{}{},
		"authorities": []interface{}{"ROLE_SUPERVISOR"},
	}
	got = extractRoles(raw)
	if len(got) != 1 || got[0] != domain.RoleSupervisor {
		t.Errorf("extractRoles = %v, want [ROLE_SUPERVISOR]", got)
	}

	// No role claim at all yields an empty, non-nil list.
	got = extractRoles(map[string]interface{}{"sub": "u1"})
	if got == nil || len(got) != 0 {
		t.Errorf("extractRoles = %v, want empty list", got)
	}
}
