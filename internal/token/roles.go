package token

import (
	"strings"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
)

// roleClaimKeys lists the payload keys that may carry the role claim,
// probed in order. The backend has issued tokens under several of these.
var roleClaimKeys = []string{"roles", "role", "authorities", "scope", "permissions"}

// extractRoles locates the role claim under any of the known keys and
// normalizes it. The first key that yields at least one role wins.
func extractRoles(raw map[string]interface{}) []domain.Role {
	for _, key := range roleClaimKeys {
		if v, ok := raw[key]; ok {
			if roles := NormalizeRoles(v); len(roles) > 0 {
				return roles
			}
		}
	}
	return []domain.Role{}
}

// NormalizeRoles converts the role claim into a flat role list. The claim
// shape has never been contractually fixed; observed issuances carry an
// array of objects with a "nombre" (or "authority") field, an array of
// strings, or a single string that may pack several roles separated by
// commas or whitespace. Unrecognized shapes yield an empty list.
func NormalizeRoles(v interface{}) []domain.Role {
	var out []domain.Role

	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			switch e := item.(type) {
			case string:
				out = appendRole(out, e)
			case map[string]interface{}:
				if name, ok := e["nombre"].(string); ok {
					out = appendRole(out, name)
				} else if name, ok := e["authority"].(string); ok {
					out = appendRole(out, name)
				}
			}
		}
	case string:
		for _, part := range strings.FieldsFunc(t, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}) {
			out = appendRole(out, part)
		}
	case map[string]interface{}:
		for _, value := range t {
			if s, ok := value.(string); ok {
				out = appendRole(out, s)
			}
		}
	}

	if out == nil {
		return []domain.Role{}
	}
	return out
}

func appendRole(roles []domain.Role, raw string) []domain.Role {
	name := strings.TrimSpace(raw)
	if name == "" {
		return roles
	}
	role := domain.Role(name)
	for _, existing := range roles {
		if existing == role {
			return roles
		}
	}
	return append(roles, role)
}
