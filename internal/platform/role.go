package platform

import (
	"fmt"
	"strings"
)

// Role is an audio endpoint role. A device can be the default for each role
// independently; values match the Core Audio ERole enumeration.
type Role int

const (
	RoleConsole        Role = 0
	RoleMultimedia     Role = 1
	RoleCommunications Role = 2
)

// DefaultRoles are the roles set when switching devices.
var DefaultRoles = []Role{RoleConsole, RoleMultimedia}

// String returns the config name of the role.
func (r Role) String() string {
	switch r {
	case RoleConsole:
		return "console"
	case RoleMultimedia:
		return "multimedia"
	case RoleCommunications:
		return "communications"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole parses a role name as used in the config file.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "console":
		return RoleConsole, nil
	case "multimedia":
		return RoleMultimedia, nil
	case "communications":
		return RoleCommunications, nil
	default:
		return 0, fmt.Errorf("unknown audio role %q (expected console, multimedia, or communications)", s)
	}
}

// ParseRoles parses a list of role names, dropping duplicates.
// An empty list yields DefaultRoles.
func ParseRoles(names []string) ([]Role, error) {
	if len(names) == 0 {
		return append([]Role(nil), DefaultRoles...), nil
	}

	seen := make(map[Role]bool, len(names))
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		r, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		roles = append(roles, r)
	}
	return roles, nil
}
