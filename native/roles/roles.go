package roles

import (
	"fmt"
	"strings"
)

// Role identifies the single privilege level held by a principal. A principal
// holds at most one role at a time; granting a new role displaces the old one.
type Role uint8

const (
	RoleSuperAdmin Role = iota + 1
	RoleAdmin
	RoleProjectManager
	RoleOracle
	RoleAuditor
)

// Rank returns the privilege ordering used by the access gate. SuperAdmin
// outranks Admin, which outranks the three operational roles; those three are
// mutually non-privileged over each other.
func (r Role) Rank() uint8 {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleProjectManager, RoleOracle, RoleAuditor:
		return 1
	default:
		return 0
	}
}

// Valid reports whether the role value is within the supported range.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// String renders the canonical role name.
func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return "super_admin"
	case RoleAdmin:
		return "admin"
	case RoleProjectManager:
		return "project_manager"
	case RoleOracle:
		return "oracle"
	case RoleAuditor:
		return "auditor"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// ParseRole maps a canonical role name (as used in genesis documents) back to
// its Role value.
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "super_admin":
		return RoleSuperAdmin, nil
	case "admin":
		return RoleAdmin, nil
	case "project_manager":
		return RoleProjectManager, nil
	case "oracle":
		return RoleOracle, nil
	case "auditor":
		return RoleAuditor, nil
	default:
		return 0, fmt.Errorf("roles: unknown role %q", name)
	}
}
