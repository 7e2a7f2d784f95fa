// Package models holds the data types exchanged with the Command Center
// backend: the authenticated identity plus the admin-domain DTOs the console
// operates on. Field tags follow the backend's snake_case JSON.
package models

import "fmt"

// Role is an administrative permission level. Roles form a total order:
// VIEWER < EDITOR < SUPERADMIN; a higher role subsumes every lower one.
type Role string

const (
	RoleViewer     Role = "VIEWER"
	RoleEditor     Role = "EDITOR"
	RoleSuperadmin Role = "SUPERADMIN"
)

var roleRank = map[Role]int{
	RoleViewer:     1,
	RoleEditor:     2,
	RoleSuperadmin: 3,
}

// Rank returns the role's position in the hierarchy, 0 for unknown roles.
func (r Role) Rank() int {
	return roleRank[r]
}

// AtLeast reports whether r is at least as privileged as required.
// Unknown roles rank below everything.
func (r Role) AtLeast(required Role) bool {
	return roleRank[r] >= roleRank[required] && roleRank[r] > 0
}

// ParseRole validates a role string coming from user input.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Identity is the authenticated admin profile returned by GET /auth/me.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Email    string `json:"email"`
}
