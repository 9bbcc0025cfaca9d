package domain

import "fmt"

// Role is the privilege level of a user. Exactly one per user.
type Role string

const (
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

// roleRanks defines the total privilege order. Higher outranks lower.
var roleRanks = map[Role]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// ParseRole converts a claim or request string into a Role.
// Unknown values are rejected rather than defaulted.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRanks[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Rank returns the role's position in the privilege order. Zero for
// unknown roles, so a zero-value Role never outranks anything.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Outranks reports whether r is strictly more privileged than other.
func (r Role) Outranks(other Role) bool {
	return r.Rank() > other.Rank()
}

// Authority returns the prefixed authority string advertised to
// downstream services, e.g. "ROLE_ADMIN". Each role advertises exactly
// one authority; privilege comparisons use Rank, not the string set.
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

func (r Role) String() string {
	return string(r)
}
