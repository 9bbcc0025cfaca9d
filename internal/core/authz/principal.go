// Package authz reconstructs principals from verified token claims and
// decides the permission matrix. Everything here is pure computation:
// no I/O, no shared state, safe for unlimited concurrent use.
package authz

import (
	"sort"

	"github.com/opendms/dms-platform/internal/core/domain"
	"github.com/opendms/dms-platform/internal/core/token"
)

// Principal is the request-scoped reconstruction of a caller. It lives
// for one request only and holds a weak reference to the user record
// (the ID string); it is never persisted and never re-checked against
// the credential store until the next login.
type Principal struct {
	UserID        string
	Role          domain.Role
	Authenticated bool

	deptIDs map[int64]struct{}
}

// Anonymous returns the unauthenticated principal installed on public
// routes when no token is presented.
func Anonymous() Principal {
	return Principal{}
}

// Reconstruct rebuilds a Principal from verified claims. It must only
// be called with claims that passed token.Codec.Verify; the returned
// principal is authenticated by construction.
func Reconstruct(claims *token.Claims) (Principal, error) {
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return Principal{}, err
	}

	depts := make(map[int64]struct{}, len(claims.DeptIDs))
	for _, id := range claims.DeptIDs {
		depts[id] = struct{}{}
	}

	return Principal{
		UserID:        claims.Subject,
		Role:          role,
		Authenticated: true,
		deptIDs:       depts,
	}, nil
}

// DeptIDs returns the principal's department memberships, sorted.
// The returned slice is a copy; the principal's set is immutable.
func (p Principal) DeptIDs() []int64 {
	out := make([]int64, 0, len(p.deptIDs))
	for id := range p.deptIDs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InDepartment reports membership in a single department.
func (p Principal) InDepartment(id int64) bool {
	_, ok := p.deptIDs[id]
	return ok
}

// SharesDepartment reports whether the principal's department set
// intersects the given set. Any single shared department suffices;
// containment is deliberately not required.
func (p Principal) SharesDepartment(ids []int64) bool {
	for _, id := range ids {
		if _, ok := p.deptIDs[id]; ok {
			return true
		}
	}
	return false
}

// Authorities returns the prefixed authority strings advertised for
// route-level gating. One entry per role, no inheritance: an ADMIN does
// not carry ROLE_USER. Rank comparisons handle privilege ordering.
func (p Principal) Authorities() []string {
	if !p.Authenticated {
		return nil
	}
	return []string{p.Role.Authority()}
}

// IsSelf reports whether the given user ID is the principal's own.
func (p Principal) IsSelf(userID string) bool {
	return p.Authenticated && userID != "" && p.UserID == userID
}
