package authz

import "github.com/opendms/dms-platform/internal/core/domain"

// Decision is the transient outcome of one matrix evaluation. It is a
// value, never an error: only the transport edge turns a deny into a
// protocol rejection. Reasons are safe to show to authenticated
// callers; they never enumerate other users' roles or departments.
type Decision struct {
	Allow  bool
	Reason string
}

func allow(reason string) Decision { return Decision{Allow: true, Reason: reason} }
func deny(reason string) Decision  { return Decision{Allow: false, Reason: reason} }

// Target carries the facts about the entity an action operates on.
// They are only known once business logic has loaded the target, which
// is why the matrix is invoked from inside services rather than from
// the middleware gate.
type Target struct {
	// Role of the target user; empty when the action has no user target
	// (department create/delete, listings).
	Role domain.Role
	// DeptIDs is the target's department membership set.
	DeptIDs []int64
	// IsSelf marks the target as the actor's own account.
	IsSelf bool
}

// NoTarget is the Target for actions without a target user.
var NoTarget = Target{}

// TargetUser builds a Target from a loaded user record.
func TargetUser(actor Principal, u *domain.User) Target {
	return Target{
		Role:    u.Role,
		DeptIDs: u.DepartmentIDs,
		IsSelf:  actor.IsSelf(u.ID),
	}
}

// Evaluate decides the permission matrix. Pure and idempotent: the same
// inputs always produce the same decision, so services may call it as
// many times per request as they need.
//
// Rules are evaluated top-down, first match wins:
//
//  1. Unauthenticated actors are denied everything.
//  2. Hard invariants, rank-independent: a SUPERADMIN target can never
//     be deleted; an ADMIN target is deleted by SUPERADMIN only.
//  3. SUPERADMIN is allowed everything else.
//  4. Self-service actions are allowed on the actor's own account.
//  5. ADMIN may perform admin-capable actions on USER-role targets,
//     with department intersection where the action is scoped. ADMIN
//     never acts on ADMIN or SUPERADMIN targets and never mints
//     privileged accounts.
//  6. Default deny.
func Evaluate(actor Principal, action Action, target Target) Decision {
	traits, known := actionTable[action]
	if !known {
		return deny("unknown action")
	}

	if !actor.Authenticated {
		return deny("authentication required")
	}

	if action == ActionUserDelete {
		if target.Role == domain.RoleSuperAdmin {
			return deny("a SUPERADMIN account cannot be deleted")
		}
		if target.Role == domain.RoleAdmin && actor.Role != domain.RoleSuperAdmin {
			return deny("only a SUPERADMIN may delete an ADMIN")
		}
	}

	if actor.Role == domain.RoleSuperAdmin {
		return allow("superadmin")
	}

	if traits.selfService && target.IsSelf {
		return allow("own account")
	}

	if traits.superOnly {
		return deny("requires SUPERADMIN")
	}

	if actor.Role == domain.RoleAdmin && traits.adminAllowed {
		if target.Role != "" && target.Role != domain.RoleUser {
			return deny("admins may only act on regular users")
		}
		if traits.deptScoped && !actor.SharesDepartment(target.DeptIDs) {
			return deny("no shared department with target")
		}
		return allow("admin on user target")
	}

	return deny("insufficient privileges")
}
