package authz

// Action tags every operation the permission matrix can decide. The
// traits table below replaces the per-route matcher lists the platform
// services used to scatter: each rule is data, independently testable.
type Action string

const (
	ActionUserCreate Action = "user:create"
	ActionUserRead   Action = "user:read"
	ActionUserList   Action = "user:list"
	ActionUserUpdate Action = "user:update"
	ActionUserDelete Action = "user:delete"

	// ActionPasswordChange is the self-service change with old-password
	// proof; ActionPasswordReset overwrites another account's password.
	ActionPasswordChange Action = "password:change"
	ActionPasswordReset  Action = "password:reset"

	ActionStatusUpdate Action = "status:update"

	ActionDepartmentCreate   Action = "department:create"
	ActionDepartmentDelete   Action = "department:delete"
	ActionDepartmentAssign   Action = "department:assign"
	ActionDepartmentUnassign Action = "department:unassign"
	ActionDepartmentList     Action = "department:list"
)

type actionTraits struct {
	// adminAllowed: an ADMIN may perform this on USER-role targets.
	adminAllowed bool
	// deptScoped: an ADMIN additionally needs a shared department with
	// the target. Intersection, not containment.
	deptScoped bool
	// selfService: any authenticated principal may perform this on its
	// own account.
	selfService bool
	// superOnly: reserved to SUPERADMIN outright.
	superOnly bool
}

var actionTable = map[Action]actionTraits{
	ActionUserCreate: {adminAllowed: true},
	ActionUserRead:   {adminAllowed: true, selfService: true},
	ActionUserList:   {adminAllowed: true},
	ActionUserUpdate: {adminAllowed: true, deptScoped: true, selfService: true},
	ActionUserDelete: {adminAllowed: true, deptScoped: true},

	ActionPasswordChange: {selfService: true},
	ActionPasswordReset:  {superOnly: true},

	ActionStatusUpdate: {selfService: true},

	ActionDepartmentCreate: {superOnly: true},
	ActionDepartmentDelete: {superOnly: true},
	// Assigning creates a membership edge and carries no shared
	// department requirement; unassigning is department-scoped.
	ActionDepartmentAssign:   {adminAllowed: true},
	ActionDepartmentUnassign: {adminAllowed: true, deptScoped: true},
	ActionDepartmentList:     {adminAllowed: true},
}
