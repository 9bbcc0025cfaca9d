package domain

import "errors"

// Authentication failures. All of these surface to clients as the same
// generic 401 so that error shape cannot be used to probe accounts.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// Authorization and invariant failures.
var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrSuperAdminExists   = errors.New("SuperAdmin already exists")
	ErrSuperAdminImmortal = errors.New("a SUPERADMIN account cannot be deleted")
	ErrUnknownRole        = errors.New("unknown role")
	ErrInvalidStatus      = errors.New("invalid status value")
)

// Lookup failures.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentExists   = errors.New("department already exists")
	ErrInvalidDepartment  = errors.New("invalid department name")
)
