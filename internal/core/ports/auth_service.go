package ports

import (
	"context"

	"github.com/opendms/dms-platform/internal/core/authz"
	"github.com/opendms/dms-platform/internal/core/domain"
)

// SignupInput carries everything needed to create an account.
type SignupInput struct {
	Name          string
	Email         string
	Password      string
	Position      string
	Role          string
	DepartmentIDs []int64
	Address       string
	Phone         string
}

// AuthResult is returned after login and after signups that mint a
// token for the new account.
type AuthResult struct {
	Token string
	User  *domain.User
}

// ChangePasswordInput is the self-service password change. OldPassword
// is verified unless the actor is SUPERADMIN.
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

// AuthService covers login, account minting and credential changes.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// RegisterSuperAdmin is the only unauthenticated signup and is
	// permitted solely while zero SUPERADMIN accounts exist.
	RegisterSuperAdmin(ctx context.Context, input SignupInput) (*AuthResult, error)

	// Register mints an account on behalf of a privileged actor. ADMIN
	// callers may mint USER accounts only; SUPERADMIN may mint any role.
	Register(ctx context.Context, actor authz.Principal, input SignupInput) (*AuthResult, error)

	ChangeOwnPassword(ctx context.Context, actor authz.Principal, input ChangePasswordInput) error

	// ResetPassword overwrites another account's password without the
	// old one. SUPERADMIN only.
	ResetPassword(ctx context.Context, actor authz.Principal, userID, newPassword string) error

	UpdateOwnStatus(ctx context.Context, actor authz.Principal, status string) error

	// UserInfo loads the actor's own record (whoami).
	UserInfo(ctx context.Context, actor authz.Principal) (*domain.User, error)
}
