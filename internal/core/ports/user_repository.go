package ports

import (
	"context"

	"github.com/opendms/dms-platform/internal/core/domain"
)

// UserRepository is the credential store owned by the issuing service.
type UserRepository interface {
	// Create persists a new user. Returns domain.ErrUserExists when the
	// email is already taken, and domain.ErrSuperAdminExists when the
	// user carries role SUPERADMIN and one already exists. Both are
	// backed by unique indexes, so concurrent signups race on the
	// insert itself and cannot both succeed.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error

	// ExistsByRole reports whether any account holds the given role.
	// Used for the first-superadmin existence check at signup time.
	ExistsByRole(ctx context.Context, role domain.Role) (bool, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetLastLogin(ctx context.Context, id string) error

	AddDepartment(ctx context.Context, userID string, deptID int64) (*domain.User, error)
	RemoveDepartment(ctx context.Context, userID string, deptID int64) (*domain.User, error)
	// RemoveDepartmentFromAll strips a department ID from every user,
	// used when the department itself is deleted.
	RemoveDepartmentFromAll(ctx context.Context, deptID int64) error
}
