package ports

import (
	"context"

	"github.com/opendms/dms-platform/internal/core/authz"
	"github.com/opendms/dms-platform/internal/core/domain"
)

// UpdateUserInput holds optional profile updates; nil fields are left
// untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Position *string
	Address  *string
	Phone    *string
}

// UserService covers administrative user management. Every operation
// loads the target first, then consults the permission matrix with the
// target facts.
type UserService interface {
	Get(ctx context.Context, actor authz.Principal, userID string) (*domain.User, error)
	List(ctx context.Context, actor authz.Principal) ([]*domain.User, error)
	Update(ctx context.Context, actor authz.Principal, userID string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor authz.Principal, userID string) error
}
