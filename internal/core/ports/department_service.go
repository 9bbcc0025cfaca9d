package ports

import (
	"context"

	"github.com/opendms/dms-platform/internal/core/authz"
	"github.com/opendms/dms-platform/internal/core/domain"
)

// DepartmentService covers department lifecycle and membership edges.
type DepartmentService interface {
	Create(ctx context.Context, actor authz.Principal, name string) (*domain.Department, error)
	Delete(ctx context.Context, actor authz.Principal, deptID int64) error
	List(ctx context.Context, actor authz.Principal) ([]*domain.Department, error)

	Assign(ctx context.Context, actor authz.Principal, userID string, deptID int64) (*domain.User, error)
	Unassign(ctx context.Context, actor authz.Principal, userID string, deptID int64) (*domain.User, error)
}
