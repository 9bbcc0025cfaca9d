package ports

import (
	"context"

	"github.com/opendms/dms-platform/internal/core/domain"
)

// DepartmentRepository persists departments. IDs are numeric and
// allocated by the store so they can travel in token claims compactly.
type DepartmentRepository interface {
	// Create persists a department with a freshly allocated ID. Returns
	// domain.ErrDepartmentExists when the name is taken.
	Create(ctx context.Context, name string) (*domain.Department, error)
	FindByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]*domain.Department, error)
	Delete(ctx context.Context, id int64) error
}
