package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/opendms/dms-platform/internal/core/authz"
	"github.com/opendms/dms-platform/internal/core/domain"
	"github.com/opendms/dms-platform/internal/core/ports"
)

// DepartmentService implements department lifecycle and membership
// edges. Membership lives on the user documents, so deleting a
// department strips the edge from every member without touching the
// accounts themselves.
type DepartmentService struct {
	depts  ports.DepartmentRepository
	users  ports.UserRepository
	audit  ports.AuditRecorder
	logger zerolog.Logger
	now    func() time.Time
}

func NewDepartmentService(depts ports.DepartmentRepository, users ports.UserRepository, audit ports.AuditRecorder, logger zerolog.Logger) *DepartmentService {
	return &DepartmentService{
		depts:  depts,
		users:  users,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create adds a department and assigns the creator to it, so the
// creating SUPERADMIN immediately shares scope with it.
func (s *DepartmentService) Create(ctx context.Context, actor authz.Principal, name string) (*domain.Department, error) {
	if err := authorize(s.audit, actor, authz.ActionDepartmentCreate, "", authz.NoTarget); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidDepartment
	}

	dept, err := s.depts.Create(ctx, name)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.AddDepartment(ctx, actor.UserID, dept.ID); err != nil {
		s.logger.Warn().Err(err).Int64("dept_id", dept.ID).Msg("failed to assign creator to new department")
	}

	s.logger.Info().Int64("dept_id", dept.ID).Str("name", dept.Name).Str("created_by", actor.UserID).Msg("department created")
	return dept, nil
}

// Delete removes a department and the membership edge from every user.
// Users are never cascaded.
func (s *DepartmentService) Delete(ctx context.Context, actor authz.Principal, deptID int64) error {
	if _, err := s.depts.FindByID(ctx, deptID); err != nil {
		return err
	}

	if err := authorize(s.audit, actor, authz.ActionDepartmentDelete, "", authz.NoTarget); err != nil {
		return err
	}

	if err := s.users.RemoveDepartmentFromAll(ctx, deptID); err != nil {
		return err
	}
	if err := s.depts.Delete(ctx, deptID); err != nil {
		return err
	}

	s.logger.Info().Int64("dept_id", deptID).Str("deleted_by", actor.UserID).Msg("department deleted")
	return nil
}

func (s *DepartmentService) List(ctx context.Context, actor authz.Principal) ([]*domain.Department, error) {
	if err := authorize(s.audit, actor, authz.ActionDepartmentList, "", authz.NoTarget); err != nil {
		return nil, err
	}
	return s.depts.List(ctx)
}

// Assign adds a membership edge. Creating the link carries no shared
// department requirement; the matrix only restricts ADMIN actors to
// USER-role targets.
func (s *DepartmentService) Assign(ctx context.Context, actor authz.Principal, userID string, deptID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.depts.FindByID(ctx, deptID); err != nil {
		return nil, err
	}

	if err := authorize(s.audit, actor, authz.ActionDepartmentAssign, user.ID, authz.TargetUser(actor, user)); err != nil {
		return nil, err
	}

	return s.users.AddDepartment(ctx, user.ID, deptID)
}

// Unassign removes a membership edge. Department-scoped: an ADMIN
// must share at least one department with the target.
func (s *DepartmentService) Unassign(ctx context.Context, actor authz.Principal, userID string, deptID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.depts.FindByID(ctx, deptID); err != nil {
		return nil, err
	}

	if err := authorize(s.audit, actor, authz.ActionDepartmentUnassign, user.ID, authz.TargetUser(actor, user)); err != nil {
		return nil, err
	}

	return s.users.RemoveDepartment(ctx, user.ID, deptID)
}
