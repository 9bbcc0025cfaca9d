package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/opendms/dms-platform/internal/core/authz"
	"github.com/opendms/dms-platform/internal/core/domain"
	"github.com/opendms/dms-platform/internal/core/ports"
)

// UserService implements administrative user management. Targets are
// loaded first so the matrix receives their role and department facts.
type UserService struct {
	users  ports.UserRepository
	audit  ports.AuditRecorder
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(users ports.UserRepository, audit ports.AuditRecorder, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) Get(ctx context.Context, actor authz.Principal, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.audit, actor, authz.ActionUserRead, user.ID, authz.TargetUser(actor, user)); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, actor authz.Principal) ([]*domain.User, error) {
	if err := authorize(s.audit, actor, authz.ActionUserList, "", authz.NoTarget); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Update applies partial profile changes. ADMIN actors reach USER-role
// targets only, and only when a department is shared.
func (s *UserService) Update(ctx context.Context, actor authz.Principal, userID string, input ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := authorize(s.audit, actor, authz.ActionUserUpdate, user.ID, authz.TargetUser(actor, user)); err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Position != nil {
		user.Position = *input.Position
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	user.UpdatedAt = s.now()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("updated_by", actor.UserID).Msg("user updated")
	return updated, nil
}

// Delete removes an account. SUPERADMIN targets are refused outright:
// the system guarantees at least one SUPERADMIN by never deleting one,
// not by counting survivors.
func (s *UserService) Delete(ctx context.Context, actor authz.Principal, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.Role == domain.RoleSuperAdmin {
		return domain.ErrSuperAdminImmortal
	}

	if err := authorize(s.audit, actor, authz.ActionUserDelete, user.ID, authz.TargetUser(actor, user)); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Str("deleted_by", actor.UserID).Msg("user deleted")
	return nil
}
