package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/opendms/dms-platform/internal/core/authz"
	"github.com/opendms/dms-platform/internal/core/domain"
	"github.com/opendms/dms-platform/internal/core/ports"
	"github.com/opendms/dms-platform/internal/core/token"
)

// AuthService implements login, account minting and credential changes.
type AuthService struct {
	users    ports.UserRepository
	depts    ports.DepartmentRepository
	codec    *token.Codec
	throttle ports.LoginThrottle
	audit    ports.AuditRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users ports.UserRepository, depts ports.DepartmentRepository, codec *token.Codec, throttle ports.LoginThrottle, audit ports.AuditRecorder, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		depts:    depts,
		codec:    codec,
		throttle: throttle,
		audit:    audit,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login verifies credentials and mints a token carrying the user's
// role and department claims. The claims are fixed at this point:
// later role or membership changes are not reflected until the token
// expires and the user logs in again.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		blocked, err := s.throttle.Blocked(ctx, email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login throttle unavailable, failing open")
		} else if blocked {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if s.throttle != nil {
			if terr := s.throttle.RecordFailure(ctx, email); terr != nil {
				s.logger.Warn().Err(terr).Msg("failed to record login failure")
			}
		}
		s.recordLogin(user.ID, false, "bad password")
		return nil, domain.ErrInvalidCredentials
	}

	signed, err := s.codec.Mint(user.ID, user.Role, user.DepartmentIDs, s.now())
	if err != nil {
		return nil, err
	}

	if s.throttle != nil {
		if terr := s.throttle.Clear(ctx, email); terr != nil {
			s.logger.Warn().Err(terr).Msg("failed to clear login throttle")
		}
	}
	if err := s.users.SetLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}

	s.recordLogin(user.ID, true, "ok")
	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("login")

	return &ports.AuthResult{Token: signed, User: user}, nil
}

// RegisterSuperAdmin creates the first SUPERADMIN without prior
// authentication. Once one exists every further call is refused, no
// matter who asks; additional privileged accounts are minted through
// Register by an authenticated SUPERADMIN. The ExistsByRole check is
// a fast path only: the store's partial unique index is what holds
// the invariant when two first-signups race past the check.
func (s *AuthService) RegisterSuperAdmin(ctx context.Context, input ports.SignupInput) (*ports.AuthResult, error) {
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return nil, domain.ErrInvalidCredentials
	}

	exists, err := s.users.ExistsByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrSuperAdminExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	position := input.Position
	if position == "" {
		position = "System Owner"
	}

	now := s.now()
	user := &domain.User{
		Name:          input.Name,
		Email:         input.Email,
		PasswordHash:  string(hash),
		Position:      position,
		Role:          domain.RoleSuperAdmin,
		DepartmentIDs: []int64{},
		Status:        domain.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	signed, err := s.codec.Mint(created.ID, created.Role, created.DepartmentIDs, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Msg("first superadmin registered")
	return &ports.AuthResult{Token: signed, User: created}, nil
}

// Register mints an account on behalf of an authenticated privileged
// actor. The matrix refuses ADMIN actors minting anything but USER.
func (s *AuthService) Register(ctx context.Context, actor authz.Principal, input ports.SignupInput) (*ports.AuthResult, error) {
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return nil, domain.ErrInvalidCredentials
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	if err := authorize(s.audit, actor, authz.ActionUserCreate, input.Email, authz.Target{Role: role}); err != nil {
		return nil, err
	}

	deptIDs := make([]int64, 0, len(input.DepartmentIDs))
	for _, id := range input.DepartmentIDs {
		if _, err := s.depts.FindByID(ctx, id); err != nil {
			return nil, err
		}
		deptIDs = append(deptIDs, id)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		Name:          input.Name,
		Email:         input.Email,
		PasswordHash:  string(hash),
		Position:      input.Position,
		Role:          role,
		DepartmentIDs: deptIDs,
		Address:       input.Address,
		Phone:         input.Phone,
		Status:        domain.StatusInactive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	signed, err := s.codec.Mint(created.ID, created.Role, created.DepartmentIDs, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", created.ID).
		Str("role", created.Role.String()).
		Str("created_by", actor.UserID).
		Msg("account created")

	return &ports.AuthResult{Token: signed, User: created}, nil
}

// ChangeOwnPassword changes the actor's own password. Non-SUPERADMIN
// actors must prove knowledge of the old one.
func (s *AuthService) ChangeOwnPassword(ctx context.Context, actor authz.Principal, input ports.ChangePasswordInput) error {
	if input.NewPassword == "" {
		return domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return err
	}

	if err := authorize(s.audit, actor, authz.ActionPasswordChange, user.ID, authz.TargetUser(actor, user)); err != nil {
		return err
	}

	if actor.Role != domain.RoleSuperAdmin {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)) != nil {
			return domain.ErrInvalidCredentials
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

// ResetPassword overwrites another account's password. The matrix
// restricts this to SUPERADMIN actors.
func (s *AuthService) ResetPassword(ctx context.Context, actor authz.Principal, userID, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := authorize(s.audit, actor, authz.ActionPasswordReset, user.ID, authz.TargetUser(actor, user)); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Str("reset_by", actor.UserID).Msg("password reset")
	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

// UpdateOwnStatus toggles the actor's account between active and inactive.
func (s *AuthService) UpdateOwnStatus(ctx context.Context, actor authz.Principal, status string) error {
	if status != domain.StatusActive && status != domain.StatusInactive {
		return domain.ErrInvalidStatus
	}

	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return err
	}

	if err := authorize(s.audit, actor, authz.ActionStatusUpdate, user.ID, authz.TargetUser(actor, user)); err != nil {
		return err
	}

	user.Status = status
	user.UpdatedAt = s.now()
	_, err = s.users.Update(ctx, user)
	return err
}

// UserInfo loads the actor's own record.
func (s *AuthService) UserInfo(ctx context.Context, actor authz.Principal) (*domain.User, error) {
	return s.users.FindByID(ctx, actor.UserID)
}

func (s *AuthService) recordLogin(userID string, ok bool, reason string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ports.AuditEntry{
		SubjectID: userID,
		Action:    "auth:login",
		Allowed:   ok,
		Reason:    reason,
		Timestamp: s.now(),
	})
}
