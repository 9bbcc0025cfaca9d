package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/opendms/dms-platform/internal/core/authz"
	"github.com/opendms/dms-platform/internal/core/domain"
	"github.com/opendms/dms-platform/internal/core/ports"
	"github.com/opendms/dms-platform/internal/core/token"
)

var nopLogger = zerolog.Nop()

func principal(t *testing.T, id string, role domain.Role, deptIDs ...int64) authz.Principal {
	t.Helper()
	p, err := authz.Reconstruct(&token.Claims{
		Role:             role.String(),
		DeptIDs:          deptIDs,
		RegisteredClaims: jwt.RegisteredClaims{Subject: id},
	})
	if err != nil {
		t.Fatalf("reconstruct %s: %v", id, err)
	}
	return p
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(hash)
}

// stubUserRepo is a map-backed credential store for service tests.
type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo(seed ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range seed {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, domain.ErrUserExists
		}
		// Mirrors the store's partial unique index: at most one
		// SUPERADMIN document, enforced at insert time.
		if user.Role == domain.RoleSuperAdmin && existing.Role == domain.RoleSuperAdmin {
			return nil, domain.ErrSuperAdminExists
		}
	}
	r.nextID++
	copied := *user
	copied.ID = fmt.Sprintf("id-%d", r.nextID)
	r.users[copied.ID] = &copied
	return &copied, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return user, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) ExistsByRole(_ context.Context, role domain.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) SetLastLogin(_ context.Context, id string) error {
	return nil
}

func (r *stubUserRepo) AddDepartment(_ context.Context, userID string, deptID int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if !u.InDepartment(deptID) {
		u.DepartmentIDs = append(u.DepartmentIDs, deptID)
	}
	copied := *u
	return &copied, nil
}

func (r *stubUserRepo) RemoveDepartment(_ context.Context, userID string, deptID int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	kept := u.DepartmentIDs[:0]
	for _, id := range u.DepartmentIDs {
		if id != deptID {
			kept = append(kept, id)
		}
	}
	u.DepartmentIDs = kept
	copied := *u
	return &copied, nil
}

func (r *stubUserRepo) RemoveDepartmentFromAll(_ context.Context, deptID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		kept := u.DepartmentIDs[:0]
		for _, id := range u.DepartmentIDs {
			if id != deptID {
				kept = append(kept, id)
			}
		}
		u.DepartmentIDs = kept
	}
	return nil
}

// stubDeptRepo is a map-backed department store.
type stubDeptRepo struct {
	mu     sync.Mutex
	depts  map[int64]*domain.Department
	nextID int64
}

func newStubDeptRepo(seed ...*domain.Department) *stubDeptRepo {
	r := &stubDeptRepo{depts: make(map[int64]*domain.Department)}
	for _, d := range seed {
		r.depts[d.ID] = d
		if d.ID > r.nextID {
			r.nextID = d.ID
		}
	}
	return r
}

func (r *stubDeptRepo) Create(_ context.Context, name string) (*domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.depts {
		if d.Name == name {
			return nil, domain.ErrDepartmentExists
		}
	}
	r.nextID++
	d := &domain.Department{ID: r.nextID, Name: name}
	r.depts[d.ID] = d
	return d, nil
}

func (r *stubDeptRepo) FindByID(_ context.Context, id int64) (*domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.depts[id]
	if !ok {
		return nil, domain.ErrDepartmentNotFound
	}
	return d, nil
}

func (r *stubDeptRepo) List(_ context.Context) ([]*domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Department, 0, len(r.depts))
	for _, d := range r.depts {
		out = append(out, d)
	}
	return out, nil
}

func (r *stubDeptRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.depts[id]; !ok {
		return domain.ErrDepartmentNotFound
	}
	delete(r.depts, id)
	return nil
}

// stubThrottle counts failures in memory with a fixed threshold.
type stubThrottle struct {
	mu       sync.Mutex
	failures map[string]int
	max      int
	err      error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), max: max}
}

func (t *stubThrottle) Blocked(_ context.Context, email string) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[email] >= t.max, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[email]++
	return nil
}

func (t *stubThrottle) Clear(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, email)
	return nil
}

// stubAudit collects entries synchronously.
type stubAudit struct {
	mu      sync.Mutex
	entries []ports.AuditEntry
}

func (a *stubAudit) Record(entry ports.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *stubAudit) last(t *testing.T) ports.AuditEntry {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		t.Fatal("expected at least one audit entry")
	}
	return a.entries[len(a.entries)-1]
}
