package authz

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opendms/dms-platform/internal/core/token"
)

func claimsFor(subject, role string, deptIDs ...int64) *token.Claims {
	return &token.Claims{
		Role:             role,
		DeptIDs:          deptIDs,
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}
}

func TestReconstruct(t *testing.T) {
	p, err := Reconstruct(claimsFor("user-1", "ADMIN", 3, 1, 3, 2))
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if !p.Authenticated {
		t.Fatal("expected authenticated principal")
	}
	if p.UserID != "user-1" {
		t.Fatalf("unexpected user id %q", p.UserID)
	}

	got := p.DeptIDs()
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestReconstruct_UnknownRole(t *testing.T) {
	if _, err := Reconstruct(claimsFor("user-1", "OPERATOR")); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestReconstruct_EmptyDeptSet(t *testing.T) {
	p, err := Reconstruct(claimsFor("user-1", "USER"))
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if len(p.DeptIDs()) != 0 {
		t.Fatalf("expected empty dept set, got %v", p.DeptIDs())
	}
	if p.InDepartment(1) {
		t.Fatal("empty set must not contain department 1")
	}
	if p.SharesDepartment([]int64{1, 2}) {
		t.Fatal("empty set must not intersect anything")
	}
}

func TestPrincipal_SharesDepartment(t *testing.T) {
	p, err := Reconstruct(claimsFor("user-1", "ADMIN", 2))
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}

	// Any single shared department suffices; containment is not required.
	if !p.SharesDepartment([]int64{2, 3}) {
		t.Fatal("expected intersection on department 2")
	}
	if p.SharesDepartment([]int64{3, 4}) {
		t.Fatal("expected no intersection")
	}
	if p.SharesDepartment(nil) {
		t.Fatal("empty target set must not intersect")
	}
}

func TestPrincipal_Authorities(t *testing.T) {
	p, err := Reconstruct(claimsFor("user-1", "ADMIN"))
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}

	got := p.Authorities()
	if len(got) != 1 || got[0] != "ROLE_ADMIN" {
		t.Fatalf("expected [ROLE_ADMIN], got %v", got)
	}

	// No inheritance: an ADMIN does not also carry ROLE_USER.
	for _, a := range got {
		if a == "ROLE_USER" {
			t.Fatal("authorities must not include lower ranks")
		}
	}

	if Anonymous().Authorities() != nil {
		t.Fatal("anonymous principal must advertise no authorities")
	}
}

func TestPrincipal_IsSelf(t *testing.T) {
	p, err := Reconstruct(claimsFor("user-1", "USER"))
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if !p.IsSelf("user-1") {
		t.Fatal("expected IsSelf for own id")
	}
	if p.IsSelf("user-2") {
		t.Fatal("unexpected IsSelf for another id")
	}
	if Anonymous().IsSelf("") {
		t.Fatal("anonymous principal can never be self")
	}
}
