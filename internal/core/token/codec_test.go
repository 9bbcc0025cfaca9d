package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/opendms/dms-platform/internal/core/domain"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("secret", time.Hour, 0)

	signed, err := codec.Mint("user-1", domain.RoleAdmin, []int64{2, 1}, t0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := codec.Verify(signed, t0.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Role != "ADMIN" {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if len(claims.DeptIDs) != 2 || claims.DeptIDs[0] != 1 || claims.DeptIDs[1] != 2 {
		t.Fatalf("expected sorted dept ids [1 2], got %v", claims.DeptIDs)
	}
}

func TestCodec_ExpiryBoundary(t *testing.T) {
	codec := NewCodec("secret", 3600*time.Second, 0)

	signed, err := codec.Mint("user-1", domain.RoleUser, nil, t0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := codec.Verify(signed, t0.Add(3599*time.Second)); err != nil {
		t.Fatalf("expected valid at 3599s, got %v", err)
	}
	if _, err := codec.Verify(signed, t0.Add(3600*time.Second)); err != ErrExpired {
		t.Fatalf("expected ErrExpired at 3600s, got %v", err)
	}
	if _, err := codec.Verify(signed, t0.Add(3601*time.Second)); err != ErrExpired {
		t.Fatalf("expected ErrExpired at 3601s, got %v", err)
	}
}

func TestCodec_Leeway(t *testing.T) {
	codec := NewCodec("secret", time.Hour, 60*time.Second)

	signed, err := codec.Mint("user-1", domain.RoleUser, nil, t0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := codec.Verify(signed, t0.Add(time.Hour+30*time.Second)); err != nil {
		t.Fatalf("expected leeway to absorb 30s of skew, got %v", err)
	}
	if _, err := codec.Verify(signed, t0.Add(time.Hour+2*time.Minute)); err != ErrExpired {
		t.Fatalf("expected ErrExpired beyond the leeway window, got %v", err)
	}
}

func TestCodec_TamperedClaims(t *testing.T) {
	codec := NewCodec("secret", time.Hour, 0)

	signed, err := codec.Mint("user-1", domain.RoleUser, []int64{1}, t0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// Rewrite the payload to claim a higher role, keeping the original
	// signature. The role must never come back decoded; the token must
	// die on the signature check.
	parts := strings.Split(signed, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	forged := strings.Replace(string(payload), `"USER"`, `"SUPERADMIN"`, 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	if _, err := codec.Verify(strings.Join(parts, "."), t0); err != ErrSignature {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestCodec_WrongKey(t *testing.T) {
	minter := NewCodec("secret-a", time.Hour, 0)
	verifier := NewCodec("secret-b", time.Hour, 0)

	signed, err := minter.Mint("user-1", domain.RoleUser, nil, t0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := verifier.Verify(signed, t0); err != ErrSignature {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	codec := NewCodec("secret", time.Hour, 0)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Verify(raw, t0); err != ErrMalformed {
			t.Fatalf("Verify(%q): expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestCodec_UnknownRoleRejected(t *testing.T) {
	codec := NewCodec("secret", time.Hour, 0)

	signed, err := codec.Mint("user-1", domain.Role("OPERATOR"), nil, t0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := codec.Verify(signed, t0); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed for unknown role claim, got %v", err)
	}
}

func TestCodec_DeptIDsDeduplicated(t *testing.T) {
	codec := NewCodec("secret", time.Hour, 0)

	signed, err := codec.Mint("user-1", domain.RoleAdmin, []int64{3, 1, 3, 1, 2}, t0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := codec.Verify(signed, t0)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	want := []int64{1, 2, 3}
	if len(claims.DeptIDs) != len(want) {
		t.Fatalf("expected %v, got %v", want, claims.DeptIDs)
	}
	for i := range want {
		if claims.DeptIDs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, claims.DeptIDs)
		}
	}
}
