package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/opendms/dms-platform/internal/core/authz"
	"github.com/opendms/dms-platform/internal/core/domain"
	"github.com/opendms/dms-platform/internal/core/token"
)

func newContext(authorization string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func mintToken(t *testing.T, codec *token.Codec, role domain.Role, deptIDs ...int64) string {
	t.Helper()
	signed, err := codec.Mint("user-1", role, deptIDs, time.Now().UTC())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return signed
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func TestAuth_ValidToken(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour, 0)
	c, _ := newContext("Bearer " + mintToken(t, codec, domain.RoleAdmin, 2))

	handler := Auth(codec)(func(c echo.Context) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			t.Fatal("expected principal in context")
		}
		if p.UserID != "user-1" || p.Role != domain.RoleAdmin {
			t.Fatalf("unexpected principal %+v", p)
		}
		if !p.InDepartment(2) {
			t.Fatal("expected department 2 membership")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour, 0)
	c, _ := newContext("")

	err := Auth(codec)(okHandler)(c)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := httpStatus(t, err); got != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", got)
	}
}

func TestAuth_BadHeaderFormat(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour, 0)
	signed := mintToken(t, codec, domain.RoleUser)

	for _, header := range []string{signed, "Basic " + signed, "Bearer ", "Bearer"} {
		c, _ := newContext(header)
		err := Auth(codec)(okHandler)(c)
		if err == nil {
			t.Fatalf("header %q: expected error", header)
		}
		if got := httpStatus(t, err); got != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, got)
		}
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour, 0)
	signed, err := codec.Mint("user-1", domain.RoleUser, nil, time.Now().UTC().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	c, _ := newContext("Bearer " + signed)
	handlerErr := Auth(codec)(okHandler)(c)
	if handlerErr == nil {
		t.Fatal("expected error")
	}
	if got := httpStatus(t, handlerErr); got != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", got)
	}
}

func TestAuth_WrongSigningKey(t *testing.T) {
	minter := token.NewCodec("other-secret", time.Hour, 0)
	codec := token.NewCodec("secret", time.Hour, 0)

	c, _ := newContext("Bearer " + mintToken(t, minter, domain.RoleSuperAdmin))
	err := Auth(codec)(okHandler)(c)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := httpStatus(t, err); got != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", got)
	}
}

func TestOptionalAuth_NoToken(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour, 0)
	c, _ := newContext("")

	handler := OptionalAuth(codec)(func(c echo.Context) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			t.Fatal("expected anonymous principal in context")
		}
		if p.Authenticated {
			t.Fatal("expected unauthenticated principal")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
}

// A token that is present but invalid must be rejected, not downgraded
// to anonymous access.
func TestOptionalAuth_InvalidToken(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour, 0)
	c, _ := newContext("Bearer not-a-token")

	err := OptionalAuth(codec)(okHandler)(c)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := httpStatus(t, err); got != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", got)
	}
}

func TestRequireAuthority(t *testing.T) {
	gate := RequireAuthority("ROLE_ADMIN", "ROLE_SUPERADMIN")

	run := func(p authz.Principal, install bool) error {
		c, _ := newContext("")
		if install {
			c.Set(principalKey, p)
		}
		return gate(okHandler)(c)
	}

	codec := token.NewCodec("secret", time.Hour, 0)
	verifyPrincipal := func(role domain.Role) authz.Principal {
		c, _ := newContext("Bearer " + mintToken(t, codec, role))
		var got authz.Principal
		if err := Auth(codec)(func(c echo.Context) error {
			got, _ = PrincipalFrom(c)
			return nil
		})(c); err != nil {
			t.Fatalf("auth: %v", err)
		}
		return got
	}

	if err := run(verifyPrincipal(domain.RoleAdmin), true); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
	if err := run(verifyPrincipal(domain.RoleSuperAdmin), true); err != nil {
		t.Fatalf("superadmin should pass: %v", err)
	}

	err := run(verifyPrincipal(domain.RoleUser), true)
	if err == nil {
		t.Fatal("user should be forbidden")
	}
	if got := httpStatus(t, err); got != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", got)
	}

	err = run(authz.Principal{}, false)
	if err == nil {
		t.Fatal("missing principal should be unauthorized")
	}
	if got := httpStatus(t, err); got != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", got)
	}
}
