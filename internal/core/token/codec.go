// Package token mints and verifies the signed credential shared by all
// platform services. The token is the sole source of truth for a
// request's identity, role, and department memberships: downstream
// services verify it locally and never call back to the issuer.
package token

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opendms/dms-platform/internal/core/domain"
)

// Verification failures. Callers must treat all three as
// "unauthenticated"; they are distinguished for logs and metrics only.
var (
	ErrMalformed = errors.New("token malformed")
	ErrExpired   = errors.New("token expired")
	ErrSignature = errors.New("token signature invalid")
)

// Claims is the payload carried by every token.
type Claims struct {
	Role    string  `json:"role"`
	DeptIDs []int64 `json:"deptIds"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a symmetric key shared across
// services. It performs no I/O; both Mint and Verify are pure over
// their inputs plus the supplied clock.
type Codec struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
}

// NewCodec creates a Codec. ttl bounds every minted token's lifetime;
// leeway widens the expiry check to absorb clock skew between services
// (pass 0 to disable).
func NewCodec(secret string, ttl, leeway time.Duration) *Codec {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if leeway < 0 {
		leeway = 0
	}
	return &Codec{secret: []byte(secret), ttl: ttl, leeway: leeway}
}

// TTL returns the fixed token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Mint issues a signed token for the given subject. Department IDs are
// sorted and deduplicated so equal membership sets always produce equal
// claim payloads.
func (c *Codec) Mint(subjectID string, role domain.Role, deptIDs []int64, now time.Time) (string, error) {
	claims := Claims{
		Role:    role.String(),
		DeptIDs: normalizeDeptIDs(deptIDs),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token at the given instant. On success
// the returned claims carry a known role and a normalized department
// list; any failure is one of ErrMalformed, ErrExpired, ErrSignature.
func (c *Codec) Verify(raw string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(c.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrSignature
		default:
			return nil, ErrMalformed
		}
	}

	if claims.Subject == "" {
		return nil, ErrMalformed
	}
	if _, err := domain.ParseRole(claims.Role); err != nil {
		return nil, ErrMalformed
	}

	claims.DeptIDs = normalizeDeptIDs(claims.DeptIDs)
	return claims, nil
}

func normalizeDeptIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{}
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
