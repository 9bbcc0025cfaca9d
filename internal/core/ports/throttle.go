package ports

import "context"

// LoginThrottle limits failed login attempts per account. Lookup
// errors are surfaced so callers can decide to fail open or closed.
type LoginThrottle interface {
	// Blocked reports whether the account has exceeded the failure
	// threshold inside the current window.
	Blocked(ctx context.Context, email string) (bool, error)
	// RecordFailure counts one failed attempt.
	RecordFailure(ctx context.Context, email string) error
	// Clear resets the counter after a successful login.
	Clear(ctx context.Context, email string) error
}
