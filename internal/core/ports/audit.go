package ports

import (
	"context"
	"time"
)

// AuditEntry records one authorization or authentication outcome.
type AuditEntry struct {
	SubjectID string
	Action    string
	TargetID  string
	Allowed   bool
	Reason    string
	Timestamp time.Time
}

// AuditRecorder accepts entries from the request path. Implementations
// must not block the caller; delivery is best-effort and ordered per
// subject.
type AuditRecorder interface {
	Record(entry AuditEntry)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry AuditEntry) error
}
