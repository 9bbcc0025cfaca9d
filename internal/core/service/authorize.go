package service

import (
	"fmt"
	"time"

	"github.com/opendms/dms-platform/internal/core/authz"
	"github.com/opendms/dms-platform/internal/core/domain"
	"github.com/opendms/dms-platform/internal/core/ports"
)

// authorize evaluates the permission matrix for one action, records the
// outcome for audit, and converts a deny into a domain error. The
// matrix itself is pure; this is the single place a decision value
// turns into control flow inside the service layer.
func authorize(rec ports.AuditRecorder, actor authz.Principal, action authz.Action, targetID string, target authz.Target) error {
	decision := authz.Evaluate(actor, action, target)

	if rec != nil {
		rec.Record(ports.AuditEntry{
			SubjectID: actor.UserID,
			Action:    string(action),
			TargetID:  targetID,
			Allowed:   decision.Allow,
			Reason:    decision.Reason,
			Timestamp: time.Now().UTC(),
		})
	}

	if !decision.Allow {
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, decision.Reason)
	}
	return nil
}
