// Package metrics defines all custom Prometheus metrics for the
// identity service. It is the single source of truth for metric names,
// labels, and help strings; metrics register themselves with the
// default registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dms_auth"

// TokenVerificationsTotal counts token verification outcomes at the
// middleware gate.
// Label:
//   - result: "ok", "expired", "bad_signature", "malformed", "bad_claims"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by outcome.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "rejected", "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// AuthzDecisionsTotal counts permission matrix outcomes as they are
// drained by the audit pipeline.
// Labels:
//   - action: the action tag (e.g. "user:delete")
//   - decision: "allow" or "deny"
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of permission matrix decisions, by action and outcome.",
	},
	[]string{"action", "decision"},
)

// AccountsCreatedTotal counts minted accounts.
// Label:
//   - role: "SUPERADMIN", "ADMIN", or "USER"
var AccountsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_created_total",
		Help:      "Total number of accounts created, by role.",
	},
	[]string{"role"},
)

// AuditQueueDepth tracks pending audit entries per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
