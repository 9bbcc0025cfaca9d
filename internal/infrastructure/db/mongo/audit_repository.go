package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opendms/dms-platform/internal/core/ports"
)

const auditCollection = "audit_log"

// AuditRepository persists authorization and authentication outcomes.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuditEntry struct {
	SubjectID string `bson:"subject_id"`
	Action    string `bson:"action"`
	TargetID  string `bson:"target_id,omitempty"`
	Allowed   bool   `bson:"allowed"`
	Reason    string `bson:"reason"`
	Timestamp int64  `bson:"timestamp"`
}

func (r *AuditRepository) Insert(ctx context.Context, entry ports.AuditEntry) error {
	doc := mongoAuditEntry{
		SubjectID: entry.SubjectID,
		Action:    entry.Action,
		TargetID:  entry.TargetID,
		Allowed:   entry.Allowed,
		Reason:    entry.Reason,
		Timestamp: entry.Timestamp.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
