package models

import "time"

// Audit action names written by the admin mutation paths.
const (
	AuditActionMarkUsed      = "pass_mark_used"
	AuditActionRevertUsed    = "pass_revert_used"
	AuditActionArchive       = "pass_archive"
	AuditActionUnarchive     = "pass_unarchive"
	AuditActionHardDelete    = "pass_hard_delete"
	AuditActionRegenerate    = "pass_regenerate_token"
	AuditActionVerifyPayment = "payment_force_verify"
	AuditActionBulk          = "bulk_update"
)

// AuditLogEntry is write-once; nothing in this service mutates or
// deletes one after it is written.
type AuditLogEntry struct {
	EntryID          string                 `bson:"_id" json:"entry_id"`
	Actor            string                 `bson:"actor" json:"actor"`
	Action           string                 `bson:"action" json:"action"`
	TargetCollection string                 `bson:"target_collection" json:"target_collection"`
	TargetID         string                 `bson:"target_id" json:"target_id"`
	Before           map[string]interface{} `bson:"before,omitempty" json:"before,omitempty"`
	After            map[string]interface{} `bson:"after,omitempty" json:"after,omitempty"`
	SourceIP         string                 `bson:"source_ip,omitempty" json:"source_ip,omitempty"`
	Timestamp        time.Time              `bson:"timestamp" json:"timestamp"`
}
