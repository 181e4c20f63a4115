package models

import (
	"time"
)

// AuditAction enumerates the mutations recorded for compliance.
type AuditAction string

const (
	ActionDelete     AuditAction = "DELETE"
	ActionHardDelete AuditAction = "HARD_DELETE"
	ActionRestore    AuditAction = "RESTORE"
	ActionMerge      AuditAction = "MERGE"
)

// AuditLog is an append-only record of compliance-relevant mutations.
// Entries are never updated or deleted.
type AuditLog struct {
	ID          uint        `gorm:"primaryKey;column:log_id" json:"logId"`
	Action      AuditAction `gorm:"size:20;not null" json:"action"`
	RecordTable string      `gorm:"size:50;not null;column:table_name" json:"tableName"`
	RecordID    uint        `json:"recordId"`
	OldData     string      `gorm:"type:text" json:"oldData,omitempty"`
	NewData     string      `gorm:"type:text" json:"newData,omitempty"`
	UserID      string      `gorm:"size:100;default:system" json:"userId"`
	Timestamp   time.Time   `gorm:"autoCreateTime" json:"timestamp"`
	IPAddress   string      `gorm:"size:45" json:"ipAddress,omitempty"`
	Details     string      `gorm:"size:500" json:"details,omitempty"`
}

// TableName keeps the historical table name.
func (AuditLog) TableName() string {
	return "audit_log"
}

// DeletedRecord tracks every soft deletion with a full pre-deletion
// snapshot so the record can be reviewed and restored later.
type DeletedRecord struct {
	ID                uint      `gorm:"primaryKey;column:deletion_id" json:"deletionId"`
	RecordTable       string    `gorm:"size:50;not null;column:table_name" json:"tableName"`
	RecordID          uint      `gorm:"not null" json:"recordId"`
	OriginalData      string    `gorm:"type:text;not null" json:"originalData"`
	DeletedBy         string    `gorm:"size:100;default:system" json:"deletedBy"`
	DeletionReason    string    `gorm:"size:500" json:"deletionReason,omitempty"`
	DeletionTimestamp time.Time `gorm:"autoCreateTime" json:"deletionTimestamp"`
	CanRestore        bool      `gorm:"default:true" json:"canRestore"`
}

// TableName keeps the historical table name.
func (DeletedRecord) TableName() string {
	return "deleted_records"
}
