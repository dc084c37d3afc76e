package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog records relationship transitions and counter repairs.
type AuditLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID   string         `gorm:"index:idx_audit_trace;size:36" json:"trace_id"`
	ActorID   *uuid.UUID     `gorm:"size:36;index:idx_audit_actor" json:"actor_id"`
	Action    string         `gorm:"size:64;not null" json:"action"`
	SubjectID int64          `gorm:"index:idx_audit_subject" json:"subject_id"`
	Detail    datatypes.JSON `json:"detail"`
	Error     string         `gorm:"type:text" json:"error"`
	CreatedAt time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
