package entities

import "time"

type AuditEventType string

const (
	AuditEventAchievement AuditEventType = "achievement"
	AuditEventExport      AuditEventType = "export"
	AuditEventAccount     AuditEventType = "account"
	AuditEventSettings    AuditEventType = "settings"
	AuditEventState       AuditEventType = "state"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one entry of the local activity log.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      string         `gorm:"index;size:64" json:"user_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g. "achievement_unlock", "subscription_upgrade"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	BookID      string         `gorm:"index;size:100" json:"book_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
