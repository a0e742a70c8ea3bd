package entities

import (
	"time"
)

// Record is one key/value entry of the local persistent storage.
// It plays the role browser local storage plays for the web client:
// the user state blob, the identity scalar and the account token all live here.
type Record struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:255" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Record) TableName() string {
	return "records"
}

// Known record keys
const (
	// Identity
	RecordKeyUserID = "readworld_user_id"

	// RecordKeyStatePrefix is joined with the identity to form the per-user state key.
	RecordKeyStatePrefix = "readworld_state_"

	// Account (optional remote API)
	RecordKeyToken = "token"
	RecordKeyUser  = "user"

	// Daily quote
	RecordKeyLastQuoteDate = "lastQuoteDate"

	// Operator settings overriding the environment
	RecordKeyExportDir        = "settings_export_dir"
	RecordKeyRolloverSchedule = "settings_rollover_schedule"
)
