package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeImport         ActivityType = "import"
	TypeRecordCreated  ActivityType = "record_created"
	TypeRecordUpdated  ActivityType = "record_updated"
	TypeRecordDeleted  ActivityType = "record_deleted"
	TypeVersionCleared ActivityType = "version_cleared"
	TypeStoreCleared   ActivityType = "store_cleared"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	Backend      string       `json:"backend,omitempty"`
	Version      string       `json:"version,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Inserted     int          `json:"inserted,omitempty"`
	Updated      int          `json:"updated,omitempty"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
