package models

import "time"

// AuditLog records who changed what. Written best-effort; never part of the
// transaction it describes.
type AuditLog struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	Action         string `gorm:"size:64;not null;index"`
	EntityType     string `gorm:"size:48;not null;index"`
	EntityID       string `gorm:"size:32;index"`
	PerformedBy    string `gorm:"size:32"`
	OldData        string `gorm:"type:text"` // JSON snapshot
	NewData        string `gorm:"type:text"` // JSON snapshot
	AffectedFields string `gorm:"type:text"` // JSON array of field names
	CreatedAt      time.Time
}

// Notification is the persisted record of a dispatched event, one row per
// recipient. Delivery through adapters is fire-and-forget.
type Notification struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	EventKind   string `gorm:"size:64;not null;index"`
	RecipientID string `gorm:"size:32;not null;index"`
	Payload     string `gorm:"type:text"` // JSON payload
	CreatedAt   time.Time
}
