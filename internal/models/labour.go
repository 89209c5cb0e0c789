package models

import "time"

// LabourProfile is one worker candidate. Status, CurrentStage and RequirementID
// form the denormalized projection of the stage history ledger; they are mutated
// only by the profile tracker, the transition triggers and the reconciler.
type LabourProfile struct {
	ID            string  `gorm:"primaryKey;size:16"`
	AgencyID      string  `gorm:"size:16;not null;index"`
	Name          string  `gorm:"size:128;not null"`
	PassportNo    string  `gorm:"size:32"`
	Trade         string  `gorm:"size:64"`
	Status        string  `gorm:"size:16;default:RECEIVED;index"`
	Verification  string  `gorm:"size:24;default:UNVERIFIED"`
	CurrentStage  string  `gorm:"size:32;default:OFFER_LETTER_SIGN"`
	RequirementID *string `gorm:"size:16;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Agency       *Agency              `gorm:"foreignKey:AgencyID"`
	Requirement  *Requirement         `gorm:"foreignKey:RequirementID"`
	StageHistory []LabourStageHistory `gorm:"foreignKey:LabourID;constraint:OnDelete:CASCADE"`
}

// LabourStageHistory is one stage attempt. Append-only: a profile may carry
// several rows for the same stage across retries.
type LabourStageHistory struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	LabourID    string `gorm:"size:16;not null;index"`
	Stage       string `gorm:"size:32;not null;index"`
	Status      string `gorm:"size:16;not null;default:PENDING"`
	Notes       string `gorm:"type:text"`
	Documents   string `gorm:"type:text"` // JSON array of document URLs
	CreatedAt   time.Time
	CompletedAt *time.Time
}
