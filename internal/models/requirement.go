package models

import "time"

// Requirement is a client's hiring request. Its status is derived upward from
// its job roles: all roles fulfilled means the requirement is accepted.
type Requirement struct {
	ID        string `gorm:"primaryKey;size:16"`
	ClientID  string `gorm:"size:16;not null;index"`
	Title     string `gorm:"size:256;not null"`
	Notes     string `gorm:"type:text"`
	Status    string `gorm:"size:16;default:DRAFT;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Client   *Client   `gorm:"foreignKey:ClientID"`
	JobRoles []JobRole `gorm:"foreignKey:RequirementID;constraint:OnDelete:CASCADE"`
}

// JobRole is one position within a requirement. The count of non-backup,
// client-accepted assignments never exceeds Quantity.
type JobRole struct {
	ID               string  `gorm:"primaryKey;size:16"`
	RequirementID    string  `gorm:"size:16;not null;index"`
	Title            string  `gorm:"size:128;not null"`
	Quantity         int     `gorm:"not null"`
	AssignedAgencyID *string `gorm:"size:16;index"`
	AgencyStatus     string  `gorm:"size:24;default:PENDING"`
	AdminStatus      string  `gorm:"size:24;default:PENDING"`
	NeedsMoreLabour  bool    `gorm:"default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Requirement *Requirement        `gorm:"foreignKey:RequirementID"`
	Assignments []LabourAssignment  `gorm:"foreignKey:JobRoleID"`
	Forwardings []JobRoleForwarding `gorm:"foreignKey:JobRoleID;constraint:OnDelete:CASCADE"`
}

// JobRoleForwarding caps how many of a role's slots one agency may fill.
type JobRoleForwarding struct {
	ID        string `gorm:"primaryKey;size:16"`
	JobRoleID string `gorm:"size:16;not null;index:idx_role_agency,unique"`
	AgencyID  string `gorm:"size:16;not null;index:idx_role_agency,unique"`
	Quantity  int    `gorm:"not null"`
	CreatedAt time.Time

	JobRole *JobRole `gorm:"foreignKey:JobRoleID"`
	Agency  *Agency  `gorm:"foreignKey:AgencyID"`
}
