package models

import "time"

// LabourAssignment joins one labour profile to one job role, scoped to one
// agency. At most one non-rejected assignment exists per (labour, role) pair;
// assignments rejected by a stage failure are deleted on re-assignment so the
// profile can be cleanly reused.
//
// Seq is a per-role monotonic counter allocated under the job-role lock at
// creation time; FIFO ordering is (created_at, seq) so coarse clock resolution
// cannot reorder same-instant assignments.
type LabourAssignment struct {
	ID        string `gorm:"primaryKey;size:16"`
	JobRoleID string `gorm:"size:16;not null;index"`
	LabourID  string `gorm:"size:16;not null;index"`
	AgencyID  string `gorm:"size:16;not null;index"`
	Seq       int    `gorm:"not null;index"`

	AgencyStatus string `gorm:"size:24;default:PENDING"`
	AdminStatus  string `gorm:"size:24;default:PENDING"`
	ClientStatus string `gorm:"size:24;default:PENDING"`
	IsBackup     bool   `gorm:"default:false;index"`

	AdminFeedback  string `gorm:"type:text"`
	ClientFeedback string `gorm:"type:text"`

	// Stage-specific artifacts populated as the pipeline advances.
	SignedOfferLetterURL  string `gorm:"size:512"`
	VisaURL               string `gorm:"size:512"`
	FlightTicketURL       string `gorm:"size:512"`
	MedicalCertificateURL string `gorm:"size:512"`
	PoliceClearanceURL    string `gorm:"size:512"`
	EmploymentContractURL string `gorm:"size:512"`
	TravelDate            *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	JobRole *JobRole       `gorm:"foreignKey:JobRoleID"`
	Labour  *LabourProfile `gorm:"foreignKey:LabourID"`
	Agency  *Agency        `gorm:"foreignKey:AgencyID"`
}

// HasAllTravelDocuments reports whether the four travel documents required
// before the ready-to-travel gate are all present.
func (a *LabourAssignment) HasAllTravelDocuments() bool {
	return a.FlightTicketURL != "" &&
		a.MedicalCertificateURL != "" &&
		a.PoliceClearanceURL != "" &&
		a.EmploymentContractURL != ""
}
