package models

import "time"

// Client is an employer tenant that submits hiring requirements. Email is
// optional but unique when present; NULL rows never collide on the index.
type Client struct {
	ID          string  `gorm:"primaryKey;size:16"`
	Name        string  `gorm:"size:128;not null"`
	Email       *string `gorm:"size:128;uniqueIndex"`
	CompanyName string  `gorm:"size:128"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Requirements []Requirement `gorm:"foreignKey:ClientID"`
}

// Agency is a recruitment agency tenant that supplies labour candidates.
type Agency struct {
	ID        string  `gorm:"primaryKey;size:16"`
	Name      string  `gorm:"size:128;not null"`
	Email     *string `gorm:"size:128;uniqueIndex"`
	Country   string  `gorm:"size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Labour []LabourProfile `gorm:"foreignKey:AgencyID;constraint:OnDelete:CASCADE"`
}
