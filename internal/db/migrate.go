package db

import (
	"fmt"

	"github.com/crewline/crewline/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Client{},
		&models.Agency{},
		&models.Requirement{},
		&models.JobRole{},
		&models.JobRoleForwarding{},
		&models.LabourProfile{},
		&models.LabourAssignment{},
		&models.LabourStageHistory{},
		&models.AuditLog{},
		&models.Notification{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
